package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type upload struct {
	field, name string
	content     []byte
}

func buildForm(t *testing.T, uploads ...upload) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := w.CreateFormFile(u.field, u.name)
		require.NoError(t, err)
		_, err = part.Write(u.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm
}

func newIntake(t *testing.T) (*Intake, string) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	return NewIntake(storage), dir
}

func TestAcceptStoresPhoto(t *testing.T) {
	in, dir := newIntake(t)
	form := buildForm(t, upload{"photo", "me.PNG", pngBytes})

	ref, err := in.Accept(form, PhotoPolicy(10<<20))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.NoError(t, err)

	require.NoError(t, in.Discard(ref))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))
}

func TestAcceptStoresDocumentInSubdirectory(t *testing.T) {
	in, dir := newIntake(t)
	form := buildForm(t, upload{"document", "report.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")})

	ref, err := in.Accept(form, DocumentPolicy(10<<20))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/documents/"))

	_, err = os.Stat(filepath.Join(dir, "documents", filepath.Base(ref)))
	assert.NoError(t, err)
}

func TestAcceptMissingFieldIsNotAnError(t *testing.T) {
	in, _ := newIntake(t)
	ref, err := in.Accept(buildForm(t), PhotoPolicy(10<<20))
	require.NoError(t, err)
	assert.Empty(t, ref)

	ref, err = in.Accept(nil, PhotoPolicy(10<<20))
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestAcceptRejections(t *testing.T) {
	tests := []struct {
		name    string
		uploads []upload
		max     int64
	}{
		{name: "bad extension", uploads: []upload{{"photo", "me.gif", pngBytes}}, max: 10 << 20},
		{name: "content mismatch", uploads: []upload{{"photo", "me.png", []byte("plain text pretending")}}, max: 10 << 20},
		{name: "too large", uploads: []upload{{"photo", "me.png", pngBytes}}, max: 8},
		{name: "two files", uploads: []upload{{"photo", "a.png", pngBytes}, {"photo", "b.png", pngBytes}}, max: 10 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newIntake(t)
			_, err := in.Accept(buildForm(t, tt.uploads...), PhotoPolicy(tt.max))
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestAcceptRejectedExtensionCarriesAllowedList(t *testing.T) {
	in, _ := newIntake(t)
	_, err := in.Accept(buildForm(t, upload{"photo", "me.gif", pngBytes}), PhotoPolicy(10<<20))

	var ce *apperrors.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "photo", ce.Details["field"])
	assert.Equal(t, PhotoPolicy(0).Extensions, ce.Details["allowed"])
}

func TestDeleteRejectsTraversal(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, storage.Delete("/uploads/missing.png"))
	assert.Error(t, storage.Delete("/uploads/"))
}
