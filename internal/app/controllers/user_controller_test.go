package controllers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/middleware"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stuckStorage struct{ deleted []string }

func (s *stuckStorage) Save(*multipart.FileHeader, string) (string, error) {
	return "/uploads/photo.png", nil
}

func (s *stuckStorage) Delete(ref string) error {
	s.deleted = append(s.deleted, ref)
	return errors.New("disk unavailable")
}

type missingUserService struct{ services.UserService }

func (missingUserService) UpdateProfilePhoto(context.Context, int64, string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func TestUpdateProfilePhotoLogsFailedDiscard(t *testing.T) {
	var logs bytes.Buffer
	storage := &stuckStorage{}
	c := NewUserController(missingUserService{}, filestorage.NewIntake(storage), 1<<20, zerolog.New(&logs))

	router := gin.New()
	router.PUT("/photo", func(ctx *gin.Context) { ctx.Set(middleware.ContextUserID, int64(1)) }, c.UpdateProfilePhoto)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"/uploads/photo.png"}, storage.deleted)
	assert.Contains(t, logs.String(), "Failed to discard uploaded photo")
	assert.Contains(t, logs.String(), "disk unavailable")
}
