package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// Policy describes what a single upload field accepts
type Policy struct {
	Field      string
	SubPath    string
	Extensions []string
	MIMETypes  []string
	MaxBytes   int64
}

// DocumentPolicy accepts project documents
func DocumentPolicy(maxBytes int64) Policy {
	return Policy{
		Field:      "document",
		SubPath:    "documents",
		Extensions: []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".zip", ".jpg", ".jpeg", ".png"},
		MIMETypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-powerpoint",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/zip",
			"application/x-ole-storage",
			"image/jpeg",
			"image/png",
		},
		MaxBytes: maxBytes,
	}
}

// PhotoPolicy accepts profile photos
func PhotoPolicy(maxBytes int64) Policy {
	return Policy{
		Field:      "photo",
		SubPath:    "",
		Extensions: []string{".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"image/jpeg", "image/png"},
		MaxBytes:   maxBytes,
	}
}

// Intake validates uploads against a Policy before storing them
type Intake struct {
	storage Storage
}

// NewIntake creates an Intake writing to storage
func NewIntake(storage Storage) *Intake {
	return &Intake{storage: storage}
}

// Accept validates the policy field of form and stores it. It returns "" when the field is absent.
func (in *Intake) Accept(form *multipart.Form, policy Policy) (string, error) {
	if form == nil {
		return "", nil
	}
	files := form.File[policy.Field]
	switch len(files) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("only one file is allowed for field %q", policy.Field))
	}

	fh := files[0]
	if err := Check(fh, policy); err != nil {
		return "", err
	}
	return in.storage.Save(fh, policy.SubPath)
}

// Discard removes a stored reference, used when a later step fails
func (in *Intake) Discard(ref string) error {
	if ref == "" {
		return nil
	}
	return in.storage.Delete(ref)
}

// Check validates size, extension and sniffed content type of one upload
func Check(fh *multipart.FileHeader, policy Policy) error {
	if policy.MaxBytes > 0 && fh.Size > policy.MaxBytes {
		return apperrors.NewValidationError(fmt.Sprintf("file exceeds the %d MB limit", policy.MaxBytes/(1<<20)))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !contains(policy.Extensions, ext) {
		return apperrors.NewValidationError(fmt.Sprintf("file type %q is not allowed", ext)).
			WithDetails(map[string]interface{}{"field": policy.Field, "allowed": policy.Extensions})
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range policy.MIMETypes {
			if m.Is(allowed) {
				return nil
			}
		}
	}
	return apperrors.NewValidationError(fmt.Sprintf("file content %q is not allowed", detected.String()))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
