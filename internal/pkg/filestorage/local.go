package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// PublicPrefix is the URL path the storage directory is served under
const PublicPrefix = "/uploads"

// Storage persists uploaded files and returns a public reference to them
type Storage interface {
	Save(fileHeader *multipart.FileHeader, subPath string) (string, error)
	Delete(ref string) error
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// BasePath returns the directory files are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save writes the upload under subPath with a unique name and returns "/uploads/<subPath>/<name>"
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	subPath = strings.Trim(filepath.ToSlash(filepath.Clean("/"+subPath)), "/")
	dir := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	ref := path.Join(PublicPrefix, subPath, name)
	logger.Debug().Str("filename", fileHeader.Filename).Str("ref", ref).Msg("File saved")
	return ref, nil
}

// Delete removes a previously saved file; unknown references are ignored
func (ls *LocalStorage) Delete(ref string) error {
	rel := strings.TrimPrefix(path.Clean("/"+ref), PublicPrefix+"/")
	if rel == "" || rel == "." || strings.HasPrefix(rel, "/") {
		return fmt.Errorf("invalid file reference: %s", ref)
	}

	physical := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if err := os.Remove(physical); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
