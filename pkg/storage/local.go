package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadsPrefix is the URL prefix under which local photos are served.
const UploadsPrefix = "/uploads/"

type localStorage struct {
	dir string
}

// NewLocalStorage stores images on disk below dir and hands out /uploads/ paths.
func NewLocalStorage(dir string) (ImageStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".png"
	}
	name := uuid.New().String() + ext

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return UploadsPrefix + name, nil
}

func (s *localStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, UploadsPrefix) {
		return nil
	}

	rel := strings.TrimPrefix(fileURL, UploadsPrefix)
	if rel == "" || strings.Contains(rel, "..") || strings.ContainsAny(rel, `/\`) {
		return fmt.Errorf("refusing to delete %q", fileURL)
	}

	err := os.Remove(filepath.Join(s.dir, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type combinedStorage struct {
	primary ImageStorage
	others  []ImageStorage
}

// Combine uploads through primary and deletes through every store, so photos
// written by an earlier configuration can still be cleaned up.
func Combine(primary ImageStorage, others ...ImageStorage) ImageStorage {
	return &combinedStorage{primary: primary, others: others}
}

func (s *combinedStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return s.primary.UploadImage(ctx, r, folder, fileName)
}

func (s *combinedStorage) DeleteImage(ctx context.Context, fileURL string) error {
	errs := []error{s.primary.DeleteImage(ctx, fileURL)}
	for _, o := range s.others {
		errs = append(errs, o.DeleteImage(ctx, fileURL))
	}
	return errors.Join(errs...)
}
