package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/pkg/config"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

// Store writes uploaded images under the configured directory with
// collision-free names. Only the extension allow-list is enforced here;
// the HTTP layer caps the request body size.
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
}

// NewStore builds an upload store from configuration.
func NewStore(cfg config.UploadsConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}

	allowed := map[string]struct{}{}
	for _, ext := range cfg.Extensions() {
		allowed[ext] = struct{}{}
	}
	return &Store{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxUploadBytes(),
		allowed:  allowed,
	}, nil
}

// MaxBytes returns the configured upload size cap in bytes.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// AllowedExtension reports whether the filename carries a permitted image
// extension.
func (s *Store) AllowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// Save streams the upload to disk under a timestamped unique name and
// returns the stored filename.
func (s *Store) Save(ctx context.Context, originalName string, src io.Reader) (string, error) {
	if !s.AllowedExtension(originalName) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithDetails(map[string]any{"filename": originalName})
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102150405"), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create upload file")
	}
	defer dst.Close()

	limited := io.LimitReader(src, s.maxBytes+1)
	written, err := io.Copy(dst, limited)
	if err != nil {
		_ = os.Remove(path)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write upload file")
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds size limit")
	}

	return name, nil
}

// Remove deletes a previously stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid upload name")
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove upload file")
	}
	return nil
}
