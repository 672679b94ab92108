// Package local stores uploads on the node's filesystem under the configured
// upload directory.
package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	apperrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/storage"
)

var allowedMIMEs = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store writes uploads under cfg.Dir and hands back relative paths.
type Store struct {
	dir     string
	maxSize int64
}

func New(cfg config.UploadConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", cfg.Dir, err)
	}
	return &Store{dir: cfg.Dir, maxSize: cfg.MaxFileSizeBytes()}, nil
}

// Save sniffs the upload's content type, enforces the size cap and writes the
// file as warehouse-<timestamp>-<random><ext>.
func (s *Store) Save(ctx context.Context, fh *multipart.FileHeader) (*storage.SavedFile, error) {
	if fh == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "missing file")
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("file %q exceeds the %d byte limit", fh.Filename, s.maxSize))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "opening upload")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "sniffing upload type")
	}
	ext, ok := allowedMIMEs[mtype.String()]
	if !ok {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("unsupported file type %q, only jpeg/png/webp are accepted", mtype.String()))
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "rewinding upload")
	}

	name, err := randomName(ext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "generating filename")
	}

	dstPath := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating upload file")
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "writing upload file")
	}

	return &storage.SavedFile{
		Path: filepath.ToSlash(filepath.Join(filepath.Base(s.dir), name)),
		Size: written,
		MIME: mtype.String(),
	}, nil
}

// Remove deletes stored files best-effort, collecting every failure. Missing
// files are not errors.
func (s *Store) Remove(ctx context.Context, paths ...string) error {
	var errs error
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		full := s.localPath(p)
		if full == "" {
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("removing %q: %w", p, err))
		}
	}
	return errs
}

// localPath maps a stored relative path back under the upload dir, refusing
// anything that escapes it.
func (s *Store) localPath(stored string) string {
	stored = filepath.FromSlash(stored)
	base := filepath.Base(stored)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return filepath.Join(s.dir, base)
}

func randomName(ext string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("warehouse-%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(buf), ext), nil
}
