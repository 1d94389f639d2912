package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrOutsideBaseDir = errors.New("path escapes the upload directory")

// LocalSource keeps uploaded CSV files on local disk under BaseDir.
type LocalSource struct {
	BaseDir string
}

func NewLocalSource(baseDir string) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir}
}

func (s *LocalSource) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	_ = ctx

	path, err := s.resolve(sourcePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

// Save writes an upload under a generated name and returns the path to
// pass back to Open. The original extension is kept.
func (s *LocalSource) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	_ = ctx

	dir := time.Now().UTC().Format("2006-01-02")
	if err := os.MkdirAll(filepath.Join(s.BaseDir, dir), 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	rel := filepath.Join(dir, uuid.NewString()+ext)
	path := filepath.Join(s.BaseDir, rel)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", path, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close upload %s: %w", path, err)
	}

	return rel, nil
}

func (s *LocalSource) resolve(sourcePath string) (string, error) {
	if filepath.IsAbs(sourcePath) {
		return sourcePath, nil
	}

	base, err := filepath.Abs(s.BaseDir)
	if err != nil {
		return "", fmt.Errorf("resolve upload dir: %w", err)
	}
	path := filepath.Join(base, sourcePath)
	if path != base && !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, sourcePath)
	}
	return path, nil
}
