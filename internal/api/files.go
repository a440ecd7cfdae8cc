package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CallFiles manages the raw uploaded call-detail files on disk. Files are
// kept per month so the detail and export views can re-read the original
// rows instead of widening the database schema.
type CallFiles struct {
	dir string
}

// NewCallFiles creates the calls directory under the data dir
func NewCallFiles(dataDir string) (*CallFiles, error) {
	dir := filepath.Join(dataDir, "calls")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create calls directory: %w", err)
	}
	return &CallFiles{dir: dir}, nil
}

// Save stores an uploaded file under a month-prefixed unique name and
// returns that name.
func (f *CallFiles) Save(ym, original string, src io.Reader) (string, error) {
	base := filepath.Base(original)
	base = strings.ReplaceAll(base, "__", "_")
	name := fmt.Sprintf("%s__%s_%s", ym, uuid.New().String(), base)

	dst, err := os.Create(filepath.Join(f.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Open opens a previously saved file by name. The name must not escape the
// calls directory.
func (f *CallFiles) Open(name string) (*os.File, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid file name %q", name)
	}
	return os.Open(filepath.Join(f.dir, name))
}

// Remove deletes one saved file by name
func (f *CallFiles) Remove(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return os.Remove(filepath.Join(f.dir, name))
}

// RemoveMonth deletes every saved file for a month
func (f *CallFiles) RemoveMonth(ym string) error {
	matches, err := filepath.Glob(filepath.Join(f.dir, ym+"__*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
