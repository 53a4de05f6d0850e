package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "inatfetch/pkg/errors"
)

// UnknownLabel is the directory used for taxa missing from the label mapping
const UnknownLabel = "unknown"

// ErrUnsafePath is returned when a label, photo id or extension would place a
// file outside the output root
var ErrUnsafePath = errors.New("path escapes output root")

// Manager owns the output tree <root>/<label>/<photo_id>.<extension>. A file's
// presence in that tree is the only record that an image was downloaded.
type Manager struct {
	root string
}

// NewManager creates a new storage manager rooted at root
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{root: filepath.Clean(root)}, nil
}

// Path returns the destination of an image. Components that hold a path
// separator or are "." or ".." are rejected, as is any result outside root.
func (m *Manager) Path(label, photoID, ext string) (string, error) {
	dir, err := m.labelDir(label)
	if err != nil {
		return "", err
	}

	name := photoID + "." + ext
	if !safeComponent(photoID) || strings.ContainsAny(ext, `/\`) {
		return "", errs.Filesystem(filepath.Join(dir, name), ErrUnsafePath)
	}

	return m.within(filepath.Join(dir, name))
}

func (m *Manager) labelDir(label string) (string, error) {
	dir := filepath.Join(m.root, label)
	if !safeComponent(label) {
		return "", errs.Filesystem(dir, ErrUnsafePath)
	}
	return m.within(dir)
}

// within checks that path is strictly below root
func (m *Manager) within(path string) (string, error) {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.Filesystem(path, ErrUnsafePath)
	}
	return path, nil
}

func safeComponent(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// EnsureDir creates the label directory if it is missing
func (m *Manager) EnsureDir(label string) error {
	dir, err := m.labelDir(label)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create label directory %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether the image is already on disk. Content is not verified.
func (m *Manager) Exists(label, photoID, ext string) (bool, error) {
	path, err := m.Path(label, photoID, ext)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// Save writes r to the image's destination and returns the number of bytes
// written. Data goes to a temporary file that is renamed into place, so a
// destination that exists is always complete.
func (m *Manager) Save(r io.Reader, label, photoID, ext string) (int64, error) {
	filename, err := m.Path(label, photoID, ext)
	if err != nil {
		return 0, err
	}

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// Root returns the output directory path
func (m *Manager) Root() string {
	return m.root
}
