package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS is a DocumentStore backed by a plain directory tree.
type FS struct {
	root string
}

// NewFS creates a filesystem vault rooted at dir, creating the root
// if it does not exist.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("vault root must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating vault root %s: %w", dir, err)
	}
	return &FS{root: dir}, nil
}

// Root returns the vault root directory.
func (v *FS) Root() string {
	return v.root
}

// abs maps a vault-relative path onto the filesystem. The "/" root
// marker and leading "./" are normalized away.
func (v *FS) abs(path string) string {
	path = strings.TrimPrefix(path, "./")
	if path == "/" || path == "" {
		return v.root
	}
	return filepath.Join(v.root, filepath.FromSlash(path))
}

func (v *FS) Exists(path string) bool {
	info, err := os.Stat(v.abs(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (v *FS) Read(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(v.abs(path))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func (v *FS) Create(_ context.Context, path, content string) error {
	return v.createFile(path, []byte(content))
}

func (v *FS) CreateBinary(_ context.Context, path string, data []byte) error {
	return v.createFile(path, data)
}

func (v *FS) createFile(path string, data []byte) error {
	target := v.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", path, err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (v *FS) Modify(_ context.Context, path, content string) error {
	target := v.abs(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("modifying %s: %w", path, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("modifying %s: %w", path, err)
	}
	return nil
}

func (v *FS) CreateFolder(_ context.Context, path string) error {
	if err := os.MkdirAll(v.abs(path), 0o755); err != nil {
		return fmt.Errorf("creating folder %s: %w", path, err)
	}
	return nil
}

// Open is a post-create focus hook. A directory tree has no notion of
// an open document, so this only verifies the file is readable.
func (v *FS) Open(_ context.Context, path string) error {
	if _, err := os.Stat(v.abs(path)); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}
