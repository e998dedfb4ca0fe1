package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a Store on the local file system: bucket b and key k live at
// Root/b/k.
type Dir struct {
	Root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Path returns the file path of an object.
func (d *Dir) Path(bucket, key string) (string, error) {
	if !filepath.IsLocal(bucket) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid object name %q/%q", bucket, key)
	}
	return filepath.Join(d.Root, bucket, filepath.FromSlash(key)), nil
}

// Get reads an object.
func (d *Dir) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.Path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, err
}

// Put writes an object, creating the bucket directory as needed. The content
// type is not stored.
func (d *Dir) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.Path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	// Write then rename so watchers never see a partial object.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}
