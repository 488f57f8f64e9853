package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Disk stores avatars as files in a single upload directory.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return name, nil
}

func (d *Disk) Remove(_ context.Context, ref string) error {
	if filepath.Base(ref) != ref {
		return fmt.Errorf("invalid avatar reference %q", ref)
	}
	if err := os.Remove(filepath.Join(d.dir, ref)); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}

// Dir returns the upload directory, for serving files statically.
func (d *Disk) Dir() string { return d.dir }
