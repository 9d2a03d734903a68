package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Disk stores files under a root directory that is served publicly at
// publicURL. Paths handed out by Put are slash-separated and relative to root.
type Disk struct {
	root      string
	publicURL string
}

func NewDisk(root, publicURL string) *Disk {
	return &Disk{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (d *Disk) Root() string {
	return d.root
}

// Put writes r to namespace/name and returns the relative path.
func (d *Disk) Put(namespace, name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidPath
	}

	rel := path.Join(namespace, name)
	abs, err := d.abs(rel)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	dst, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(abs)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(abs)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return rel, nil
}

// Delete removes a stored file. Missing files are not an error.
func (d *Disk) Delete(rel string) error {
	abs, err := d.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (d *Disk) Exists(rel string) bool {
	abs, err := d.abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

func (d *Disk) URL(rel string) string {
	return d.publicURL + "/" + strings.TrimLeft(rel, "/")
}

func (d *Disk) abs(rel string) (string, error) {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(d.root, filepath.FromSlash(clean[1:])), nil
}
