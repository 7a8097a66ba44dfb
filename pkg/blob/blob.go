package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files and returns a URL the API can serve.
type Storage interface {
	Save(dir, filename string, r io.Reader) (string, error)
	Remove(url string) error
}

type localStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage stores files under root and serves them from baseURL.
func NewLocalStorage(root, baseURL string) (Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStorage{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *localStorage) Save(dir, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	name := uuid.New().String() + ext

	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, dir, name), nil
}

func (s *localStorage) Remove(url string) error {
	rel := strings.TrimPrefix(url, s.baseURL+"/")
	if rel == url || strings.Contains(rel, "..") {
		return fmt.Errorf("url outside storage root")
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
