package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes rendered scratch profiles next to each other in one
// directory.
type Store struct {
	dir      string
	base     []byte
	basePath string
}

// NewStore returns a Store rendering basePath, or the built-in profile when
// basePath is empty, into dir.
func NewStore(dir, basePath string) (*Store, error) {
	base := Default()
	if basePath != "" {
		data, err := os.ReadFile(basePath)
		if err != nil {
			return nil, &TemplateError{Path: basePath, Err: err}
		}
		base = data
	}
	return &Store{dir: dir, base: base, basePath: basePath}, nil
}

// Path returns the scratch profile path of container name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, "temp_"+name+".yaml")
}

// Create renders the base profile with p and persists it as the scratch
// profile of container name. Nothing is written when rendering fails.
func (s *Store) Create(name string, p Params) (string, []byte, error) {
	data, err := Render(s.base, p)
	if err != nil {
		var te *TemplateError
		if errors.As(err, &te) && te.Path == "" {
			te.Path = s.basePath
		}
		return "", nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", nil, &TemplateError{Path: s.dir, Err: err}
	}
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, &TemplateError{Path: path, Err: fmt.Errorf("write scratch profile: %w", err)}
	}
	return path, data, nil
}

// Remove deletes a scratch profile. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
