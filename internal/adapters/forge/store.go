// Package forge implements the adapter that writes and edits other
// adapters: Node MCP server sources under a fixed servers directory, kept
// in sync with the host client's registration document. File state is the
// only state; every check happens immediately before the mutation it
// guards, with no cross-process atomicity between the two.
package forge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/mcpforge/adapters/internal/registry"
)

// source extensions the store keeps as supplied instead of appending .js
var keptExtensions = map[string]bool{".js": true, ".mjs": true, ".ts": true}

var ErrExists = errors.New("adapter file already exists")
var ErrNotFound = errors.New("adapter file does not exist")

// Store keeps generated adapter sources under one directory. All access
// goes through afero so tests run against an in-memory filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// FileName maps a user-supplied adapter name onto its stored file name:
// the sanitized name plus .js, keeping an explicit .js/.mjs/.ts extension
// when one was supplied. Names that sanitize to nothing are rejected.
func FileName(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	base := name
	if keptExtensions[ext] {
		base = strings.TrimSuffix(name, filepath.Ext(name))
	} else {
		ext = ".js"
	}
	sanitized := registry.Sanitize(base)
	if sanitized == "" {
		return "", fmt.Errorf("adapter name %q is empty after sanitization", name)
	}
	return sanitized + ext, nil
}

// Path resolves an adapter name to its absolute file path.
func (s *Store) Path(name string) (string, error) {
	file, err := FileName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, file), nil
}

func (s *Store) Exists(name string) (bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, path)
}

// Create writes a new adapter file. An existing file of the same
// sanitized name fails with ErrExists unless overwrite is set, and the
// existing content is left untouched.
func (s *Store) Create(name, source string, overwrite bool) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !overwrite {
		return "", fmt.Errorf("%w: %s", ErrExists, filepath.Base(path))
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create servers directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Read returns an existing adapter's source.
func (s *Store) Read(name string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Update overwrites an existing adapter's whole content. Unknown names
// are rejected before anything is written.
func (s *Store) Update(name, source string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", path, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err := afero.WriteFile(s.fs, path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Delete removes an adapter file.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// FileInfo describes one stored adapter file.
type FileInfo struct {
	Name string `json:"name"`
	File string `json:"file"`
	Size int64  `json:"size_bytes"`
}

// List enumerates stored adapter files sorted by name. A missing servers
// directory is an empty catalog, not an error.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if exists, _ := afero.DirExists(s.fs, s.dir); !exists {
			return nil, nil
		}
		return nil, fmt.Errorf("list servers directory: %w", err)
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || !keptExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, FileInfo{
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			File: e.Name(),
			Size: e.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
