// Package registry owns the host client's registration document: the JSON
// file mapping adapter names to the commands that launch them. The document
// is read, modified, and rewritten wholesale; a sidecar advisory lock keeps
// two writers from interleaving.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/mcpforge/adapters/internal/logging"
)

// Entry tells the host client how to launch one adapter process.
type Entry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// Document is the registration file's root object.
type Document struct {
	Servers map[string]Entry `json:"mcpServers"`
}

var unsafeRune = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Sanitize maps an adapter name onto the character set safe for registry
// keys and file names. Two names that collapse to the same sanitized form
// refer to the same adapter.
func Sanitize(name string) string {
	return unsafeRune.ReplaceAllString(name, "_")
}

// Registry performs locked read-modify-write cycles against one document
// path.
type Registry struct {
	path string
	mu   sync.Mutex
	log  logging.Logger
}

func New(path string, log logging.Logger) *Registry {
	return &Registry{path: path, log: log.WithName("registry")}
}

// Default resolves the host client's platform-specific document path.
func Default(log logging.Logger) (*Registry, error) {
	path, err := ClientConfigPath()
	if err != nil {
		return nil, err
	}
	return New(path, log), nil
}

func (r *Registry) Path() string {
	return r.path
}

// Load reads the current document. A missing file yields an empty document
// rather than an error.
func (r *Registry) Load() (*Document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{Servers: map[string]Entry{}}, nil
		}
		return nil, fmt.Errorf("read registration document: %w", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse registration document %s: %w", r.path, err)
	}
	if doc.Servers == nil {
		doc.Servers = map[string]Entry{}
	}
	return doc, nil
}

// Upsert registers an adapter under its sanitized name and returns that
// name. The entry's args slice is normalized so the document never carries
// a null where the host expects a list.
func (r *Registry) Upsert(name string, entry Entry) (string, error) {
	key := Sanitize(name)
	if key == "" {
		return "", errors.New("adapter name is empty after sanitization")
	}
	if entry.Command == "" {
		return "", errors.New("registration entry requires a command")
	}
	if entry.Args == nil {
		entry.Args = []string{}
	}
	err := r.mutate(func(doc *Document) error {
		doc.Servers[key] = entry
		return nil
	})
	if err != nil {
		return "", err
	}
	r.log.Info("registered adapter", "name", key, "command", entry.Command)
	return key, nil
}

// Remove drops an adapter's entry. The boolean reports whether the entry
// existed.
func (r *Registry) Remove(name string) (bool, error) {
	key := Sanitize(name)
	existed := false
	err := r.mutate(func(doc *Document) error {
		_, existed = doc.Servers[key]
		delete(doc.Servers, key)
		return nil
	})
	if err != nil {
		return false, err
	}
	if existed {
		r.log.Info("unregistered adapter", "name", key)
	}
	return existed, nil
}

// Names lists registered adapter names in sorted order.
func (r *Registry) Names() ([]string, error) {
	doc, err := r.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Servers))
	for name := range doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ExportYAML renders the document as YAML for human inspection.
func (r *Registry) ExportYAML() ([]byte, error) {
	doc, err := r.Load()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// mutate runs one locked load-modify-validate-save cycle.
func (r *Registry) mutate(fn func(*Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registration directory: %w", err)
	}
	release, err := acquireLock(r.path)
	if err != nil {
		return err
	}
	defer release()

	doc, err := r.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.save(doc)
}

// save validates the document and writes it atomically: temp file in the
// same directory, then rename over the target.
func (r *Registry) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registration document: %w", err)
	}
	if err := Validate(data); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("create temp registration file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registration document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp registration file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod registration document: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace registration document: %w", err)
	}
	return nil
}
