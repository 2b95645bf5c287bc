package workbook

import (
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Store holds open workbooks by name. The interface hides the map so
// the backing can become bounded or persistent without touching call
// sites. State is ephemeral: nothing survives process exit except files
// explicitly saved.
type Store interface {
	Get(name string) (*excelize.File, bool)
	Put(name string, file *excelize.File)
	Delete(name string) (*excelize.File, bool)
	Names() []string
}

type memStore struct {
	mu    sync.Mutex
	books map[string]*excelize.File
}

func NewMemStore() Store {
	return &memStore{books: map[string]*excelize.File{}}
}

func (s *memStore) Get(name string) (*excelize.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.books[name]
	return file, ok
}

func (s *memStore) Put(name string, file *excelize.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[name] = file
}

func (s *memStore) Delete(name string) (*excelize.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.books[name]
	if ok {
		delete(s.books, name)
	}
	return file, ok
}

func (s *memStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.books))
	for name := range s.books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
