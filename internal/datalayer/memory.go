package datalayer

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryBlobStorage keeps stored objects in a map. It exists for tests
// and local development without an object store.
type MemoryBlobStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryBlobStorage(baseURL string) *MemoryBlobStorage {
	return &MemoryBlobStorage{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

var _ BlobStorage = (*MemoryBlobStorage)(nil)

func (s *MemoryBlobStorage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read blob data: %w", err)
	}
	s.mu.Lock()
	s.objects[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

// Get returns the stored bytes for a key. Test helper.
func (s *MemoryBlobStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
