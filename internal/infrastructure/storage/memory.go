package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const memoryScheme = "memory://"

// MemoryStore is an in-process Store for tests and local demos
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	remote  *HTTPFetcher
}

func NewMemoryStore(remote *HTTPFetcher) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		remote:  remote,
	}
}

func (s *MemoryStore) Upload(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; ok {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf

	return memoryScheme + key, nil
}

func (s *MemoryStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, memoryScheme) {
		if s.remote == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		return s.remote.Fetch(ctx, url)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[strings.TrimPrefix(url, memoryScheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Len reports the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
