package lru

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCacheService implements [cache.Service] with a fixed-capacity
// in-process LRU. When the cache is full the least recently used entry
// is evicted to make room; both Get and Set count as a use.
type LRUCacheService struct {
	entries *lru.Cache[string, string]
}

func New(capacity int) (*LRUCacheService, error) {
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("fail to create lru cache: %w", err)
	}
	return &LRUCacheService{entries: entries}, nil
}

// Get implements [cache.Service].
func (s *LRUCacheService) Get(_ context.Context, question string) (string, bool, error) {
	answer, ok := s.entries.Get(question)
	return answer, ok, nil
}

// Set implements [cache.Service].
func (s *LRUCacheService) Set(_ context.Context, question string, answer string) error {
	s.entries.Add(question, answer)
	return nil
}

// Shutdown implements [cache.Service]. The LRU holds no external
// resources so this is a no-op.
func (s *LRUCacheService) Shutdown() {}

// Len returns the number of cached entries.
func (s *LRUCacheService) Len() int {
	return s.entries.Len()
}
