package report

import (
	"container/list"
	"sync"
)

// MemStore is an in-memory LRU cache that delegates to a backing Store
// on miss. Recent runs are served without touching the disk.
type MemStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	order *list.List // front = most recently used; element values are *memEntry
	index map[string]*list.Element
}

type memEntry struct {
	id     string
	result *RunResult
}

// NewMemStore creates an LRU cache with the given capacity in front of
// back. Capacity must be >= 1.
func NewMemStore(capacity int, back Store) *MemStore {
	if capacity < 1 {
		capacity = 1
	}
	return &MemStore{
		cap:   capacity,
		back:  back,
		order: list.New(),
		index: make(map[string]*list.Element, capacity),
	}
}

// Save caches the result and delegates to the backing store.
func (s *MemStore) Save(result *RunResult) error {
	s.mu.Lock()
	s.insert(result)
	s.mu.Unlock()
	return s.back.Save(result)
}

// Load checks the cache first. On miss it loads from the backing store
// and promotes the result into the cache.
func (s *MemStore) Load(runID string) (*RunResult, error) {
	s.mu.Lock()
	if el, ok := s.index[runID]; ok {
		s.order.MoveToFront(el)
		r := el.Value.(*memEntry).result
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	result, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.insert(result)
	s.mu.Unlock()
	return result, nil
}

// insert adds or refreshes an entry and evicts the oldest once over
// capacity. Caller holds s.mu.
func (s *MemStore) insert(result *RunResult) {
	if el, ok := s.index[result.ID]; ok {
		el.Value.(*memEntry).result = result
		s.order.MoveToFront(el)
		return
	}
	s.index[result.ID] = s.order.PushFront(&memEntry{id: result.ID, result: result})
	if s.order.Len() > s.cap {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*memEntry).id)
	}
}
