package cache

import "sync"

// OnceMap is a concurrent map whose values are computed at most once per
// key. Concurrent callers asking for the same key wait for the first
// computation instead of repeating it. A failed computation is not kept, so
// the next caller retries.
type OnceMap[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*onceEntry[V]
}

type onceEntry[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func NewOnceMap[K comparable, V any]() *OnceMap[K, V] {
	return &OnceMap[K, V]{entries: make(map[K]*onceEntry[V])}
}

// GetOrCompute returns the value stored for key, calling compute to produce
// it if the key is absent.
func (m *OnceMap[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		e, ok = m.entries[key]
		if !ok {
			e = &onceEntry[V]{done: make(chan struct{})}
			m.entries[key] = e
		}
		m.mu.Unlock()

		if !ok {
			e.value, e.err = compute()
			if e.err != nil {
				m.mu.Lock()
				delete(m.entries, key)
				m.mu.Unlock()
			}
			close(e.done)
			return e.value, e.err
		}
	}

	<-e.done
	return e.value, e.err
}

// LoadOrStore stores value under key unless the key already holds a
// completed value. It reports whether the returned value was already
// present.
func (m *OnceMap[K, V]) LoadOrStore(key K, value V) (V, bool) {
	stored := true
	v, _ := m.GetOrCompute(key, func() (V, error) {
		stored = false
		return value, nil
	})
	return v, stored
}

func (m *OnceMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
