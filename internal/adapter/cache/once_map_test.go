package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestOnceMapComputesOnce(t *testing.T) {
	m := NewOnceMap[string, int]()
	var calls atomic.Int32

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := m.GetOrCompute("k", func() (int, error) {
				calls.Add(1)
				return 42, nil
			})
			if err != nil {
				t.Errorf("GetOrCompute() error = %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("compute called %d times, want 1", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("results[%d] = %d, want 42", i, v)
		}
	}
}

func TestOnceMapRetriesAfterError(t *testing.T) {
	m := NewOnceMap[string, int]()
	boom := errors.New("boom")

	if _, err := m.GetOrCompute("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute() error = %v, want boom", err)
	}
	if m.Len() != 0 {
		t.Fatal("failed computation was kept")
	}

	v, err := m.GetOrCompute("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("GetOrCompute() = %d, %v; want 7, nil", v, err)
	}
}

func TestOnceMapLoadOrStoreFirstWins(t *testing.T) {
	m := NewOnceMap[string, string]()

	if v, loaded := m.LoadOrStore("a", "first"); loaded || v != "first" {
		t.Errorf("LoadOrStore() = %q, %v; want first, false", v, loaded)
	}
	if v, loaded := m.LoadOrStore("a", "second"); !loaded || v != "first" {
		t.Errorf("LoadOrStore() = %q, %v; want first, true", v, loaded)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
