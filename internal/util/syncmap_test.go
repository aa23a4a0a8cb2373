package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap_LoadStore(t *testing.T) {
	sm := NewSyncMap[string, int]()

	_, ok := sm.Load("missing")
	assert.False(t, ok)

	sm.Store("a", 1)
	v, ok := sm.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, sm.Len())
}

func TestSyncMap_LoadOrStore(t *testing.T) {
	sm := NewSyncMap[string, int]()

	v, loaded := sm.LoadOrStore("k", 10)
	assert.False(t, loaded)
	assert.Equal(t, 10, v)

	v, loaded = sm.LoadOrStore("k", 99)
	assert.True(t, loaded)
	assert.Equal(t, 10, v, "existing value wins")
}

func TestSyncMap_Delete(t *testing.T) {
	sm := NewSyncMap[string, int]()
	sm.Store("k", 1)
	sm.Delete("k")

	_, ok := sm.Load("k")
	assert.False(t, ok)
	assert.Equal(t, 0, sm.Len())
}

func TestSyncMap_Range(t *testing.T) {
	sm := NewSyncMap[string, int]()
	sm.Store("a", 1)
	sm.Store("b", 2)

	seen := make(map[string]int)
	sm.Range(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
}

func TestSyncMap_ConcurrentAccess(t *testing.T) {
	sm := NewSyncMap[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			sm.Store(i, i)
			sm.Load(i)
			sm.LoadOrStore(i, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, sm.Len())
}
