package core

import (
	"fmt"
	"sync"
)

type instanceSlot struct {
	once sync.Once
	h    any
	err  error
}

// instanceCache holds one constructed handler per endpoint key. Concurrent
// first uses of a key share a single construction. A failed construction
// clears its slot so the next call tries again. Entries are never evicted.
type instanceCache struct {
	mu    sync.Mutex
	slots map[string]*instanceSlot
}

func newInstanceCache() *instanceCache {
	return &instanceCache{slots: map[string]*instanceSlot{}}
}

func (c *instanceCache) getOrCreate(key string, create func() (any, error)) (any, error) {
	c.mu.Lock()
	s, ok := c.slots[key]
	if !ok {
		s = &instanceSlot{}
		c.slots[key] = s
	}
	c.mu.Unlock()

	s.once.Do(func() {
		s.h, s.err = safeCreate(create)
	})
	if s.err != nil {
		c.mu.Lock()
		if c.slots[key] == s {
			delete(c.slots, key)
		}
		c.mu.Unlock()
		return nil, s.err
	}
	return s.h, nil
}

func safeCreate(create func() (any, error)) (h any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("handler construction panicked: %v", r)
		}
	}()
	h, err = create()
	if err == nil && h == nil {
		err = fmt.Errorf("handler factory returned nil")
	}
	return h, err
}
