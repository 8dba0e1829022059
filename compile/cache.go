package compile

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/recodec/recodec"
)

// cacheKey identifies a compiled descriptor: record type identity plus
// configuration identity (pointer identity; nil is the shared default).
type cacheKey struct {
	record string
	cfg    *recodec.Config
}

// cache memoizes record descriptors for the lifetime of the process.
// Entries are never evicted during normal operation; invalidate exists for
// test isolation. singleflight provides the compile-once-per-key guarantee:
// concurrent requests for the same key share one compilation and receive the
// identical descriptor instance.
type cache struct {
	mu    sync.RWMutex
	m     map[cacheKey]*recodec.RecordDescriptor
	group singleflight.Group
}

func newCache() *cache {
	return &cache{m: map[cacheKey]*recodec.RecordDescriptor{}}
}

func (ch *cache) get(key cacheKey) (*recodec.RecordDescriptor, bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	rd, ok := ch.m[key]
	return rd, ok
}

func (ch *cache) put(key cacheKey, rd *recodec.RecordDescriptor) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if _, exists := ch.m[key]; !exists {
		ch.m[key] = rd
	}
}

func (ch *cache) getOrCompile(c *Compiler, record string, cfg *recodec.Config) (*recodec.RecordDescriptor, error) {
	key := cacheKey{record: record, cfg: cfg}
	if rd, ok := ch.get(key); ok {
		return rd, nil
	}
	// Nested records compiled within a session bypass this path through the
	// session's in-progress map, so recursive graphs cannot deadlock here.
	sfKey := fmt.Sprintf("%s\x00%p", record, cfg)
	v, err, _ := ch.group.Do(sfKey, func() (any, error) {
		if rd, ok := ch.get(key); ok {
			return rd, nil
		}
		s := newSession(c)
		rd, err := s.record(record, cfg)
		if err != nil {
			return nil, err
		}
		s.publish(ch)
		// Return the instance actually stored, in case a racing session
		// published the key first.
		if stored, ok := ch.get(key); ok {
			return stored, nil
		}
		return rd, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*recodec.RecordDescriptor), nil
}

func (ch *cache) invalidate(record string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	for key := range ch.m {
		if key.record == record {
			delete(ch.m, key)
		}
	}
}
