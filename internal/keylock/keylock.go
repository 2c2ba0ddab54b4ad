// Package keylock provides mutual exclusion keyed by string.
//
// Launch commits lock the post id, symbol and mint they are about to claim;
// fee operations lock the mint. Keys are deduplicated and acquired in sorted
// order so two callers locking overlapping sets cannot deadlock.
package keylock

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Locker acquires a set of keys at once.
// The returned unlock releases every key and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// PostKey names the lock for a social post id.
func PostKey(postID string) string { return "post:" + postID }

// SymbolKey names the lock for a ticker. Symbols compare case-insensitively.
func SymbolKey(symbol string) string { return "symbol:" + strings.ToUpper(symbol) }

// MintKey names the lock for a mint address.
func MintKey(mint string) string { return "mint:" + mint }

// FeesKey names the lock serializing claim and distribute for one mint.
func FeesKey(mint string) string { return "fees:" + mint }

// Normalize drops empty and duplicate keys and sorts the rest.
func Normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Memory is an in-process Locker.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewMemory creates an in-process keyed mutex.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*entry)}
}

var _ Locker = (*Memory)(nil)

// Lock blocks until every key is held or ctx is done.
func (m *Memory) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = Normalize(keys)
	held := make([]string, 0, len(keys))

	for _, k := range keys {
		e := m.acquireRef(k)
		select {
		case e.sem <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			m.releaseRef(k)
			m.unlockAll(held)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(func() { m.unlockAll(held) }) }, nil
}

func (m *Memory) acquireRef(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	return e
}

func (m *Memory) releaseRef(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

func (m *Memory) unlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		e := m.locks[keys[i]]
		m.mu.Unlock()

		<-e.sem
		m.releaseRef(keys[i])
	}
}

// size reports how many keys have waiters or holders.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
