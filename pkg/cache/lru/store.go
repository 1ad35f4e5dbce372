// Package lru implements a bounded string store with least-recently-used
// eviction and time-to-live expiration.
//
// Recency and capacity eviction come from hashicorp/golang-lru's simplelru.
// A second list orders entries by write time and is reordered only on Set, so
// entries past their TTL always form a prefix of it and an expiry pass
// touches only the entries it removes. This relies on write times passed to
// Set never going backwards.
//
// Store is not safe for concurrent use; callers serialize access.
package lru

import (
	"container/list"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type entry struct {
	key       string
	value     string
	timestamp time.Time
	written   *list.Element // in Store.writes, front is oldest write
}

// Store is an ordered key→value map bounded by size and age.
type Store struct {
	maxSize int
	ttl     time.Duration
	recency *simplelru.LRU[string, *entry]
	writes  *list.List
}

// New creates a Store holding at most maxSize entries, each for at most ttl.
// A non-positive maxSize is treated as 1.
func New(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 1
	}
	s := &Store{
		maxSize: maxSize,
		ttl:     ttl,
		writes:  list.New(),
	}
	// NewLRU only fails for a non-positive size.
	s.recency, _ = simplelru.NewLRU[string, *entry](maxSize, s.onRemove)
	return s
}

// onRemove keeps the write list in step with every removal simplelru makes,
// whether from capacity eviction, Remove or Purge.
func (s *Store) onRemove(_ string, e *entry) {
	s.writes.Remove(e.written)
}

// Len returns the number of resident entries, including any that have
// expired but not yet been pruned.
func (s *Store) Len() int { return s.recency.Len() }

// Get returns the value for key and promotes it to most recently used.
// The entry's timestamp is left alone: reads never extend its lifetime.
func (s *Store) Get(key string) (string, bool) {
	e, ok := s.recency.Get(key)
	if !ok {
		return "", false
	}
	return e.value, true
}

// peek returns the value and write time for key without touching recency.
func (s *Store) peek(key string) (value string, writtenAt time.Time, ok bool) {
	e, ok := s.recency.Peek(key)
	if !ok {
		return "", time.Time{}, false
	}
	return e.value, e.timestamp, true
}

// Set stores value under key as the most recently used entry written at now,
// evicting the least recently used entry if the store is full. It returns the
// number of entries evicted.
func (s *Store) Set(key, value string, now time.Time) int {
	if e, ok := s.recency.Get(key); ok {
		e.value = value
		e.timestamp = now
		s.writes.MoveToBack(e.written)
		return 0
	}

	e := &entry{key: key, value: value, timestamp: now}
	e.written = s.writes.PushBack(e)
	if s.recency.Add(key, e) {
		return 1
	}
	return 0
}

// Prune removes every entry older than the TTL at now, then evicts least
// recently used entries until the store is within capacity.
func (s *Store) Prune(now time.Time) (expired, evicted int) {
	expired = s.expire(now)
	for s.recency.Len() > s.maxSize {
		if _, _, ok := s.recency.RemoveOldest(); !ok {
			break
		}
		evicted++
	}
	return expired, evicted
}

// Clear removes every entry.
func (s *Store) Clear() int {
	n := s.recency.Len()
	s.recency.Purge()
	s.writes.Init()
	return n
}

// Keys returns resident keys from most to least recently used.
func (s *Store) Keys() []string {
	keys := s.recency.Keys() // oldest first
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

func (s *Store) expire(now time.Time) int {
	n := 0
	for el := s.writes.Front(); el != nil; el = s.writes.Front() {
		e := el.Value.(*entry)
		if now.Sub(e.timestamp) <= s.ttl {
			break
		}
		s.recency.Remove(e.key)
		n++
	}
	return n
}
