package lru

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSetAndGet(t *testing.T) {
	s := New(3, time.Hour)

	s.Set("a", "1", epoch)
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestEvictsFirstInserted(t *testing.T) {
	s := New(5, time.Hour)
	for i := range 6 {
		s.Set(fmt.Sprintf("k%d", i), "v", epoch)
	}

	assert.Equal(t, 5, s.Len())
	_, ok := s.Get("k0")
	assert.False(t, ok, "first-inserted key should be evicted")
	for i := 1; i < 6; i++ {
		_, ok := s.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should survive", i)
	}
}

func TestHitProtectsFromEviction(t *testing.T) {
	s := New(5, time.Hour)
	for i := range 5 {
		s.Set(fmt.Sprintf("k%d", i), "v", epoch)
	}
	_, ok := s.Get("k0")
	require.True(t, ok)

	evicted := s.Set("k5", "v", epoch)
	assert.Equal(t, 1, evicted)

	_, ok = s.Get("k0")
	assert.True(t, ok, "recently read key should survive")
	_, ok = s.Get("k1")
	assert.False(t, ok, "k1 is now least recently used")
}

func TestKeysOrder(t *testing.T) {
	s := New(10, time.Hour)
	s.Set("a", "", epoch)
	s.Set("b", "", epoch)
	s.Set("c", "", epoch)
	s.Get("a")

	assert.Equal(t, []string{"a", "c", "b"}, s.Keys())
}

func TestPruneExpires(t *testing.T) {
	s := New(10, time.Minute)
	s.Set("old", "v", epoch)
	s.Set("edge", "v", epoch.Add(25*time.Second))
	s.Set("new", "v", epoch.Add(50*time.Second))

	expired, evicted := s.Prune(epoch.Add(90 * time.Second))
	assert.Equal(t, 2, expired)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, []string{"new"}, s.Keys())
}

func TestPruneAgeEqualToTTLIsKept(t *testing.T) {
	s := New(10, time.Minute)
	s.Set("a", "v", epoch)

	expired, _ := s.Prune(epoch.Add(time.Minute))
	assert.Equal(t, 0, expired)
	assert.Equal(t, 1, s.Len())
}

func TestReadDoesNotExtendLifetime(t *testing.T) {
	s := New(10, time.Minute)
	s.Set("popular", "v", epoch)
	s.Set("other", "v", epoch.Add(10*time.Second))

	for i := range 5 {
		s.Prune(epoch.Add(time.Duration(i*10) * time.Second))
		_, ok := s.Get("popular")
		require.True(t, ok)
	}

	s.Prune(epoch.Add(65 * time.Second))
	_, ok := s.Get("popular")
	assert.False(t, ok, "hits must not refresh the write time")
	_, ok = s.Get("other")
	assert.True(t, ok)
}

func TestRewriteRefreshesTimestamp(t *testing.T) {
	s := New(10, time.Minute)
	s.Set("a", "v1", epoch)
	s.Set("b", "v", epoch.Add(10*time.Second))
	s.Set("a", "v2", epoch.Add(50*time.Second))

	s.Prune(epoch.Add(80 * time.Second))
	v, at, ok := s.peek("a")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, epoch.Add(50*time.Second), at)
	_, ok = s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestClear(t *testing.T) {
	s := New(10, time.Hour)
	s.Set("a", "v", epoch)
	s.Set("b", "v", epoch)

	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())

	s.Set("c", "v", epoch)
	assert.Equal(t, []string{"c"}, s.Keys())
}

func TestNonPositiveMaxSize(t *testing.T) {
	s := New(0, time.Hour)
	s.Set("a", "v", epoch)
	s.Set("b", "v", epoch)
	assert.Equal(t, []string{"b"}, s.Keys())
}

func TestInvariantsUnderRandomOps(t *testing.T) {
	const maxSize = 8
	ttl := 30 * time.Second
	s := New(maxSize, ttl)
	rng := rand.New(rand.NewSource(42))
	now := epoch

	for range 5000 {
		now = now.Add(time.Duration(rng.Intn(3000)) * time.Millisecond)
		key := fmt.Sprintf("k%d", rng.Intn(20))
		s.Prune(now)
		if _, ok := s.Get(key); !ok {
			s.Set(key, "v", now)
		}

		require.LessOrEqual(t, s.Len(), maxSize)
		require.Len(t, s.Keys(), s.Len())
	}

	s.Prune(now)
	for _, k := range s.Keys() {
		_, at, ok := s.peek(k)
		require.True(t, ok)
		assert.LessOrEqual(t, now.Sub(at), ttl)
	}
}
