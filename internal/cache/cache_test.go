package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(20, 0.25)
	c.Set("a", "1")

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", value)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSetWithExpiryLazyGet(t *testing.T) {
	c := New(20, 0.25)
	c.SetWithExpiry("a", "1", After(10*time.Millisecond))

	_, ok := c.Get("a")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "lazily-expired entry should be removed on read")
}

func TestDelMissingKey(t *testing.T) {
	c := New(20, 0.25)
	err := c.Del("nope")
	require.Error(t, err)
	var notFound *ErrNoSuchKey
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Key)
}

func TestDelExisting(t *testing.T) {
	c := New(20, 0.25)
	c.Set("a", "1")
	require.NoError(t, c.Del("a"))
	assert.True(t, c.IsEmpty())
}

func TestExistsHonorsExpiry(t *testing.T) {
	c := New(20, 0.25)
	c.SetWithExpiry("a", "1", After(10*time.Millisecond))
	assert.True(t, c.Exists("a"))

	time.Sleep(25 * time.Millisecond)
	assert.False(t, c.Exists("a"))
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New(20, 0.25)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestExistingAndExpiredCount(t *testing.T) {
	c := New(20, 0.25)
	c.Set("fresh", "1")
	c.SetWithExpiry("stale", "2", After(-1*time.Second))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.ExistingCount())
	assert.Equal(t, 1, c.ExpiredCount())
}

func TestPurgeRemovesExpiredEntries(t *testing.T) {
	c := New(5, 0.25)
	for i := 0; i < 50; i++ {
		c.SetWithExpiry(string(rune('a'+i%26))+string(rune('0'+i/26)), "v", After(-1*time.Second))
	}

	stats := c.Purge()
	assert.Greater(t, stats.Passes, 0)
	assert.Greater(t, stats.Sampled, 0)
	assert.Equal(t, stats.Sampled, stats.Removed, "every sampled key here was expired")
	assert.Equal(t, 0, c.Len())
}

func TestPurgeStopsBelowThresholdWithFreshEntries(t *testing.T) {
	c := New(10, 0.9)
	for i := 0; i < 20; i++ {
		c.Set(string(rune('a'+i)), "v")
	}

	stats := c.Purge()
	assert.Equal(t, 0, stats.Removed)
	assert.Equal(t, 20, c.Len())
}

func TestPurgeOnEmptyCacheIsNoop(t *testing.T) {
	c := New(20, 0.25)
	stats := c.Purge()
	assert.Equal(t, PurgeStats{}, stats)
}

func TestPurgeLeavesConcurrentlyRefreshedKeyAlone(t *testing.T) {
	c := New(20, 0.25)
	c.SetWithExpiry("k", "old", After(-1*time.Second))

	removed := c.removeIfStillExpired([]string{"k"})
	assert.Equal(t, 1, removed)

	c.SetWithExpiry("k", "old", After(-1*time.Second))
	c.Set("k", "fresh")
	removed = c.removeIfStillExpired([]string{"k"})
	assert.Equal(t, 0, removed, "a key re-set to non-expired between sampling and delete must survive")
	value, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "fresh", value)
}
