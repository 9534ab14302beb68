package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-battery-roi/internal/scenario"
)

func TestRunCache_PutGetExpire(t *testing.T) {
	c := NewRunCache(time.Minute)
	defer c.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	report := &scenario.Report{}
	id := c.Put(report)
	require.NotEmpty(t, id)

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Same(t, report, got)

	_, ok = c.Get("nope")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestRunCache_DistinctIDs(t *testing.T) {
	c := NewRunCache(0)
	defer c.Close()
	c.Close()

	a := c.Put(&scenario.Report{})
	b := c.Put(&scenario.Report{})
	assert.NotEqual(t, a, b)
	assert.Equal(t, time.Hour, c.ttl)
}
