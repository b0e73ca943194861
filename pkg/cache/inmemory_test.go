package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_TypedLookup(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("bars", []int{1, 2, 3})
	c.SetTTL("name", "btc", time.Minute)

	bars, ok := Get[[]int](c, "bars")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, bars)

	_, ok = Get[[]int](c, "name")
	assert.False(t, ok, "wrong type is a miss")

	_, ok = Get[string](c, "missing")
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())
	c.Delete("name", "bars", "missing")
	assert.Equal(t, 0, c.Len())
}

func TestLoad(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := Load(c, "answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Load(c, "answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, err = Load(c, "broken", func() (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok := c.Get("broken")
	assert.False(t, ok, "errors are not cached")
}
