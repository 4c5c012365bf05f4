package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/adapters/cache"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/test/helpers"
)

func TestMemoryCache(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		c := cache.NewMemoryCache(shared.NewMockClock(helpers.BaseTime))
		c.Put("k", "v", time.Minute)

		v, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("entries expire by the clock", func(t *testing.T) {
		clock := shared.NewMockClock(helpers.BaseTime)
		c := cache.NewMemoryCache(clock)
		c.Put("k", "v", time.Minute)

		clock.Advance(59 * time.Second)
		_, ok := c.Get("k")
		assert.True(t, ok)

		clock.Advance(2 * time.Second)
		_, ok = c.Get("k")
		assert.False(t, ok)
	})

	t.Run("non-positive ttl never expires", func(t *testing.T) {
		clock := shared.NewMockClock(helpers.BaseTime)
		c := cache.NewMemoryCache(clock)
		c.Put("k", "v", 0)

		clock.Advance(1000 * time.Hour)
		_, ok := c.Get("k")
		assert.True(t, ok)
	})

	t.Run("forget drops the entry", func(t *testing.T) {
		c := cache.NewMemoryCache(shared.NewMockClock(helpers.BaseTime))
		c.Put("k", "v", time.Minute)
		c.Forget("k")

		_, ok := c.Get("k")
		assert.False(t, ok)
	})

	t.Run("remember computes once until expiry", func(t *testing.T) {
		clock := shared.NewMockClock(helpers.BaseTime)
		c := cache.NewMemoryCache(clock)

		calls := 0
		compute := func() (interface{}, error) {
			calls++
			return calls, nil
		}

		v, err := c.Remember("k", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		v, err = c.Remember("k", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, 1, calls)

		clock.Advance(2 * time.Minute)
		v, err = c.Remember("k", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("remember propagates compute errors without caching them", func(t *testing.T) {
		c := cache.NewMemoryCache(shared.NewMockClock(helpers.BaseTime))

		_, err := c.Remember("k", time.Minute, func() (interface{}, error) {
			return nil, errors.New("boom")
		})
		assert.Error(t, err)

		v, err := c.Remember("k", time.Minute, func() (interface{}, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})
}
