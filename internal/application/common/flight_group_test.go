package common_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/application/common"
)

func TestFlightGroup(t *testing.T) {
	t.Run("single caller computes directly", func(t *testing.T) {
		g := common.NewFlightGroup()

		result, sharedResult, contended, err := g.Do("k", time.Second, func() (interface{}, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.False(t, sharedResult)
		assert.False(t, contended)
	})

	t.Run("concurrent callers share one computation", func(t *testing.T) {
		g := common.NewFlightGroup()
		var calls int32
		started := make(chan struct{})
		proceed := make(chan struct{})

		go func() {
			_, _, _, _ = g.Do("k", time.Second, func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				close(started)
				<-proceed
				return "value", nil
			})
		}()

		<-started

		var wg sync.WaitGroup
		sharedCount := int32(0)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, sharedResult, _, err := g.Do("k", time.Second, func() (interface{}, error) {
					atomic.AddInt32(&calls, 1)
					return "value", nil
				})
				assert.NoError(t, err)
				assert.Equal(t, "value", result)
				if sharedResult {
					atomic.AddInt32(&sharedCount, 1)
				}
			}()
		}

		time.Sleep(20 * time.Millisecond)
		close(proceed)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, int32(4), atomic.LoadInt32(&sharedCount))
	})

	t.Run("expired wait budget computes independently", func(t *testing.T) {
		g := common.NewFlightGroup()
		started := make(chan struct{})
		proceed := make(chan struct{})

		go func() {
			_, _, _, _ = g.Do("k", time.Second, func() (interface{}, error) {
				close(started)
				<-proceed
				return "slow", nil
			})
		}()

		<-started
		result, sharedResult, contended, err := g.Do("k", 10*time.Millisecond, func() (interface{}, error) {
			return "independent", nil
		})
		close(proceed)

		require.NoError(t, err)
		assert.Equal(t, "independent", result)
		assert.False(t, sharedResult)
		assert.True(t, contended)
	})
}
