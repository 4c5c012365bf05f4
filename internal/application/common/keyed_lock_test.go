package common_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

func TestKeyedLock(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		locks := common.NewKeyedLock()

		release, err := locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)
		release()

		release, err = locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)
		release()
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		locks := common.NewKeyedLock()

		releaseA, err := locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := locks.Acquire(context.Background(), "campaign:b", time.Second)
		require.NoError(t, err)
		releaseB()
	})

	t.Run("held lock times out the second caller", func(t *testing.T) {
		locks := common.NewKeyedLock()

		release, err := locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)
		defer release()

		_, err = locks.Acquire(context.Background(), "campaign:a", 20*time.Millisecond)
		var lockErr *shared.LockTimeoutError
		require.ErrorAs(t, err, &lockErr)
		assert.Equal(t, "campaign:a", lockErr.Key)
	})

	t.Run("waiter gets the lock when the holder releases in time", func(t *testing.T) {
		locks := common.NewKeyedLock()

		release, err := locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)

		go func() {
			time.Sleep(20 * time.Millisecond)
			release()
		}()

		release2, err := locks.Acquire(context.Background(), "campaign:a", time.Second)
		require.NoError(t, err)
		release2()
	})

	t.Run("try acquire never blocks", func(t *testing.T) {
		locks := common.NewKeyedLock()

		release, ok := locks.TryAcquire("campaign:a")
		require.True(t, ok)

		_, ok = locks.TryAcquire("campaign:a")
		assert.False(t, ok)

		release()
	})
}
