package timeutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/csflow/internal/utils/timeutil"
)

func TestSleep(t *testing.T) {
	t.Run("Sleep should wait the duration.", func(t *testing.T) {
		start := time.Now()
		err := timeutil.Sleep(context.Background(), 20*time.Millisecond)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("Sleep should end when the context is cancelled.", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := timeutil.Sleep(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
