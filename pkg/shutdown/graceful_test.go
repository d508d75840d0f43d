package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopAllRunsEveryTarget(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	err := StopAll(context.Background(), time.Second,
		StopFunc(func(context.Context) error { order = append(order, "http"); return boom }),
		nil,
		StopFunc(func(context.Context) error { order = append(order, "db"); return nil }),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"http", "db"}, order)
}

func TestStopAllAppliesDeadline(t *testing.T) {
	err := StopAll(context.Background(), 10*time.Millisecond,
		StopFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		}),
	)
	assert.NoError(t, err)
}
