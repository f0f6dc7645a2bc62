package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, zaptest.NewLogger(t))

	var order []string
	for _, name := range []string{"storage", "redis", "http"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	m.Register("ignored", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "redis", "storage"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, zaptest.NewLogger(t))
	boom := errors.New("boom")

	ran := false
	m.Register("first", func(ctx context.Context) error {
		ran = true
		return nil
	})
	m.Register("second", func(ctx context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "second")
	assert.True(t, ran)
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(20*time.Millisecond, zaptest.NewLogger(t))
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
