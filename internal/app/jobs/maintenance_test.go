package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New("every now and then", time.UTC, time.Second, func(context.Context) error { return nil }, zap.NewNop())
	require.Error(t, err)
}

func TestRunNow(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@hourly", time.UTC, time.Second, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs.Add(1)
		return nil
	}, zap.NewNop())
	require.NoError(t, err)

	s.RunNow()
	s.RunNow()
	assert.Equal(t, int32(2), runs.Load())
}

func TestRunNow_SurvivesFailureAndPanic(t *testing.T) {
	var calls atomic.Int32
	s, err := New("*/5 * * * *", time.UTC, time.Second, func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("store unavailable")
		}
		panic("boom")
	}, zap.NewNop())
	require.NoError(t, err)

	assert.NotPanics(t, s.RunNow)
	assert.NotPanics(t, s.RunNow)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStartStop(t *testing.T) {
	s, err := New("@daily", time.UTC, time.Second, func(context.Context) error { return nil }, zap.NewNop())
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
