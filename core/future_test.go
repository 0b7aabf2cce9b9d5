package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThen_SequencesFutures(t *testing.T) {
	ctx := context.Background()
	calls := 0
	f := Then[int, string](&countdown[int]{after: 1, value: 2}, func(_ context.Context, n int) Future[string] {
		calls++
		return &countdown[string]{after: 1, value: "done"}
	})

	_, ok := f.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, 0, calls)

	_, ok = f.Poll(ctx)
	require.False(t, ok, "second future must be polled in the same step and still be pending")
	assert.Equal(t, 1, calls)

	v, ok := f.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, "done", v)
	assert.Equal(t, 1, calls)
}

func TestMap_TransformsValue(t *testing.T) {
	f := Map(Ready(20), func(_ context.Context, n int) int { return n + 1 })

	v, ok := f.Poll(context.Background())

	require.True(t, ok)
	assert.Equal(t, 21, v)
}

func TestLazy_BuildsOnFirstPollOnly(t *testing.T) {
	builds := 0
	f := Lazy(func(context.Context) Future[Unit] {
		builds++
		return YieldNow()
	})
	assert.Equal(t, 0, builds)

	ctx := context.Background()
	_, ok := f.Poll(ctx)
	assert.False(t, ok)
	_, ok = f.Poll(ctx)
	assert.True(t, ok)
	assert.Equal(t, 1, builds)
}

func TestLazy_ReachesSchedulerInsideBurst(t *testing.T) {
	slot := NewSlot()
	sched := newFakeScheduler()
	task := Lazy(func(ctx context.Context) Task {
		CurrentScheduler(ctx).Push(Ready(Unit{}))
		return Ready(Unit{})
	})

	slot.Burst(context.Background(), sched, func(ctx context.Context) {
		_, ok := task.Poll(ctx)
		assert.True(t, ok)
	})

	assert.Len(t, sched.outstanding, 1)
}

func TestDiscardAndRun(t *testing.T) {
	ctx := context.Background()
	d := Discard[int](&countdown[int]{after: 1, value: 7})

	_, ok := d.Poll(ctx)
	assert.False(t, ok)
	_, ok = d.Poll(ctx)
	assert.True(t, ok)

	ran := 0
	r := Run(func(context.Context) { ran++ })
	_, ok = r.Poll(ctx)
	assert.True(t, ok)
	assert.Equal(t, 1, ran)
}
