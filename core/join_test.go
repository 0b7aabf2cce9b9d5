package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJoin_ReadyAfterSlowestMember tests fan-in completion
// Main test items:
// 1. Members finish after different numbers of polls
// 2. Join is pending until the slowest member is ready
// 3. Values come back in argument order, not completion order
func TestJoin_ReadyAfterSlowestMember(t *testing.T) {
	cases := [][]int{
		{0},
		{3, 0, 1},
		{0, 0, 0},
		{5, 2, 7, 1},
		{1, 1},
	}

	for _, ks := range cases {
		t.Run(fmt.Sprint(ks), func(t *testing.T) {
			futures := make([]Future[int], len(ks))
			maxK := 0
			for i, k := range ks {
				futures[i] = &countdown[int]{after: k, value: i * 10}
				maxK = max(maxK, k)
			}

			j := Join(futures...)
			ctx := context.Background()

			for step := 0; step < maxK; step++ {
				_, ok := j.Poll(ctx)
				require.False(t, ok, "join ready too early at poll %d", step+1)
			}

			values, ok := j.Poll(ctx)
			require.True(t, ok, "join not ready after %d polls", maxK+1)

			want := make([]int, len(ks))
			for i := range ks {
				want[i] = i * 10
			}
			assert.Equal(t, want, values)
		})
	}
}

func TestJoin_EmptyIsReadyOnFirstPoll(t *testing.T) {
	j := Join[string]()

	values, ok := j.Poll(context.Background())

	require.True(t, ok)
	assert.NotNil(t, values)
	assert.Empty(t, values)
}

// TestJoin_PollOrder tests the per-step polling discipline
// Main test items:
// 1. Each step polls every pending member once, in registration order
// 2. Members that are ready are skipped on later steps
func TestJoin_PollOrder(t *testing.T) {
	var log []string
	a := &countdown[string]{name: "a", after: 2, value: "A", log: &log}
	b := &countdown[string]{name: "b", after: 0, value: "B", log: &log}
	c := &countdown[string]{name: "c", after: 1, value: "C", log: &log}

	j := Join[string](a, b, c)
	ctx := context.Background()

	_, ok := j.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, log)
	assert.Equal(t, 2, j.Pending())

	_, ok = j.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "a", "c"}, log)

	values, ok := j.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "a", "c", "a"}, log)
	assert.Equal(t, []string{"A", "B", "C"}, values)

	assert.Equal(t, 3, a.polls)
	assert.Equal(t, 1, b.polls)
	assert.Equal(t, 2, c.polls)
}

func TestJoin_ReadyResultIsStable(t *testing.T) {
	a := &countdown[int]{after: 0, value: 1}
	j := Join[int](a)
	ctx := context.Background()

	first, ok := j.Poll(ctx)
	require.True(t, ok)

	second, ok := j.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, a.polls, "members must not be polled after the join completed")
}

func TestJoin_NestedInsideThen(t *testing.T) {
	inner := Join[int](
		&countdown[int]{after: 1, value: 1},
		&countdown[int]{after: 0, value: 2},
	)
	sum := Map[[]int, int](inner, func(_ context.Context, vs []int) int {
		total := 0
		for _, v := range vs {
			total += v
		}
		return total
	})
	outer := Join(sum, Ready(10))
	ctx := context.Background()

	_, ok := outer.Poll(ctx)
	require.False(t, ok)

	values, ok := outer.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, []int{3, 10}, values)
}
