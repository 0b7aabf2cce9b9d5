package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeferToBlocking_ReadyOnFirstPoll tests the blocking bridge
// Main test items:
// 1. Creating the future does not run the function
// 2. The first poll runs it synchronously and is ready with its result
// 3. Later polls return the cached result without running it again
func TestDeferToBlocking_ReadyOnFirstPoll(t *testing.T) {
	calls := 0
	upper := func(s string) string {
		calls++
		return strings.ToUpper(s)
	}

	d := DeferToBlocking(upper, "hi")
	assert.Equal(t, 0, calls)

	v, ok := d.Poll(context.Background())
	require.True(t, ok)
	assert.Equal(t, "HI", v)
	assert.Equal(t, 1, calls)

	v, ok = d.Poll(context.Background())
	require.True(t, ok)
	assert.Equal(t, "HI", v)
	assert.Equal(t, 1, calls)
}

func TestDeferToBlocking_StructArguments(t *testing.T) {
	type args struct {
		a, b int
	}
	d := DeferToBlocking(func(in args) int { return in.a * in.b }, args{a: 6, b: 7})

	v, ok := d.Poll(context.Background())

	require.True(t, ok)
	assert.Equal(t, 42, v)
}
