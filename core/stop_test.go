package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStop_NeverCompletes(t *testing.T) {
	var f Future[Never] = Stop{}
	for i := 0; i < 100; i++ {
		_, ok := f.Poll(context.Background())
		assert.False(t, ok)
	}
}

func TestStop_ParksTaskUsingIt(t *testing.T) {
	task := Discard[Never](Then(YieldNow(), func(context.Context, Unit) Future[Never] {
		return Stop{}
	}))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, ok := task.Poll(ctx)
		assert.False(t, ok)
	}
}
