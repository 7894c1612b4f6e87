package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalRunCombinesOutput(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar())

	out, err := r.Run(context.Background(), New("sh", "-c", "echo out; echo err 1>&2"))
	require.NoError(t, err)
	assert.Contains(t, out, "out")
	assert.Contains(t, out, "err")
}

func TestLocalRunStdin(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar())

	out, err := r.Run(context.Background(), Command{Name: "cat", Stdin: "profile: x\n"})
	require.NoError(t, err)
	assert.Equal(t, "profile: x\n", out)
}

func TestLocalRunExitCode(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar())

	out, err := r.Run(context.Background(), New("sh", "-c", "echo boom; exit 3"))
	require.Error(t, err)
	assert.Contains(t, out, "boom")

	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.ExitCode)
}

func TestLocalRunTextualFailure(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar())

	_, err := r.Run(context.Background(), New("sh", "-c", "echo 'sh: ovs-vsctl: command not found'"))
	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.ExitCode)
	assert.Contains(t, ce.Line, "command not found")
}

func TestLocalRunTimeout(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar(), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := r.Run(context.Background(), New("sleep", "5"))
	var te *TimeoutError
	require.True(t, errors.As(err, &te), "expected TimeoutError, got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestLocalRunCallerDeadline(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar(), WithTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, New("sleep", "5"))
	var te *TimeoutError
	assert.True(t, errors.As(err, &te))
}

func TestLocalRunTimeoutWithChildHoldingOutput(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar(), WithTimeout(200*time.Millisecond))

	start := time.Now()
	out, err := r.Run(context.Background(), New("sh", "-c", "sleep 5; echo done"))
	elapsed := time.Since(start)

	var te *TimeoutError
	require.True(t, errors.As(err, &te), "expected TimeoutError, got %v", err)
	assert.Less(t, elapsed, 3*time.Second)
	assert.NotContains(t, out, "done")
}

func TestLocalRunTimeoutWithBackgroundGrandchild(t *testing.T) {
	r := NewLocal(zap.NewNop().Sugar(), WithTimeout(200*time.Millisecond))

	start := time.Now()
	_, err := r.Run(context.Background(), New("sh", "-c", "sleep 5 & wait"))
	elapsed := time.Since(start)

	var te *TimeoutError
	require.True(t, errors.As(err, &te), "expected TimeoutError, got %v", err)
	assert.Less(t, elapsed, 3*time.Second)
}
