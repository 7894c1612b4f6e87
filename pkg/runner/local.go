package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every command run by a Local runner that was not
// given an explicit timeout.
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long Run waits after cancellation before killing
// the command and closing its output pipes, which grandchildren may still
// hold open.
const waitDelay = time.Second

// Local runs commands on this machine.
type Local struct {
	sudo    bool
	timeout time.Duration
	log     *zap.SugaredLogger
}

// LocalOption configures a Local runner.
type LocalOption func(*Local)

// WithSudo runs every command through sudo.
func WithSudo(sudo bool) LocalOption {
	return func(l *Local) { l.sudo = sudo }
}

// WithTimeout sets the per-command timeout. Values <= 0 select DefaultTimeout.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *Local) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// NewLocal returns a Runner that executes commands with os/exec.
func NewLocal(log *zap.SugaredLogger, opts ...LocalOption) *Local {
	l := &Local{
		timeout: DefaultTimeout,
		log:     log.Named("runner"),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run executes cmd, bounded by both ctx and the runner timeout.
func (l *Local) Run(ctx context.Context, cmd Command) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	name, args := cmd.Name, cmd.Args
	if l.sudo {
		name, args = "sudo", cmd.Argv()
	}

	/* #nosec */
	c := exec.CommandContext(ctx, name, args...)
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	c.WaitDelay = waitDelay
	setCancel(c, l.sudo)
	var buf bytes.Buffer
	c.Stdout = &buf
	c.Stderr = &buf

	l.log.Debugw("running command", "cmd", cmd.String(), "sudo", l.sudo)
	err := c.Run()
	out := buf.String()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, &TimeoutError{Cmd: cmd, Output: out, Err: ctxErr}
		}
		ce := &CommandError{Cmd: cmd, Output: out, Err: err, Line: FailureLine(cmd.Name, out)}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		return out, ce
	}
	if line := FailureLine(cmd.Name, out); line != "" {
		return out, &CommandError{Cmd: cmd, Output: out, Line: line}
	}
	return out, nil
}
