// Package runner executes control-plane commands on the local machine or
// inside a named LXD virtual machine.
package runner

import "context"

// Runner executes a command and returns its combined stdout and stderr.
// A non-nil error is either a *CommandError or a *TimeoutError; the output
// collected so far is returned alongside it.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// Func adapts a function to the Runner interface.
type Func func(ctx context.Context, cmd Command) (string, error)

// Run calls f.
func (f Func) Run(ctx context.Context, cmd Command) (string, error) {
	return f(ctx, cmd)
}
