package runner

import (
	"context"
	"errors"
)

// LXC runs commands inside a named LXD instance by wrapping them in
// "lxc exec <instance> --". The wrapped command is handed to next, which is
// normally a Local runner carrying the sudo and timeout policy.
type LXC struct {
	instance string
	next     Runner
}

// NewLXC returns a Runner targeting instance.
func NewLXC(instance string, next Runner) *LXC {
	return &LXC{instance: instance, next: next}
}

// Instance returns the targeted LXD instance name.
func (l *LXC) Instance() string { return l.instance }

// Wrap returns the lxc invocation that runs cmd inside the instance.
func (l *LXC) Wrap(cmd Command) Command {
	args := append([]string{"exec", l.instance, "--"}, cmd.Argv()...)
	return Command{Name: "lxc", Args: args, Stdin: cmd.Stdin}
}

// Run executes cmd inside the instance. Failure lines printed by the inner
// program are detected as well as those printed by lxc itself.
func (l *LXC) Run(ctx context.Context, cmd Command) (string, error) {
	out, err := l.next.Run(ctx, l.Wrap(cmd))
	if err != nil {
		var ce *CommandError
		if errors.As(err, &ce) && ce.Line == "" {
			ce.Line = FailureLine(cmd.Name, out)
		}
		return out, err
	}
	if line := FailureLine(cmd.Name, out); line != "" {
		return out, &CommandError{Cmd: cmd, Output: out, Line: line}
	}
	return out, nil
}
