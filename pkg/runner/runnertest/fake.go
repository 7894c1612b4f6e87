// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// Response is returned for commands whose rendered form contains Match.
// A non-empty Fail produces a *runner.CommandError with Fail as the
// offending line; Times limits how often the response applies (0 = always).
type Response struct {
	Match  string
	Output string
	Fail   string
	Times  int
	used   int
}

// Fake records every command and answers from a list of scripted responses.
// Unmatched commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	calls     []runner.Command
	responses []*Response
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{}
}

// On scripts a successful response.
func (f *Fake) On(match, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &Response{Match: match, Output: output})
	return f
}

// Fail scripts a failing response.
func (f *Fake) Fail(match, line string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &Response{Match: match, Output: line + "\n", Fail: line})
	return f
}

// Add scripts an arbitrary response.
func (f *Fake) Add(r Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &r)
	return f
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, cmd runner.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	if err := ctx.Err(); err != nil {
		return "", &runner.TimeoutError{Cmd: cmd, Err: err}
	}

	rendered := cmd.String()
	for _, r := range f.responses {
		if !strings.Contains(rendered, r.Match) {
			continue
		}
		if r.Times > 0 && r.used >= r.Times {
			continue
		}
		r.used++
		if r.Fail != "" {
			return r.Output, &runner.CommandError{Cmd: cmd, Output: r.Output, Line: r.Fail, ExitCode: 1}
		}
		return r.Output, nil
	}
	return "", nil
}

// Calls returns the commands run so far.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// Rendered returns the String form of every command run so far.
func (f *Fake) Rendered() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Count returns how many commands contained match.
func (f *Fake) Count(match string) int {
	n := 0
	for _, s := range f.Rendered() {
		if strings.Contains(s, match) {
			n++
		}
	}
	return n
}
