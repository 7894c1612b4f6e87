package runner

import (
	"fmt"
	"strings"
)

// CommandError reports a command that exited non-zero or printed a failure
// line. Detection of the latter is textual, so a tool that prints an
// "error" line on success can be misclassified.
type CommandError struct {
	Cmd      Command
	Output   string
	ExitCode int
	Line     string // offending output line, if detected textually
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Cmd.String())
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Line != "" {
		msg += ": " + e.Line
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// TimeoutError is returned when a command produced no result within the
// bound given by its context or by the runner's timeout.
type TimeoutError struct {
	Cmd    Command
	Output string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out: %v", e.Cmd.String(), e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

var failureMarkers = []string{
	"command not found",
	"no such file or directory",
	"permission denied",
}

// FailureLine scans output for a line that signals failure of the named
// program: "<program>: <message>" lines (ovs-vsctl, ovs-ofctl), "Error: ..."
// lines (lxc), and a few shell-level markers. It returns "" when the output
// looks clean.
func FailureLine(program, output string) string {
	prefix := program + ":"
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if program != "" && strings.HasPrefix(trimmed, prefix) {
			return trimmed
		}
		if strings.HasPrefix(trimmed, "Error:") {
			return trimmed
		}
		lower := strings.ToLower(trimmed)
		for _, m := range failureMarkers {
			if strings.Contains(lower, m) {
				return trimmed
			}
		}
	}
	return ""
}
