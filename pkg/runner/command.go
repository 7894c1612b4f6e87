package runner

import (
	"strconv"
	"strings"
)

// Command is a single program invocation. Arguments are never joined into a
// shell string, so values coming from configuration cannot inject commands.
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

// New returns a Command for name with args.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command the way a shell user would type it. It is only
// used for logs and result labels.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Argv() {
		parts = append(parts, quote(a))
	}
	s := strings.Join(parts, " ")
	if c.Stdin != "" {
		s += " < (stdin)"
	}
	return s
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\"'`$\\|&;<>()*?") {
		return strconv.Quote(s)
	}
	return s
}
