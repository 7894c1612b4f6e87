package ovs

import (
	"fmt"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

const (
	VsctlCmd = "ovs-vsctl"
	OfctlCmd = "ovs-ofctl"
)

// Setting is a column assignment: "column=value", "column:key=value".
type Setting struct {
	Key   string
	Value string
}

// Set returns a Setting for key with value formatted by fmt.
func Set(key string, value any) Setting {
	return Setting{Key: key, Value: fmt.Sprint(value)}
}

func (s Setting) String() string {
	return s.Key + "=" + s.Value
}

// Clause is one ovs-vsctl command inside a transaction: per-command
// options, the verb, positional arguments, then column settings.
type Clause struct {
	Options  []string
	Verb     string
	Args     []string
	Settings []Setting
}

func (c Clause) argv() []string {
	out := make([]string, 0, len(c.Options)+len(c.Args)+len(c.Settings)+1)
	out = append(out, c.Options...)
	out = append(out, c.Verb)
	out = append(out, c.Args...)
	for _, s := range c.Settings {
		out = append(out, s.String())
	}
	return out
}

// Transaction is an ordered list of clauses applied atomically by a single
// ovs-vsctl invocation. Symbolic @names are only valid within one
// transaction.
type Transaction []Clause

// Command renders the transaction. Clauses are separated by "--"; a leading
// separator is added when the first clause carries options, so they are not
// parsed as global options.
func (t Transaction) Command() runner.Command {
	var args []string
	for i, c := range t {
		if i > 0 || len(c.Options) > 0 {
			args = append(args, "--")
		}
		args = append(args, c.argv()...)
	}
	return runner.Command{Name: VsctlCmd, Args: args}
}

// Vsctl is shorthand for Transaction(clauses).Command().
func Vsctl(clauses ...Clause) runner.Command {
	return Transaction(clauses).Command()
}

// ShowCommand dumps the switch configuration.
func ShowCommand() runner.Command {
	return Vsctl(Clause{Verb: "show"})
}
