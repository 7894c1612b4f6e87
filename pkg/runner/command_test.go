package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{New("ovs-vsctl", "add-br", "br-7-0"), "ovs-vsctl add-br br-7-0"},
		{New("echo", "a b"), `echo "a b"`},
		{New("echo", ""), `echo ""`},
		{Command{Name: "lxc", Args: []string{"init", "ubuntu:24.04", "cont-1"}, Stdin: "x"}, "lxc init ubuntu:24.04 cont-1 < (stdin)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}

func TestFailureLine(t *testing.T) {
	tests := []struct {
		program string
		output  string
		want    string
	}{
		{"ovs-vsctl", "", ""},
		{"ovs-vsctl", "ovs-vsctl: no bridge named br0\n", "ovs-vsctl: no bridge named br0"},
		{"lxc", "Error: Instance not found\n", "Error: Instance not found"},
		{"ovs-ofctl", "ok\nbash: ovs-ofctl: command not found\n", "bash: ovs-ofctl: command not found"},
		{"ovs-vsctl", "d7e5b3f2-0000-4000-8000-000000000001\n", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FailureLine(tt.program, tt.output), tt.output)
	}
}

func TestLXCWrap(t *testing.T) {
	var seen Command
	next := Func(func(_ context.Context, cmd Command) (string, error) {
		seen = cmd
		return "", nil
	})
	l := NewLXC("vm1", next)

	_, err := l.Run(context.Background(), Command{Name: "ovs-vsctl", Args: []string{"add-br", "br-7-0"}, Stdin: "in"})
	require.NoError(t, err)
	assert.Equal(t, "lxc", seen.Name)
	assert.Equal(t, []string{"exec", "vm1", "--", "ovs-vsctl", "add-br", "br-7-0"}, seen.Args)
	assert.Equal(t, "in", seen.Stdin)
	assert.Equal(t, "vm1", l.Instance())
}

func TestLXCDetectsInnerFailure(t *testing.T) {
	next := Func(func(context.Context, Command) (string, error) {
		return "ovs-vsctl: cannot create a bridge named br-7-0 because a bridge named br-7-0 already exists\n", nil
	})
	l := NewLXC("vm1", next)

	_, err := l.Run(context.Background(), New("ovs-vsctl", "add-br", "br-7-0"))
	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Line, "already exists")
	assert.Equal(t, "ovs-vsctl", ce.Cmd.Name)
}
