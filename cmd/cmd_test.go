package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	r, err := parseRule("0:3:1")
	require.NoError(t, err)
	assert.Equal(t, "0", r.Bridge)
	assert.Equal(t, 3, r.InPort)
	assert.Empty(t, r.InPortName)
	assert.Equal(t, 1, r.Queue)

	r, err = parseRule("br-7-0:veth7:0")
	require.NoError(t, err)
	assert.Equal(t, "br-7-0", r.Bridge)
	assert.Equal(t, 0, r.InPort)
	assert.Equal(t, "veth7", r.InPortName)

	_, err = parseRule("0:3")
	assert.Error(t, err)
	_, err = parseRule("0:3:x")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"apply", "show", "hostid", "bridges", "containers", "link", "qos", "records"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}
