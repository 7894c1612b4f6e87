package ovs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner/runnertest"
)

func TestCreateQoSFixed(t *testing.T) {
	q := NewQoS(Fixed(), "")
	cmd, id, err := q.CreateQoS("vxlan0", 1000000)
	require.NoError(t, err)
	assert.Equal(t, "@newqos", id)
	assert.Equal(t, []string{
		"set", "port", "vxlan0", "qos=@newqos",
		"--", "--id=@newqos", "create", "qos", "type=linux-htb", "other-config:max-rate=1000000",
	}, cmd.Args)
}

func TestCreateQoSFreshIDsDiffer(t *testing.T) {
	q := NewQoS(nil, "")
	_, a, err := q.CreateQoS("p", 10)
	require.NoError(t, err)
	_, b, err := q.CreateQoS("p", 10)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "@qos"))
	assert.NotEqual(t, a, b)
}

func TestCreateQueuesFixed(t *testing.T) {
	q := NewQoS(Fixed(), "")
	cmd, err := q.CreateQueues("5b1c0f0e-0000-4000-8000-000000000001", []int64{10000, 20000})
	require.NoError(t, err)

	args := strings.Join(cmd.Args, " ")
	assert.Equal(t,
		"clear qos 5b1c0f0e-0000-4000-8000-000000000001 queues"+
			" -- --id=@0 create queue other-config:max-rate=10000"+
			" -- --id=@1 create queue other-config:max-rate=20000"+
			" -- set qos 5b1c0f0e-0000-4000-8000-000000000001 queues:0=@0 queues:1=@1",
		args)
}

func TestCreateQueuesInvalid(t *testing.T) {
	q := NewQoS(Fixed(), "")
	_, err := q.CreateQueues("", []int64{1})
	assert.Error(t, err)
	_, err = q.CreateQueues("ref", nil)
	assert.Error(t, err)
	_, err = q.CreateQueues("ref", []int64{100, 0})
	assert.Error(t, err)
}

func TestFreshQueueIDsAreUnique(t *testing.T) {
	ids := FreshIdentifiers{}.Queues(3)
	require.Len(t, ids, 3)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.True(t, strings.HasPrefix(id, "@q"))
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}

func TestSteer(t *testing.T) {
	cmd, err := Steer("br-7-0", 3, 1)
	require.NoError(t, err)
	require.Len(t, cmd.Args, 3)
	assert.Equal(t, "ovs-ofctl", cmd.Name)
	assert.Equal(t, "add-flow", cmd.Args[0])
	assert.Equal(t, "br-7-0", cmd.Args[1])

	flow := cmd.Args[2]
	assert.Contains(t, flow, "priority=32768")
	assert.Contains(t, flow, "in_port=3")
	assert.Contains(t, flow, "actions=set_queue:1,normal")
}

func TestSteerInvalid(t *testing.T) {
	_, err := Steer("", 1, 0)
	assert.Error(t, err)
	_, err = Steer("br", 0, 0)
	assert.Error(t, err)
	_, err = Steer("br", 1, -1)
	assert.Error(t, err)
}

// Binding QoS to a port twice overwrites its qos column both times.
func TestCreateQoSReplacesPortQoS(t *testing.T) {
	ctx := context.Background()
	fake := runnertest.New()
	q := NewQoS(Fixed(), "")

	want := "set port vxlan0 qos=@newqos -- --id=@newqos create qos type=linux-htb other-config:max-rate=1000"
	for i := 0; i < 2; i++ {
		cmd, id, err := q.CreateQoS("vxlan0", 1000)
		require.NoError(t, err)
		assert.Equal(t, "@newqos", id)
		assert.Equal(t, want, strings.Join(cmd.Args, " "))
		_, err = fake.Run(ctx, cmd)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, fake.Count("set port vxlan0 qos=@newqos"))
	for _, c := range fake.Rendered() {
		assert.NotContains(t, c, "add port")
		assert.NotContains(t, c, "qos+=")
	}
}

// A shorter queue list clears the map before linking, so no stale keys
// survive from an earlier call.
func TestCreateQueuesReplacesQueueMap(t *testing.T) {
	const ref = "5b1c0f0e-0000-4000-8000-000000000001"
	q := NewQoS(Fixed(), "")

	long, err := q.CreateQueues(ref, []int64{10, 20, 30})
	require.NoError(t, err)
	short, err := q.CreateQueues(ref, []int64{10})
	require.NoError(t, err)

	for _, cmd := range []runner.Command{long, short} {
		require.NotEmpty(t, cmd.Args)
		assert.True(t, strings.HasPrefix(strings.Join(cmd.Args, " "), "clear qos "+ref+" queues"))
	}
	args := strings.Join(short.Args, " ")
	assert.True(t, strings.HasSuffix(args, "set qos "+ref+" queues:0=@0"))
	assert.NotContains(t, args, "queues:1")
	assert.NotContains(t, args, "queues:2")
	assert.NotContains(t, args, "add qos")
}
