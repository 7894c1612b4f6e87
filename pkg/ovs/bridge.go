package ovs

import (
	"fmt"
	"strings"

	"github.com/digitalocean/go-openvswitch/ovs"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// Protocols is the fixed OpenFlow version set every bridge is created with.
var Protocols = []string{
	ovs.ProtocolOpenFlow10,
	ovs.ProtocolOpenFlow11,
	ovs.ProtocolOpenFlow12,
	ovs.ProtocolOpenFlow13,
}

// BridgeCommands returns, in order, the commands that create bridge name,
// bind it to controller and set its OpenFlow protocol versions. The caller
// must run them one by one and stop after a failed creation: the two later
// commands reference the bridge.
func BridgeCommands(name, controller string) ([]runner.Command, error) {
	if name == "" {
		return nil, fmt.Errorf("bridge name is empty")
	}
	if err := validateController(controller); err != nil {
		return nil, err
	}
	return []runner.Command{
		Vsctl(Clause{Verb: "add-br", Args: []string{name}}),
		Vsctl(Clause{Verb: "set-controller", Args: []string{name, controller}}),
		Vsctl(Clause{
			Verb:     "set",
			Args:     []string{"bridge", name},
			Settings: []Setting{Set("protocols", strings.Join(Protocols, ","))},
		}),
	}, nil
}

// DeleteBridgeCommand removes bridge name if it exists.
func DeleteBridgeCommand(name string) runner.Command {
	return Vsctl(Clause{Options: []string{"--if-exists"}, Verb: "del-br", Args: []string{name}})
}

// AccessPortCommand attaches port to bridge as an access port of vlan.
func AccessPortCommand(bridge, port string, vlan int) (runner.Command, error) {
	if vlan < 1 || vlan > 4095 {
		return runner.Command{}, fmt.Errorf("port %s: invalid vlan %d", port, vlan)
	}
	return Vsctl(Clause{Verb: "add-port", Args: []string{bridge, port}, Settings: []Setting{Set("tag", vlan)}}), nil
}

// controller targets look like tcp:10.0.1.5:6653, ssl:host:port or
// unix:/path
func validateController(target string) error {
	kind, rest, ok := strings.Cut(target, ":")
	if !ok || rest == "" {
		return fmt.Errorf("invalid controller target %q", target)
	}
	switch kind {
	case "tcp", "ssl", "unix", "ptcp", "pssl", "punix":
		return nil
	}
	return fmt.Errorf("invalid controller target %q: unknown method %q", target, kind)
}
