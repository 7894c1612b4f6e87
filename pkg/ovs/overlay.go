package ovs

import (
	"fmt"
	"strconv"

	"github.com/digitalocean/go-openvswitch/ovs"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/util"
)

const (
	// DefaultTunnelKey lets flows pick the VNI.
	DefaultTunnelKey = "flow"
	// DefaultVxlanPort is the IANA VXLAN UDP port.
	DefaultVxlanPort = 4789

	maxVNI = 1<<24 - 1
)

// WithDefaults fills the key and destination port of l.
func WithDefaults(l api.VxlanLink) api.VxlanLink {
	if l.Key == "" {
		l.Key = DefaultTunnelKey
	}
	if l.DstPort == 0 {
		l.DstPort = DefaultVxlanPort
	}
	return l
}

// VxlanCommands returns the port creation followed by the interface
// configuration of one tunnel endpoint. The tunnel only carries traffic once
// the mirror endpoint exists on the remote host with the same key.
func VxlanCommands(l api.VxlanLink) ([]runner.Command, error) {
	l = WithDefaults(l)
	if err := ValidateVxlan(l); err != nil {
		return nil, err
	}
	return []runner.Command{
		Vsctl(Clause{Verb: "add-port", Args: []string{l.LocalBridge, l.PortName}}),
		Vsctl(Clause{
			Verb: "set",
			Args: []string{"interface", l.PortName},
			Settings: []Setting{
				Set("type", ovs.InterfaceTypeVXLAN),
				Set("options:remote_ip", util.StripPrefixLen(l.RemoteIP)),
				Set("options:key", l.Key),
				Set("options:dst_port", l.DstPort),
			},
		}),
	}, nil
}

// ValidateVxlan checks a fully defaulted endpoint.
func ValidateVxlan(l api.VxlanLink) error {
	if l.LocalBridge == "" || l.PortName == "" {
		return fmt.Errorf("vxlan endpoint needs a bridge and a port name")
	}
	if !util.CheckValidIpv4(l.RemoteIP) {
		return fmt.Errorf("vxlan %s: invalid remote ip %q", l.PortName, l.RemoteIP)
	}
	if err := ValidateTunnelKey(l.Key); err != nil {
		return fmt.Errorf("vxlan %s: %w", l.PortName, err)
	}
	if l.DstPort <= 0 || l.DstPort > 65535 {
		return fmt.Errorf("vxlan %s: invalid dst port %d", l.PortName, l.DstPort)
	}
	return nil
}

// ValidateTunnelKey accepts "flow" or a 24-bit VNI.
func ValidateTunnelKey(key string) error {
	if key == DefaultTunnelKey {
		return nil
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n > maxVNI {
		return fmt.Errorf("invalid tunnel key %q: want %q or 0-%d", key, DefaultTunnelKey, maxVNI)
	}
	return nil
}

// DeletePortCommand removes port from bridge if present.
func DeletePortCommand(bridge, port string) runner.Command {
	return Vsctl(Clause{Options: []string{"--if-exists"}, Verb: "del-port", Args: []string{bridge, port}})
}

// TunnelKeyQuery reads options:key of an interface; the output is empty
// when the interface has no key.
func TunnelKeyQuery(iface string) runner.Command {
	return Vsctl(Clause{Options: []string{"--if-exists"}, Verb: "get", Args: []string{"interface", iface, "options:key"}})
}
