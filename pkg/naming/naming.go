// Package naming derives the canonical names of testbed objects. Names are
// pure functions of their inputs so that commands issued on two different
// hosts for the same logical object agree on its identifier.
package naming

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	bridgePrefix    = "br-"
	containerPrefix = "cont-"
	vxlanPrefix     = "vxlan-"
	vlanPrefix      = "vlan"
)

// BridgeName returns "br-<hostID>-<index>".
func BridgeName(hostID, index int) string {
	return fmt.Sprintf("%s%d-%d", bridgePrefix, hostID, index)
}

// BridgeNames returns the names of the first n bridges of a host, indexed
// from 0.
func BridgeNames(hostID, n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, BridgeName(hostID, i))
	}
	return names
}

// ParseBridgeName is the inverse of BridgeName.
func ParseBridgeName(name string) (hostID, index int, err error) {
	rest, ok := strings.CutPrefix(name, bridgePrefix)
	if !ok {
		return 0, 0, fmt.Errorf("bridge name %q: missing %q prefix", name, bridgePrefix)
	}
	host, idx, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("bridge name %q: expected br-<host>-<index>", name)
	}
	if hostID, err = parseNonNegative(host); err != nil {
		return 0, 0, fmt.Errorf("bridge name %q: host id: %w", name, err)
	}
	if index, err = parseNonNegative(idx); err != nil {
		return 0, 0, fmt.Errorf("bridge name %q: index: %w", name, err)
	}
	return hostID, index, nil
}

// ContainerName returns "cont-<id>".
func ContainerName(id int) string {
	return containerPrefix + strconv.Itoa(id)
}

// VxlanName returns "vxlan-<a>-<b>". Both endpoints of a link pass the
// link's (a, b) order, so the tunnel port carries the same name on both
// hosts. The name does not include a bridge, and OVS port names are unique
// across all bridges of a switch, so two hosts can share one link in each
// direction: a second (a, b) link on other bridges fails at add-port.
func VxlanName(hostA, hostB int) string {
	return fmt.Sprintf("%s%d-%d", vxlanPrefix, hostA, hostB)
}

// VlanInterface returns the in-container VLAN interface name, "vlan<id>".
func VlanInterface(vlan int) string {
	return vlanPrefix + strconv.Itoa(vlan)
}

func parseNonNegative(s string) (int, error) {
	// Reject forms like "+1" or "01" so parsing stays the exact inverse.
	if s == "" || (len(s) > 1 && s[0] == '0') || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.Atoi(s)
}
