package node

import "fmt"

const (
	VethContainerSuffix = "-veth0"
	VethHostSuffix      = "-ovs"
	DefaultDockerImage  = "ubuntu:24.04"
)

// ContainerAddress returns 10.0.<vlan>.<id>/24, the address a container
// gets on its VLAN.
func ContainerAddress(vlan, id int) string {
	return fmt.Sprintf("10.0.%d.%d/24", vlan, id)
}
