package api

// Host is one provisioning target: a named LXD virtual machine, or the
// local machine when VM is empty.
type Host struct {
	VM         string           `yaml:"vm"`
	Bridges    int              `yaml:"bridges"`              // number of bridges, br-<host>-0..n-1
	Controller string           `yaml:"controller,omitempty"` // e.g. tcp:10.0.1.5:6653
	Containers []ContainerGroup `yaml:"containers,omitempty"`
	QoS        []QosProfile     `yaml:"qos,omitempty"`
}

// ContainerGroup places containers on one bridge of the host, in one VLAN.
type ContainerGroup struct {
	Bridge int   `yaml:"bridge"` // bridge index on the host
	VLAN   int   `yaml:"vlan"`
	IDs    []int `yaml:"ids"`
}

// ContainerRecord describes a container created from a templated profile.
type ContainerRecord struct {
	Name    string `json:"name" yaml:"name"` // cont-<id>
	Profile string `json:"profile" yaml:"profile"`
	Bridge  string `json:"bridge" yaml:"bridge"`
	VLAN    int    `json:"vlan" yaml:"vlan"`
	HostID  int    `json:"hostId" yaml:"hostId"`
}

// HostRecord is what the record store keeps per provisioned host.
type HostRecord struct {
	Name       string            `json:"name"`
	HostID     int               `json:"hostId"`
	Address    string            `json:"address"`
	Bridges    []string          `json:"bridges"`
	Containers []ContainerRecord `json:"containers,omitempty"`
}

// TopoConfig is the declarative intent applied by the apply command.
type TopoConfig struct {
	Hosts []Host `yaml:"hosts"`
	Links []Link `yaml:"links,omitempty"`
}
