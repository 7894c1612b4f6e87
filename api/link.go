package api

// Link is a logical VXLAN link between bridges on two hosts. Both
// endpoints share one tunnel key.
type Link struct {
	Key     string       `yaml:"key,omitempty"`     // default "flow"
	DstPort int          `yaml:"dstPort,omitempty"` // default 4789
	A       LinkEndpoint `yaml:"a"`
	B       LinkEndpoint `yaml:"b"`
}

// LinkEndpoint names one side of a Link.
type LinkEndpoint struct {
	VM      string `yaml:"vm"`
	Bridge  int    `yaml:"bridge"`            // bridge index on that host
	Address string `yaml:"address,omitempty"` // underlay IP; defaults to the host's resolved address
}

// VxlanLink is one directional endpoint of a tunnel. The symmetric peer
// endpoint, with the same key, lives on the remote host.
type VxlanLink struct {
	LocalBridge string `yaml:"localBridge"`
	PortName    string `yaml:"portName"`
	RemoteIP    string `yaml:"remoteIP"`
	Key         string `yaml:"key"`
	DstPort     int    `yaml:"dstPort"`
}
