package api

// QosProfile is a rate-limiting QoS object bound to one port, with queues
// addressed by their position in Queues.
type QosProfile struct {
	Port        string             `yaml:"port"`
	DefaultRate int64              `yaml:"defaultRate"` // bit/s
	Queues      []int64            `yaml:"queues"`      // max-rate per queue, bit/s
	Rules       []FlowSteeringRule `yaml:"rules,omitempty"`
}

// FlowSteeringRule directs traffic entering InPort into queue Queue and
// otherwise switches it normally. Bridge is a bridge index when set through
// a Host, or a full name when used directly.
type FlowSteeringRule struct {
	Bridge     string `yaml:"bridge"`
	InPort     int    `yaml:"inPort,omitempty"`
	InPortName string `yaml:"inPortName,omitempty"` // resolved to an ofport when InPort is 0
	Queue      int    `yaml:"queue"`
}
