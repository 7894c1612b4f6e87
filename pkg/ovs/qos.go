package ovs

import (
	"fmt"
	"strconv"

	"github.com/digitalocean/go-openvswitch/ovs"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

const (
	// DefaultQoSType is the QoS implementation OVS programs on the port.
	DefaultQoSType = "linux-htb"
	// DefaultFlowPriority matches ovs-ofctl's priority when none is given.
	DefaultFlowPriority = 32768
)

// QoS builds QoS, queue and queue-steering commands.
type QoS struct {
	ids     Identifiers
	qosType string
}

// NewQoS returns a QoS builder. A nil ids selects FreshIdentifiers and an
// empty qosType selects DefaultQoSType.
func NewQoS(ids Identifiers, qosType string) *QoS {
	if ids == nil {
		ids = FreshIdentifiers{}
	}
	if qosType == "" {
		qosType = DefaultQoSType
	}
	return &QoS{ids: ids, qosType: qosType}
}

// CreateQoS binds a new QoS object with max rate defaultRate to port. The
// port's qos column is overwritten, so a port holds exactly one QoS object
// and calling this again replaces it. The symbolic name used is returned.
func (q *QoS) CreateQoS(port string, defaultRate int64) (runner.Command, string, error) {
	if port == "" {
		return runner.Command{}, "", fmt.Errorf("qos: port is empty")
	}
	if defaultRate <= 0 {
		return runner.Command{}, "", fmt.Errorf("qos %s: invalid default rate %d", port, defaultRate)
	}
	id := q.ids.QoS()
	cmd := Vsctl(
		Clause{Verb: "set", Args: []string{"port", port}, Settings: []Setting{Set("qos", id)}},
		Clause{
			Options: []string{"--id=" + id},
			Verb:    "create",
			Args:    []string{"qos"},
			Settings: []Setting{
				Set("type", q.qosType),
				Set("other-config:max-rate", defaultRate),
			},
		},
	)
	return cmd, id, nil
}

// CreateQueues creates one queue per rate and links queue i under key i of
// the queues map of the QoS record qosRef (a UUID or a name). The map is
// cleared first, so positions from an earlier, longer list do not survive.
func (q *QoS) CreateQueues(qosRef string, rates []int64) (runner.Command, error) {
	if qosRef == "" {
		return runner.Command{}, fmt.Errorf("queues: qos reference is empty")
	}
	if len(rates) == 0 {
		return runner.Command{}, fmt.Errorf("queues: empty rate list")
	}

	ids := q.ids.Queues(len(rates))
	clauses := make(Transaction, 0, len(rates)+2)
	clauses = append(clauses, Clause{Verb: "clear", Args: []string{"qos", qosRef, "queues"}})
	links := make([]Setting, 0, len(rates))
	for i, rate := range rates {
		if rate <= 0 {
			return runner.Command{}, fmt.Errorf("queue %d: invalid rate %d", i, rate)
		}
		clauses = append(clauses, Clause{
			Options:  []string{"--id=" + ids[i]},
			Verb:     "create",
			Args:     []string{"queue"},
			Settings: []Setting{Set("other-config:max-rate", rate)},
		})
		links = append(links, Set("queues:"+strconv.Itoa(i), ids[i]))
	}
	clauses = append(clauses, Clause{Verb: "set", Args: []string{"qos", qosRef}, Settings: links})
	return clauses.Command(), nil
}

// PortQoSQuery reads the QoS record referenced by a port. The output is a
// UUID, or "[]" when the port has none.
func PortQoSQuery(port string) runner.Command {
	return Vsctl(Clause{Verb: "get", Args: []string{"port", port, "qos"}})
}

// Steer returns the add-flow command that puts traffic entering inPort on
// bridge into queue, then switches it normally.
func Steer(bridge string, inPort, queue int) (runner.Command, error) {
	if bridge == "" {
		return runner.Command{}, fmt.Errorf("steer: bridge is empty")
	}
	if inPort <= 0 {
		return runner.Command{}, fmt.Errorf("steer %s: invalid ingress port %d", bridge, inPort)
	}
	if queue < 0 {
		return runner.Command{}, fmt.Errorf("steer %s: invalid queue %d", bridge, queue)
	}

	flow := &ovs.Flow{
		Priority: DefaultFlowPriority,
		Matches: []ovs.Match{
			ovs.InPortMatch(inPort),
		},
		Actions: []ovs.Action{
			SetQueue(queue),
			ovs.Normal(),
		},
	}
	text, err := flow.MarshalText()
	if err != nil {
		return runner.Command{}, fmt.Errorf("steer %s: %w", bridge, err)
	}
	return runner.New(OfctlCmd, "add-flow", bridge, string(text)), nil
}

// SetQueue returns an OpenFlow action that selects the output queue.
func SetQueue(queue int) ovs.Action {
	return setQueueAction(queue)
}

type setQueueAction int

func (a setQueueAction) MarshalText() ([]byte, error) {
	return []byte("set_queue:" + strconv.Itoa(int(a))), nil
}

func (a setQueueAction) GoString() string {
	return fmt.Sprintf("ovs.SetQueue(%d)", int(a))
}
