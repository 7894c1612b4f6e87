package provision

import (
	"context"
	"fmt"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
)

// CreateQoS attaches a new QoS object to port, replacing any previous one,
// and returns the UUID of the new row.
func (p *Provisioner) CreateQoS(ctx context.Context, port string, defaultRate int64) (string, error) {
	cmd, id, err := p.qos.CreateQoS(port, defaultRate)
	if err != nil {
		return "", err
	}
	if _, err := p.exec(ctx, cmd); err != nil {
		return "", fmt.Errorf("qos %s on %s: %w", id, port, err)
	}
	uuid, err := p.om.PortQoS(ctx, port)
	if err != nil {
		return "", err
	}
	if uuid == "" {
		return "", fmt.Errorf("qos on %s: port has no qos after create", port)
	}
	p.log.Infow("qos attached", "port", port, "qos", uuid, "max_rate", defaultRate)
	return uuid, nil
}

// CreateQueues replaces the queues of the QoS row qosRef, queue i getting
// rates[i].
func (p *Provisioner) CreateQueues(ctx context.Context, qosRef string, rates []int64) error {
	cmd, err := p.qos.CreateQueues(qosRef, rates)
	if err != nil {
		return err
	}
	if _, err := p.exec(ctx, cmd); err != nil {
		return fmt.Errorf("queues of %s: %w", qosRef, err)
	}
	p.log.Infow("queues created", "qos", qosRef, "rates", rates)
	return nil
}

// Steer installs the rule on rule.Bridge, a full bridge name. An InPort of
// 0 is resolved from InPortName.
func (p *Provisioner) Steer(ctx context.Context, rule api.FlowSteeringRule) error {
	inPort := rule.InPort
	if inPort == 0 && rule.InPortName != "" {
		id, err := p.om.GetPortId(ctx, rule.Bridge, rule.InPortName)
		if err != nil {
			return err
		}
		inPort = id
	}
	cmd, err := ovs.Steer(rule.Bridge, inPort, rule.Queue)
	if err != nil {
		return err
	}
	if _, err := p.exec(ctx, cmd); err != nil {
		return fmt.Errorf("steer in_port %d to queue %d on %s: %w", inPort, rule.Queue, rule.Bridge, err)
	}
	return nil
}

// ApplyQoS validates every steering rule, then creates the QoS object, its
// queues and the rules, stopping at the first failure. An invalid rule
// leaves the switch untouched.
func (p *Provisioner) ApplyQoS(ctx context.Context, prof api.QosProfile) (string, error) {
	if err := validateRules(prof); err != nil {
		return "", err
	}
	uuid, err := p.CreateQoS(ctx, prof.Port, prof.DefaultRate)
	if err != nil {
		return "", err
	}
	if len(prof.Queues) > 0 {
		if err := p.CreateQueues(ctx, uuid, prof.Queues); err != nil {
			return uuid, err
		}
	}
	for i, rule := range prof.Rules {
		if err := p.Steer(ctx, rule); err != nil {
			return uuid, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return uuid, nil
}

func validateRules(prof api.QosProfile) error {
	for i, rule := range prof.Rules {
		switch {
		case rule.Bridge == "":
			return fmt.Errorf("rule %d: bridge is required", i)
		case rule.Queue < 0 || rule.Queue >= len(prof.Queues):
			return fmt.Errorf("rule %d: queue %d not defined on %s", i, rule.Queue, prof.Port)
		case rule.InPort <= 0 && rule.InPortName == "":
			return fmt.Errorf("rule %d: in_port or in_port_name is required", i)
		}
	}
	return nil
}
