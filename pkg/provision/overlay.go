package provision

import (
	"context"
	"fmt"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
)

// CreateVxlan creates one tunnel endpoint on this host.
func (p *Provisioner) CreateVxlan(ctx context.Context, l api.VxlanLink) error {
	l = ovs.WithDefaults(l)
	cmds, err := ovs.VxlanCommands(l)
	if err != nil {
		return err
	}
	if err := p.Exec(ctx, cmds...); err != nil {
		return fmt.Errorf("vxlan %s on %s: %w", l.PortName, l.LocalBridge, err)
	}
	p.log.Infow("vxlan endpoint created", "bridge", l.LocalBridge, "port", l.PortName,
		"remote", l.RemoteIP, "key", l.Key, "dst_port", l.DstPort)
	return nil
}

// DeletePort removes port from bridge if present.
func (p *Provisioner) DeletePort(ctx context.Context, bridge, port string) error {
	return p.Exec(ctx, ovs.DeletePortCommand(bridge, port))
}
