package provision

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
)

// CreateBridge creates bridge name, binds it to controller and sets its
// OpenFlow versions. A failed creation skips the other two steps; a failed
// binding or version step leaves the bridge in place.
func (p *Provisioner) CreateBridge(ctx context.Context, name, controller string) error {
	cmds, err := ovs.BridgeCommands(name, controller)
	if err != nil {
		return err
	}
	if err := p.Exec(ctx, cmds...); err != nil {
		return fmt.Errorf("bridge %s: %w", name, err)
	}
	p.log.Infow("bridge created", "bridge", name, "controller", controller)
	return nil
}

// ProvisionBridges creates br-<hostID>-0 .. br-<hostID>-<n-1>. A failed
// bridge does not stop the others; the names of the bridges that were
// fully provisioned are returned together with every failure. The switch
// configuration is recorded at the end.
func (p *Provisioner) ProvisionBridges(ctx context.Context, hostID int, controller string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid bridge count %d", n)
	}

	var (
		created []string
		errs    *multierror.Error
	)
	for _, name := range naming.BridgeNames(hostID, n) {
		if err := p.CreateBridge(ctx, name, controller); err != nil {
			p.log.Errorw("bridge provisioning failed", "bridge", name, "error", err)
			errs = multierror.Append(errs, err)
			continue
		}
		created = append(created, name)
	}

	if _, err := p.exec(ctx, ovs.ShowCommand()); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("show: %w", err))
	}
	return created, errs.ErrorOrNil()
}

// DeleteBridge removes bridge name if it exists.
func (p *Provisioner) DeleteBridge(ctx context.Context, name string) error {
	return p.Exec(ctx, ovs.DeleteBridgeCommand(name))
}
