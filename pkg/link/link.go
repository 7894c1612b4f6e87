// Package link creates VXLAN links with an endpoint on each of two hosts.
package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/provision"
)

// Endpoint is one side of a link: a bridge on a host whose commands go
// through Prov.
type Endpoint struct {
	Host    string // label used in errors, usually the VM name
	HostID  int
	Address string // underlay address the peer tunnels to
	Bridge  string
	Prov    *provision.Provisioner
}

// Side names the failing endpoint of a link.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Error reports on which side a link failed.
type Error struct {
	Side Side
	Host string
	Port string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("link %s: side %s (%s): %v", e.Port, e.Side, e.Host, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KeyCollisionError is returned when a tunnel key is already used by
// another port on a bridge.
type KeyCollisionError struct {
	Bridge string
	Key    string
	Port   string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("tunnel key %s already used by port %s on %s", e.Key, e.Port, e.Bridge)
}

type LinkManager struct {
	log *zap.SugaredLogger
}

func NewLinkManager(log *zap.SugaredLogger) *LinkManager {
	return &LinkManager{log: log.Named("link")}
}

// CreateLink creates the tunnel port vxlan-<a>-<b> on both bridges with a
// shared key. Key usage is checked on both bridges before anything is
// created. A failure on either side deletes the ports this call created, so
// a link either exists on both hosts or on neither. Only one link per
// ordered host pair can exist, see naming.VxlanName.
func (lm *LinkManager) CreateLink(ctx context.Context, a, b Endpoint, key string, dstPort int) (string, error) {
	if key == "" {
		key = ovs.DefaultTunnelKey
	}
	port := naming.VxlanName(a.HostID, b.HostID)

	sideA := ovs.WithDefaults(api.VxlanLink{LocalBridge: a.Bridge, PortName: port, RemoteIP: b.Address, Key: key, DstPort: dstPort})
	sideB := ovs.WithDefaults(api.VxlanLink{LocalBridge: b.Bridge, PortName: port, RemoteIP: a.Address, Key: key, DstPort: dstPort})
	if err := ovs.ValidateVxlan(sideA); err != nil {
		return "", &Error{Side: SideA, Host: a.Host, Port: port, Err: err}
	}
	if err := ovs.ValidateVxlan(sideB); err != nil {
		return "", &Error{Side: SideB, Host: b.Host, Port: port, Err: err}
	}

	if err := lm.checkKey(ctx, a, key); err != nil {
		return "", &Error{Side: SideA, Host: a.Host, Port: port, Err: err}
	}
	if err := lm.checkKey(ctx, b, key); err != nil {
		return "", &Error{Side: SideB, Host: b.Host, Port: port, Err: err}
	}

	if err := a.Prov.CreateVxlan(ctx, sideA); err != nil {
		var rerr error
		if portAdded(err) {
			rerr = lm.rollback(ctx, a, port)
		}
		return "", joinRollback(&Error{Side: SideA, Host: a.Host, Port: port, Err: err}, rerr)
	}
	if err := b.Prov.CreateVxlan(ctx, sideB); err != nil {
		var rerr *multierror.Error
		if portAdded(err) {
			if e := lm.rollback(ctx, b, port); e != nil {
				rerr = multierror.Append(rerr, e)
			}
		}
		if e := lm.rollback(ctx, a, port); e != nil {
			rerr = multierror.Append(rerr, e)
		}
		return "", joinRollback(&Error{Side: SideB, Host: b.Host, Port: port, Err: err}, rerr.ErrorOrNil())
	}

	lm.log.Infow("link created", "port", port, "key", key,
		"a", a.Host, "a_bridge", a.Bridge, "b", b.Host, "b_bridge", b.Bridge)
	return port, nil
}

// flow-based keys are chosen per packet and may be shared freely.
func (lm *LinkManager) checkKey(ctx context.Context, e Endpoint, key string) error {
	if key == ovs.DefaultTunnelKey {
		return nil
	}
	keys, err := e.Prov.Inspector().BridgeKeys(ctx, e.Bridge)
	if err != nil {
		return err
	}
	if port, ok := keys[key]; ok {
		return &KeyCollisionError{Bridge: e.Bridge, Key: key, Port: port}
	}
	return nil
}

// rollback deletes port from the bridge of e.
func (lm *LinkManager) rollback(ctx context.Context, e Endpoint, port string) error {
	if err := e.Prov.DeletePort(ctx, e.Bridge, port); err != nil {
		lm.log.Errorw("rollback failed, one-sided tunnel left", "host", e.Host, "bridge", e.Bridge, "port", port, "error", err)
		return fmt.Errorf("rollback on %s: %w", e.Host, err)
	}
	lm.log.Warnw("tunnel port rolled back", "host", e.Host, "bridge", e.Bridge, "port", port)
	return nil
}

// portAdded reports whether a failed endpoint got past add-port. A port
// whose creation failed may belong to someone else and is left alone.
func portAdded(err error) bool {
	var step *provision.StepError
	return errors.As(err, &step) && step.Step > 1
}

func joinRollback(err *Error, rerr error) error {
	if rerr == nil {
		return err
	}
	return multierror.Append(err, rerr)
}
