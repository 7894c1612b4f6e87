package ovs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/digitalocean/go-openvswitch/ovs"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// OvsManager reads live switch state. Nothing is cached: every call goes to
// the switch, so answers reflect the actual topology rather than an
// intended one.
type OvsManager struct {
	run runner.Runner
	log *zap.SugaredLogger
}

// BridgeState is a snapshot of one bridge. HostID and Index are only set
// for bridges named br-<host>-<index>.
type BridgeState struct {
	Name       string   `json:"name"`
	Managed    bool     `json:"managed"`
	HostID     int      `json:"hostId,omitempty"`
	Index      int      `json:"index,omitempty"`
	Controller string   `json:"controller"`
	Ports      []string `json:"ports"`
}

// NewOvsManager returns an OvsManager issuing its queries through run.
func NewOvsManager(run runner.Runner, log *zap.SugaredLogger) *OvsManager {
	return &OvsManager{run: run, log: log.Named("ovs")}
}

// client returns a go-openvswitch client whose commands go through the
// manager's runner, bound to ctx.
func (om *OvsManager) client(ctx context.Context) *ovs.Client {
	return ovs.New(ovs.Exec(func(cmd string, args ...string) ([]byte, error) {
		out, err := om.run.Run(ctx, runner.New(cmd, args...))
		return []byte(out), err
	}))
}

func (om *OvsManager) ListBridges(ctx context.Context) ([]string, error) {
	brs, err := om.client(ctx).VSwitch.ListBridges()
	if err != nil {
		return nil, fmt.Errorf("failed to list bridges: %w", err)
	}
	return nonEmpty(brs), nil
}

func (om *OvsManager) ListPorts(ctx context.Context, bridge string) ([]string, error) {
	ports, err := om.client(ctx).VSwitch.ListPorts(bridge)
	if err != nil {
		return nil, fmt.Errorf("failed to list ports of %s: %w", bridge, err)
	}
	return nonEmpty(ports), nil
}

func (om *OvsManager) GetController(ctx context.Context, bridge string) (string, error) {
	c, err := om.client(ctx).VSwitch.GetController(bridge)
	if err != nil {
		return "", fmt.Errorf("failed to get controller of %s: %w", bridge, err)
	}
	return c, nil
}

// PortQoS returns the UUID of the QoS record attached to port, or "" when
// there is none.
func (om *OvsManager) PortQoS(ctx context.Context, port string) (string, error) {
	out, err := om.run.Run(ctx, PortQoSQuery(port))
	if err != nil {
		return "", fmt.Errorf("failed to get qos of port %s: %w", port, err)
	}
	id := strings.TrimSpace(out)
	if id == "[]" {
		return "", nil
	}
	return id, nil
}

// GetPortId returns the OpenFlow port number of port.
func (om *OvsManager) GetPortId(ctx context.Context, bridge, port string) (int, error) {
	out, err := om.run.Run(ctx, Vsctl(Clause{Verb: "get", Args: []string{"Interface", port, "ofport"}}))
	if err != nil {
		return -1, fmt.Errorf("failed to get port %s id on OVS bridge %s: %w", port, bridge, err)
	}
	resultStr := strings.TrimSpace(out)
	resultInt, err := strconv.Atoi(resultStr)
	if err != nil {
		return -1, fmt.Errorf("error converting port %s id %s to int: %w", port, resultStr, err)
	}
	return resultInt, nil
}

// TunnelKey returns options:key of iface, or "" when unset.
func (om *OvsManager) TunnelKey(ctx context.Context, iface string) (string, error) {
	out, err := om.run.Run(ctx, TunnelKeyQuery(iface))
	if err != nil {
		return "", fmt.Errorf("failed to get tunnel key of %s: %w", iface, err)
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

// BridgeKeys maps the tunnel keys in use on bridge to the port using them.
func (om *OvsManager) BridgeKeys(ctx context.Context, bridge string) (map[string]string, error) {
	ports, err := om.ListPorts(ctx, bridge)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string)
	for _, p := range ports {
		k, err := om.TunnelKey(ctx, p)
		if err != nil {
			return nil, err
		}
		if k != "" {
			keys[k] = p
		}
	}
	return keys, nil
}

// Snapshot returns the state of every bridge.
func (om *OvsManager) Snapshot(ctx context.Context) ([]BridgeState, error) {
	brs, err := om.ListBridges(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BridgeState, 0, len(brs))
	for _, br := range brs {
		st := BridgeState{Name: br}
		if host, idx, err := naming.ParseBridgeName(br); err == nil {
			st.Managed, st.HostID, st.Index = true, host, idx
		}
		if st.Controller, err = om.GetController(ctx, br); err != nil {
			om.log.Warnw("controller lookup failed", "bridge", br, "error", err)
		}
		if st.Ports, err = om.ListPorts(ctx, br); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
