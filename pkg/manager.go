package pkg

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/config"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/identity"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/link"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/node"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/profile"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/provision"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// Manager resolves hosts and hands out the provisioners that act on them.
// A host is a named LXD VM, or this machine when the VM name is empty.
type Manager struct {
	cfg      *config.Config
	local    runner.Runner
	sink     results.Sink
	resolver *identity.Resolver
	lm       *link.LinkManager
	log      *zap.SugaredLogger
}

// NewManager returns a Manager running commands through local; commands for
// a VM are wrapped in lxc exec and then run through local.
func NewManager(cfg *config.Config, local runner.Runner, sink results.Sink, log *zap.SugaredLogger, opts ...identity.Option) *Manager {
	if sink == nil {
		sink = results.Discard
	}
	m := &Manager{
		cfg:   cfg,
		local: local,
		sink:  sink,
		lm:    link.NewLinkManager(log),
		log:   log.Named("manager"),
	}
	opts = append([]identity.Option{identity.WithPrefix(cfg.IdentityPrefix)}, opts...)
	m.resolver = identity.NewResolver(m.Runner, log, opts...)
	return m
}

// Runner returns the runner executing commands on vm.
func (m *Manager) Runner(vm string) runner.Runner {
	if vm == "" {
		return m.local
	}
	return runner.NewLXC(vm, m.local)
}

// Identity resolves the host id of vm.
func (m *Manager) Identity(ctx context.Context, vm string) (identity.Identity, error) {
	scope := identity.Local()
	if vm != "" {
		scope = identity.VM(vm)
	}
	return m.resolver.Resolve(ctx, scope)
}

// Provisioner returns a switch provisioner for vm.
func (m *Manager) Provisioner(vm string) *provision.Provisioner {
	return provision.New(m.Runner(vm), m.log,
		provision.WithSink(m.sink),
		provision.WithQoS(ovs.NewQoS(m.cfg.Identifiers(), m.cfg.QoS.Type)),
	)
}

// Containers returns the container manager of vm for the configured
// backend. Docker only reaches this machine's engine.
func (m *Manager) Containers(vm string) (*node.ContainerManager, error) {
	cc := m.cfg.Containers
	store, err := profile.NewStore(cc.ProfileDir, cc.BaseProfile)
	if err != nil {
		return nil, err
	}

	var l node.Launcher
	switch cc.Backend {
	case config.BackendDocker:
		if vm != "" {
			return nil, fmt.Errorf("docker backend cannot target vm %q", vm)
		}
		dl, err := node.NewDockerLauncher(m.Provisioner(""), cc.DockerImage, m.log)
		if err != nil {
			return nil, err
		}
		l = dl
	default:
		l = node.NewLXDLauncher(m.Runner(vm), cc.Server, cc.Image)
	}
	return node.NewContainerManager(l, store, m.sink, m.log), nil
}

// ProvisionBridges creates n bridges on vm, named after its host id.
func (m *Manager) ProvisionBridges(ctx context.Context, vm, controller string, n int) (identity.Identity, []string, error) {
	id, err := m.Identity(ctx, vm)
	if err != nil {
		return id, nil, err
	}
	if controller == "" {
		controller = m.cfg.Controller
	}
	m.log.Infow("provisioning bridges", "vm", vm, "host_id", id.HostID, "count", n, "controller", controller)
	created, err := m.Provisioner(vm).ProvisionBridges(ctx, id.HostID, controller, n)
	return id, created, err
}

// ProvisionContainers creates containers ids on bridge index bridge of vm.
func (m *Manager) ProvisionContainers(ctx context.Context, vm string, bridge, vlan int, ids []int) ([]node.Result, error) {
	id, err := m.Identity(ctx, vm)
	if err != nil {
		return nil, err
	}
	cm, err := m.Containers(vm)
	if err != nil {
		return nil, err
	}
	return cm.ProvisionContainers(ctx, ids, naming.BridgeName(id.HostID, bridge), vlan)
}

// CreateLink creates both tunnel endpoints of l.
func (m *Manager) CreateLink(ctx context.Context, l api.Link) (string, error) {
	a, err := m.endpoint(ctx, l.A)
	if err != nil {
		return "", fmt.Errorf("link endpoint a: %w", err)
	}
	b, err := m.endpoint(ctx, l.B)
	if err != nil {
		return "", fmt.Errorf("link endpoint b: %w", err)
	}
	key := l.Key
	if key == "" {
		key = m.cfg.Vxlan.Key
	}
	dstPort := l.DstPort
	if dstPort == 0 {
		dstPort = m.cfg.Vxlan.DstPort
	}
	return m.lm.CreateLink(ctx, a, b, key, dstPort)
}

func (m *Manager) endpoint(ctx context.Context, e api.LinkEndpoint) (link.Endpoint, error) {
	id, err := m.Identity(ctx, e.VM)
	if err != nil {
		return link.Endpoint{}, err
	}
	addr := e.Address
	if addr == "" {
		addr = id.Address
	}
	host := e.VM
	if host == "" {
		host = "local"
	}
	return link.Endpoint{
		Host:    host,
		HostID:  id.HostID,
		Address: addr,
		Bridge:  naming.BridgeName(id.HostID, e.Bridge),
		Prov:    m.Provisioner(e.VM),
	}, nil
}

// ApplyQoS applies prof on vm. Rule bridges given as a bare index are
// resolved to that host's bridge names.
func (m *Manager) ApplyQoS(ctx context.Context, vm string, prof api.QosProfile) (string, error) {
	rules := make([]api.FlowSteeringRule, len(prof.Rules))
	copy(rules, prof.Rules)
	var id *identity.Identity
	for i, r := range rules {
		idx, err := strconv.Atoi(r.Bridge)
		if err != nil {
			continue
		}
		if id == nil {
			got, err := m.Identity(ctx, vm)
			if err != nil {
				return "", err
			}
			id = &got
		}
		rules[i].Bridge = naming.BridgeName(id.HostID, idx)
	}
	prof.Rules = rules
	return m.Provisioner(vm).ApplyQoS(ctx, prof)
}

// Show returns the live bridges of vm.
func (m *Manager) Show(ctx context.Context, vm string) ([]ovs.BridgeState, error) {
	return m.Provisioner(vm).Inspector().Snapshot(ctx)
}
