package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/vishvananda/netlink"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

var inetRe = regexp.MustCompile(`\binet\s+([0-9.]+(?:/[0-9]+)?)`)

// Resolver resolves identities. It keeps no state between calls: every
// Resolve re-reads the addresses of its scope.
type Resolver struct {
	prefix string
	local  func() ([]string, error)
	vm     func(name string) runner.Runner
	log    *zap.SugaredLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(r *Resolver) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLocalAddresses replaces the netlink address dump used for the local
// scope.
func WithLocalAddresses(f func() ([]string, error)) Option {
	return func(r *Resolver) { r.local = f }
}

// NewResolver returns a Resolver. vm maps a VM name to the runner that
// executes commands inside it.
func NewResolver(vm func(name string) runner.Runner, log *zap.SugaredLogger, opts ...Option) *Resolver {
	r := &Resolver{
		prefix: DefaultPrefix,
		local:  netlinkAddresses,
		vm:     vm,
		log:    log.Named("identity"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the identity of scope.
func (r *Resolver) Resolve(ctx context.Context, scope Scope) (Identity, error) {
	addrs, err := r.Addresses(ctx, scope)
	if err != nil {
		return Identity{}, fmt.Errorf("list addresses (%s): %w", scope, err)
	}

	id, err := FromAddresses(addrs, r.prefix)
	if err != nil {
		var ie *IdentityError
		if errors.As(err, &ie) {
			ie.Scope = scope
		}
		r.log.Warnw("host id resolution failed", "scope", scope.String(), "error", err)
		return Identity{}, err
	}
	r.log.Debugw("host id resolved", "scope", scope.String(), "host_id", id.HostID, "address", id.Address)
	return id, nil
}

// Addresses lists the IPv4 addresses visible in scope.
func (r *Resolver) Addresses(ctx context.Context, scope Scope) ([]string, error) {
	if scope.IsLocal() {
		return r.local()
	}
	if r.vm == nil {
		return nil, fmt.Errorf("no runner for vm %q", scope.VM)
	}
	out, err := r.vm(scope.VM).Run(ctx, runner.New("ip", "-4", "-o", "addr", "show"))
	if err != nil {
		return nil, err
	}
	return ParseIPAddrOutput(out), nil
}

// ParseIPAddrOutput extracts the inet addresses from "ip -4 -o addr show".
func ParseIPAddrOutput(out string) []string {
	var addrs []string
	for _, m := range inetRe.FindAllStringSubmatch(out, -1) {
		addrs = append(addrs, m[1])
	}
	return addrs
}

func netlinkAddresses() ([]string, error) {
	list, err := netlink.AddrList(nil, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("netlink addr list: %w", err)
	}
	addrs := make([]string, 0, len(list))
	for _, a := range list {
		if a.IPNet != nil {
			addrs = append(addrs, a.IPNet.String())
		}
	}
	return addrs, nil
}
