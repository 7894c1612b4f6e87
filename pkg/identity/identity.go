// Package identity derives a host's numeric identifier from the last octet
// of its single 10.0.x.y address.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/util"
)

// DefaultPrefix is the address prefix that marks a testbed address.
const DefaultPrefix = "10.0."

var (
	// ErrNoIdentity means no visible address matched the testbed prefix.
	ErrNoIdentity = errors.New("no address matches the testbed prefix")
	// ErrAmbiguousIdentity means several addresses matched; none is picked.
	ErrAmbiguousIdentity = errors.New("more than one address matches the testbed prefix")
)

// Identity is the resolved host identity of a scope.
type Identity struct {
	HostID  int
	Address string // matched address, without prefix length
}

// Scope selects where addresses are read from: the local machine, or a
// named LXD virtual machine.
type Scope struct {
	VM string
}

// Local is the scope of the machine running this process.
func Local() Scope { return Scope{} }

// VM is the scope of the named virtual machine.
func VM(name string) Scope { return Scope{VM: name} }

// IsLocal reports whether s is the local scope.
func (s Scope) IsLocal() bool { return s.VM == "" }

func (s Scope) String() string {
	if s.IsLocal() {
		return "local"
	}
	return "vm/" + s.VM
}

// IdentityError reports a failed resolution together with the candidates
// that matched.
type IdentityError struct {
	Scope      Scope
	Candidates []string
	Err        error
}

func (e *IdentityError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("resolve host id (%s): %v", e.Scope, e.Err)
	}
	return fmt.Sprintf("resolve host id (%s): %v: %s", e.Scope, e.Err, strings.Join(e.Candidates, ", "))
}

func (e *IdentityError) Unwrap() error { return e.Err }

// FromAddresses picks the host identity out of addrs. Addresses may carry a
// prefix length; non-IPv4 entries are ignored.
func FromAddresses(addrs []string, prefix string) (Identity, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var candidates []string
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if !util.CheckValidIpv4(a) {
			continue
		}
		ip := util.StripPrefixLen(a)
		if strings.HasPrefix(ip, prefix) {
			candidates = append(candidates, ip)
		}
	}

	switch len(candidates) {
	case 0:
		return Identity{}, &IdentityError{Err: ErrNoIdentity}
	case 1:
		host, err := util.LastOctet(candidates[0])
		if err != nil {
			return Identity{}, err
		}
		return Identity{HostID: host, Address: candidates[0]}, nil
	default:
		return Identity{}, &IdentityError{Candidates: candidates, Err: ErrAmbiguousIdentity}
	}
}
