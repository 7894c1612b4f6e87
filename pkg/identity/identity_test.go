package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner/runnertest"
)

func TestFromAddresses(t *testing.T) {
	tests := []struct {
		description string
		addrs       []string
		wantHost    int
		wantErr     error
	}{
		{"single match", []string{"127.0.0.1/8", "10.0.0.7/24", "192.168.1.4/24"}, 7, nil},
		{"match without prefix length", []string{"10.0.3.200"}, 200, nil},
		{"host id zero", []string{"10.0.9.0/24"}, 0, nil},
		{"no match", []string{"127.0.0.1/8", "192.168.1.4/24", "10.1.0.7/24"}, 0, ErrNoIdentity},
		{"empty", nil, 0, ErrNoIdentity},
		{"two matches", []string{"10.0.0.7/24", "10.0.100.7/24"}, 0, ErrAmbiguousIdentity},
		{"ipv6 ignored", []string{"fe80::1/64", "10.0.0.9/24"}, 9, nil},
	}

	for _, tt := range tests {
		id, err := FromAddresses(tt.addrs, "")
		if tt.wantErr != nil {
			assert.True(t, errors.Is(err, tt.wantErr), "%s: got %v", tt.description, err)
			continue
		}
		require.NoError(t, err, tt.description)
		assert.Equal(t, tt.wantHost, id.HostID, tt.description)
	}
}

func TestFromAddressesAmbiguousListsCandidates(t *testing.T) {
	_, err := FromAddresses([]string{"10.0.0.7/24", "10.0.1.8/24"}, DefaultPrefix)
	var ie *IdentityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, []string{"10.0.0.7", "10.0.1.8"}, ie.Candidates)
}

func TestParseIPAddrOutput(t *testing.T) {
	out := `1: lo    inet 127.0.0.1/8 scope host lo\       valid_lft forever preferred_lft forever
2: enp5s0    inet 10.0.0.7/24 metric 100 brd 10.0.0.255 scope global dynamic enp5s0\       valid_lft 3412sec preferred_lft 3412sec
3: lxdbr0    inet 10.179.22.1/24 scope global lxdbr0\       valid_lft forever preferred_lft forever
`
	assert.Equal(t, []string{"127.0.0.1/8", "10.0.0.7/24", "10.179.22.1/24"}, ParseIPAddrOutput(out))
}

func TestResolveVM(t *testing.T) {
	fake := runnertest.New().On("ip -4 -o addr show", "2: enp5s0    inet 10.0.0.7/24 brd 10.0.0.255 scope global enp5s0\n")
	r := NewResolver(func(vm string) runner.Runner {
		assert.Equal(t, "vm1", vm)
		return fake
	}, zap.NewNop().Sugar())

	id, err := r.Resolve(context.Background(), VM("vm1"))
	require.NoError(t, err)
	assert.Equal(t, 7, id.HostID)
	assert.Equal(t, "10.0.0.7", id.Address)

	// no caching: a second resolution queries again
	_, err = r.Resolve(context.Background(), VM("vm1"))
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Count("addr show"))
}

func TestResolveLocalScopeError(t *testing.T) {
	r := NewResolver(nil, zap.NewNop().Sugar(), WithLocalAddresses(func() ([]string, error) {
		return []string{"10.0.0.1/24", "10.0.0.2/24"}, nil
	}))

	_, err := r.Resolve(context.Background(), Local())
	var ie *IdentityError
	require.True(t, errors.As(err, &ie))
	assert.True(t, errors.Is(err, ErrAmbiguousIdentity))
	assert.Equal(t, Local(), ie.Scope)
}

func TestResolveCustomPrefix(t *testing.T) {
	r := NewResolver(nil, zap.NewNop().Sugar(),
		WithPrefix("172.16."),
		WithLocalAddresses(func() ([]string, error) { return []string{"10.0.0.1/24", "172.16.4.33/16"}, nil }),
	)

	id, err := r.Resolve(context.Background(), Local())
	require.NoError(t, err)
	assert.Equal(t, 33, id.HostID)
}
