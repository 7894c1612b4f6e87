package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValidIpv4(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.7", true},
		{"10.0.0.7/24", true},
		{"192.168.10.4", true},
		{"255.255.255.255/32", true},
		{"10.0.0.256", false},
		{"10.0.0", false},
		{"10.0.0.7/33", false},
		{"fe80::1", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CheckValidIpv4(tt.ip), tt.ip)
	}
}

func TestLastOctet(t *testing.T) {
	n, err := LastOctet("10.0.3.42/24")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = LastOctet("not-an-ip")
	assert.Error(t, err)
}
