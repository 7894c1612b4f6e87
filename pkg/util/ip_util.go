package util

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// legal formats: 10.0.0.7 or 10.0.0.7/24
var ipv4Re = regexp.MustCompile(`^([0-9]{1,3}\.){3}[0-9]{1,3}(/([0-9]|[1-2][0-9]|3[0-2]))?$`)

// CheckValidIpv4 reports whether ip is a dotted IPv4 address with an
// optional prefix length.
func CheckValidIpv4(ip string) bool {
	if !ipv4Re.MatchString(ip) {
		return false
	}
	parts := strings.Split(StripPrefixLen(ip), ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if val, err := strconv.Atoi(part); err != nil || val < 0 || val > 255 {
			return false
		}
	}
	return true
}

// StripPrefixLen drops a trailing "/nn" from an address.
func StripPrefixLen(ip string) string {
	addr, _, _ := strings.Cut(ip, "/")
	return addr
}

// ParseIpv4 parses an address with an optional prefix length and returns its
// 4-byte form.
func ParseIpv4(ip string) (net.IP, error) {
	if !CheckValidIpv4(ip) {
		return nil, fmt.Errorf("invalid IPv4 address: %q", ip)
	}
	return net.ParseIP(StripPrefixLen(ip)).To4(), nil
}

// LastOctet returns the host part of a dotted IPv4 address.
func LastOctet(ip string) (int, error) {
	parsed, err := ParseIpv4(ip)
	if err != nil {
		return 0, err
	}
	return int(parsed[3]), nil
}
