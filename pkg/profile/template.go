// Package profile renders per-container LXD profiles from a base profile.
package profile

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
)

// NetworkConfigKey is the profile config entry holding the cloud-init
// network configuration.
const NetworkConfigKey = "user.network-config"

// Placeholders replaced in the network configuration.
const (
	HostPlaceholder      = "eth1_host"
	VlanIfacePlaceholder = "vlan_iface"
	VlanIDPlaceholder    = "vlan_id"
	VlanHostPlaceholder  = "vlan_host"
	BridgePlaceholder    = "ovs_br"
)

// required placeholders, in substitution order. vlan_iface goes before
// vlan_id so the VLAN id never lands inside an interface name.
var required = []string{HostPlaceholder, VlanIfacePlaceholder, VlanIDPlaceholder, BridgePlaceholder}

//go:embed default_profile.yaml
var defaultProfile []byte

// Default returns the built-in base profile.
func Default() []byte {
	return append([]byte(nil), defaultProfile...)
}

// Params are the values substituted into a base profile. HostID is the tail
// octet of the container's addresses.
type Params struct {
	HostID int
	VLAN   int
	Bridge string
}

// TemplateError reports a base profile that cannot be rendered.
type TemplateError struct {
	Path        string
	Placeholder string
	Err         error
}

func (e *TemplateError) Error() string {
	where := e.Path
	if where == "" {
		where = "profile"
	}
	if e.Placeholder != "" {
		return fmt.Sprintf("%s: placeholder %q not found in %s", where, e.Placeholder, NetworkConfigKey)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Render substitutes p into the network configuration of base and into any
// device whose parent is the bridge placeholder. Every other key is kept as
// is.
func Render(base []byte, p Params) ([]byte, error) {
	if p.Bridge == "" {
		return nil, &TemplateError{Err: fmt.Errorf("bridge is empty")}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(base, &doc); err != nil {
		return nil, &TemplateError{Err: fmt.Errorf("invalid yaml: %w", err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &TemplateError{Err: fmt.Errorf("empty profile")}
	}
	root := doc.Content[0]

	cfg := lookup(lookup(root, "config"), NetworkConfigKey)
	if cfg == nil || cfg.Kind != yaml.ScalarNode {
		return nil, &TemplateError{Err: fmt.Errorf("missing config.%q", NetworkConfigKey)}
	}
	for _, ph := range required {
		if !strings.Contains(cfg.Value, ph) {
			return nil, &TemplateError{Placeholder: ph}
		}
	}

	host := strconv.Itoa(p.HostID)
	vlan := strconv.Itoa(p.VLAN)
	cfg.Value = strings.NewReplacer(
		HostPlaceholder, host,
		VlanIfacePlaceholder, naming.VlanInterface(p.VLAN),
		VlanIDPlaceholder, vlan,
		VlanHostPlaceholder, host,
		BridgePlaceholder, p.Bridge,
	).Replace(cfg.Value)

	if devices := lookup(root, "devices"); devices != nil && devices.Kind == yaml.MappingNode {
		for i := 1; i < len(devices.Content); i += 2 {
			if parent := lookup(devices.Content[i], "parent"); parent != nil && parent.Value == BridgePlaceholder {
				parent.Value = p.Bridge
			}
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, &TemplateError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &TemplateError{Err: err}
	}
	return buf.Bytes(), nil
}

// NetworkConfig returns the network configuration of a rendered profile.
func NetworkConfig(profile []byte) (string, error) {
	var p struct {
		Config map[string]string `yaml:"config"`
	}
	if err := yaml.Unmarshal(profile, &p); err != nil {
		return "", err
	}
	return p.Config[NetworkConfigKey], nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
