package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderDefault(t *testing.T) {
	out, err := Render(Default(), Params{HostID: 12, VLAN: 10, Bridge: "br-7-0"})
	require.NoError(t, err)

	cfg, err := NetworkConfig(out)
	require.NoError(t, err)
	assert.Contains(t, cfg, "- 10.0.0.12/24")
	assert.Contains(t, cfg, "vlan10:")
	assert.Contains(t, cfg, "id: 10")
	assert.Contains(t, cfg, "- 10.0.10.12/24")
	assert.Contains(t, cfg, "uplink: br-7-0")
	for _, ph := range []string{HostPlaceholder, VlanIfacePlaceholder, VlanIDPlaceholder, VlanHostPlaceholder, BridgePlaceholder} {
		assert.NotContains(t, cfg, ph)
	}

	var p struct {
		Description string `yaml:"description"`
		Devices     map[string]map[string]string
	}
	require.NoError(t, yaml.Unmarshal(out, &p))
	assert.Equal(t, "testbed container attached to an OVS bridge", p.Description)
	assert.Equal(t, "br-7-0", p.Devices["eth1"]["parent"])
	assert.Equal(t, "lxdbr0", p.Devices["eth0"]["network"])
	assert.Equal(t, "default", p.Devices["root"]["pool"])
}

func TestRenderKeepsOtherKeys(t *testing.T) {
	base := []byte(`config:
  limits.cpu: "2"
  user.network-config: "eth1_host vlan_iface vlan_id ovs_br"
name: keep-me
`)
	out, err := Render(base, Params{HostID: 3, VLAN: 20, Bridge: "br-1-0"})
	require.NoError(t, err)

	var p struct {
		Config map[string]string `yaml:"config"`
		Name   string            `yaml:"name"`
	}
	require.NoError(t, yaml.Unmarshal(out, &p))
	assert.Equal(t, "2", p.Config["limits.cpu"])
	assert.Equal(t, "keep-me", p.Name)
	assert.Equal(t, "3 vlan20 20 br-1-0", p.Config[NetworkConfigKey])
}

func TestRenderMissingPlaceholder(t *testing.T) {
	base := []byte(`config:
  user.network-config: "eth1_host vlan_iface vlan_id"
`)
	_, err := Render(base, Params{HostID: 3, VLAN: 20, Bridge: "br-1-0"})
	var te *TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, BridgePlaceholder, te.Placeholder)
}

func TestRenderInvalid(t *testing.T) {
	cases := map[string]string{
		"not yaml":       "config: [",
		"empty":          "",
		"no config":      "name: x\n",
		"no network key": "config:\n  limits.cpu: \"1\"\n",
	}
	for name, base := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Render([]byte(base), Params{Bridge: "br-1-0"})
			var te *TemplateError
			assert.True(t, errors.As(err, &te))
		})
	}
}

func TestStoreCreate(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "")
	require.NoError(t, err)

	path, data, err := s.Create("cont-12", Params{HostID: 12, VLAN: 10, Bridge: "br-7-0"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "temp_cont-12.yaml"), path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	require.NoError(t, s.Remove(path))
	require.NoError(t, s.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStoreCreateFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte("config:\n  user.network-config: \"nothing\"\n"), 0o644))

	s, err := NewStore(filepath.Join(dir, "scratch"), base)
	require.NoError(t, err)

	_, _, err = s.Create("cont-1", Params{HostID: 1, VLAN: 1, Bridge: "br-1-0"})
	var te *TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, base, te.Path)
	_, err = os.Stat(s.Path("cont-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewStoreMissingBase(t *testing.T) {
	_, err := NewStore(t.TempDir(), "/nonexistent/profile.yaml")
	var te *TemplateError
	assert.True(t, errors.As(err, &te))
}
