package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
)

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "tcp:10.0.1.5:6653", cfg.Controller)
	assert.Equal(t, "10.0.", cfg.IdentityPrefix)
	assert.Equal(t, BackendLXD, cfg.Containers.Backend)
	assert.Equal(t, "ubuntu", cfg.Containers.Server)
	assert.Equal(t, "24.04", cfg.Containers.Image)
	assert.Equal(t, "linux-htb", cfg.QoS.Type)
	assert.Equal(t, "flow", cfg.Vxlan.Key)
	assert.Equal(t, 4789, cfg.Vxlan.DstPort)
	assert.IsType(t, ovs.FreshIdentifiers{}, cfg.Identifiers())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
commandTimeout: 5s
controller: tcp:10.0.1.9:6653
containers:
  backend: docker
qos:
  fixedIds: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "tcp:10.0.1.9:6653", cfg.Controller)
	assert.Equal(t, BackendDocker, cfg.Containers.Backend)
	assert.Equal(t, "ubuntu", cfg.Containers.Server)
	assert.Equal(t, ovs.Fixed(), cfg.Identifiers())
	assert.True(t, cfg.Sudo)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"backend": "containers:\n  backend: podman\n",
		"key":     "vxlan:\n  key: abc\n",
		"port":    "vxlan:\n  dstPort: 0\n",
		"timeout": "commandTimeout: 0s\n",
		"yaml":    "controller: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--sudo=false", "--timeout=2s", "--controller=tcp:10.0.1.6:6653", "--fixed-qos-ids"}))
	assert.False(t, cfg.Sudo)
	assert.Equal(t, 2*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "tcp:10.0.1.6:6653", cfg.Controller)
	assert.True(t, cfg.QoS.FixedIDs)
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller: tcp:10.0.1.9:6653\nlogDir: /var/log/testbed\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	fs := pflag.NewFlagSet("cli", pflag.ContinueOnError)
	Default().BindFlags(fs)
	fs.String("vm", "", "")
	require.NoError(t, fs.Parse([]string{"--log-dir=/tmp/logs", "--vm=vm1"}))

	require.NoError(t, cfg.ApplyFlags(fs))
	assert.Equal(t, "/tmp/logs", cfg.LogDir)
	assert.Equal(t, "tcp:10.0.1.9:6653", cfg.Controller)
}
