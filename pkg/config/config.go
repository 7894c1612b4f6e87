// Package config holds the settings shared by every command.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/identity"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/node"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// Container backends.
const (
	BackendLXD    = "lxd"
	BackendDocker = "docker"
)

// DefaultController is the SDN controller bridges are bound to.
const DefaultController = "tcp:10.0.1.5:6653"

// Config is the tool configuration, read from YAML and overridden by flags.
type Config struct {
	// Command execution
	Sudo           bool          `yaml:"sudo"`
	CommandTimeout time.Duration `yaml:"commandTimeout"`

	// Results
	LogDir      string `yaml:"logDir"`
	RecordsPath string `yaml:"recordsPath"`

	// Addressing
	IdentityPrefix string `yaml:"identityPrefix"` // e.g. "10.0."
	Controller     string `yaml:"controller"`

	Containers ContainerConfig `yaml:"containers"`
	QoS        QoSConfig       `yaml:"qos"`
	Vxlan      VxlanConfig     `yaml:"vxlan"`
}

// ContainerConfig selects how containers are created.
type ContainerConfig struct {
	Backend     string `yaml:"backend"`     // lxd or docker
	Server      string `yaml:"server"`      // LXD image server, e.g. "ubuntu"
	Image       string `yaml:"image"`       // LXD image, e.g. "24.04"
	BaseProfile string `yaml:"baseProfile"` // empty uses the built-in profile
	ProfileDir  string `yaml:"profileDir"`  // where scratch profiles are written
	DockerImage string `yaml:"dockerImage"`
}

// QoSConfig configures QoS object creation.
type QoSConfig struct {
	Type string `yaml:"type"`
	// FixedIDs reuses @newqos and @0..@n on every call instead of fresh
	// identifiers.
	FixedIDs bool `yaml:"fixedIds"`
}

// VxlanConfig holds tunnel defaults.
type VxlanConfig struct {
	Key     string `yaml:"key"`
	DstPort int    `yaml:"dstPort"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sudo:           true,
		CommandTimeout: runner.DefaultTimeout,
		LogDir:         "logs",
		RecordsPath:    "records.json",
		IdentityPrefix: identity.DefaultPrefix,
		Controller:     DefaultController,
		Containers: ContainerConfig{
			Backend:     BackendLXD,
			Server:      node.DefaultServer,
			Image:       node.DefaultImage,
			ProfileDir:  "profiles",
			DockerImage: node.DefaultDockerImage,
		},
		QoS: QoSConfig{
			Type: ovs.DefaultQoSType,
		},
		Vxlan: VxlanConfig{
			Key:     ovs.DefaultTunnelKey,
			DstPort: ovs.DefaultVxlanPort,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers flags that override cfg on fs.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.Sudo, "sudo", c.Sudo, "run switch and container commands with sudo")
	fs.DurationVar(&c.CommandTimeout, "timeout", c.CommandTimeout, "timeout of every command")
	fs.StringVar(&c.LogDir, "log-dir", c.LogDir, "directory of the operation logs")
	fs.StringVar(&c.RecordsPath, "records", c.RecordsPath, "JSON record store")
	fs.StringVar(&c.IdentityPrefix, "id-prefix", c.IdentityPrefix, "address prefix the host id is read from")
	fs.StringVar(&c.Controller, "controller", c.Controller, "default SDN controller target")
	fs.StringVar(&c.Containers.Backend, "backend", c.Containers.Backend, "container backend: lxd or docker")
	fs.StringVar(&c.Containers.BaseProfile, "profile", c.Containers.BaseProfile, "base LXD profile")
	fs.BoolVar(&c.QoS.FixedIDs, "fixed-qos-ids", c.QoS.FixedIDs, "reuse @newqos and @0..@n for every QoS object")
}

// ApplyFlags copies onto c the flags of set that were changed on the
// command line, so explicit flags win over the config file.
func (c *Config) ApplyFlags(set *pflag.FlagSet) error {
	own := pflag.NewFlagSet("config", pflag.ContinueOnError)
	c.BindFlags(own)
	var err error
	set.Visit(func(f *pflag.Flag) {
		if err != nil || own.Lookup(f.Name) == nil {
			return
		}
		err = own.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks values the defaults cannot fix.
func (c *Config) Validate() error {
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("commandTimeout must be positive")
	}
	switch c.Containers.Backend {
	case BackendLXD, BackendDocker:
	default:
		return fmt.Errorf("unknown container backend %q", c.Containers.Backend)
	}
	if err := ovs.ValidateTunnelKey(c.Vxlan.Key); err != nil {
		return err
	}
	if c.Vxlan.DstPort <= 0 || c.Vxlan.DstPort > 65535 {
		return fmt.Errorf("invalid vxlan dstPort %d", c.Vxlan.DstPort)
	}
	return nil
}

// Identifiers returns the QoS identifier allocator selected by the config.
func (c *Config) Identifiers() ovs.Identifiers {
	if c.QoS.FixedIDs {
		return ovs.Fixed()
	}
	return ovs.FreshIdentifiers{}
}
