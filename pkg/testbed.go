package pkg

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
)

// Testbed applies a topology file: bridges and containers per host, then
// the links between hosts, then QoS, which may target tunnel ports.
type Testbed struct {
	m       *Manager
	records *results.Records
	log     *zap.SugaredLogger
}

func NewTestbed(m *Manager, records *results.Records, log *zap.SugaredLogger) *Testbed {
	return &Testbed{m: m, records: records, log: log.Named("testbed")}
}

// LoadTopoConfig reads a topology file.
func LoadTopoConfig(path string) (*api.TopoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var topoCfg api.TopoConfig
	if err = yaml.Unmarshal(data, &topoCfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling YAML file: %w", err)
	}
	return &topoCfg, nil
}

func (t *Testbed) ApplyTopoConfig(ctx context.Context, path string) error {
	topoCfg, err := LoadTopoConfig(path)
	if err != nil {
		return err
	}
	return t.Apply(ctx, topoCfg)
}

// Apply provisions every host, every link, then every QoS profile. A
// failing unit is logged and the others still run; the returned error lists
// every failure.
func (t *Testbed) Apply(ctx context.Context, topoCfg *api.TopoConfig) error {
	var errs *multierror.Error
	for _, h := range topoCfg.Hosts {
		if err := t.applyHost(ctx, h); err != nil {
			t.log.Errorw("host provisioning failed", "vm", h.VM, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("host %q: %w", h.VM, err))
		}
	}
	for i, l := range topoCfg.Links {
		port, err := t.m.CreateLink(ctx, l)
		if err != nil {
			t.log.Errorw("link failed", "index", i, "a", l.A.VM, "b", l.B.VM, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("link %d: %w", i, err))
			continue
		}
		t.log.Infow("link up", "port", port, "a", l.A.VM, "b", l.B.VM)
	}
	for _, h := range topoCfg.Hosts {
		for _, q := range h.QoS {
			if _, err := t.m.ApplyQoS(ctx, h.VM, q); err != nil {
				t.log.Errorw("qos failed", "vm", h.VM, "port", q.Port, "error", err)
				errs = multierror.Append(errs, fmt.Errorf("host %q: qos on %s: %w", h.VM, q.Port, err))
			}
		}
	}
	return errs.ErrorOrNil()
}

func (t *Testbed) applyHost(ctx context.Context, h api.Host) error {
	id, bridges, err := t.m.ProvisionBridges(ctx, h.VM, h.Controller, h.Bridges)
	var errs *multierror.Error
	if err != nil {
		if len(bridges) == 0 {
			return err
		}
		errs = multierror.Append(errs, err)
	}

	name := h.VM
	if name == "" {
		name = "local"
	}
	rec := api.HostRecord{Name: name, HostID: id.HostID, Address: id.Address, Bridges: bridges}

	for _, g := range h.Containers {
		res, err := t.m.ProvisionContainers(ctx, h.VM, g.Bridge, g.VLAN, g.IDs)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		for _, r := range res {
			if r.Err == nil {
				rec.Containers = append(rec.Containers, r.Record)
			}
		}
	}

	if t.records != nil {
		if err := t.records.Append(rec); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
