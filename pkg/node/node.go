// Package node creates containers attached to testbed bridges.
package node

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/naming"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/profile"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
)

// ContainerSpec describes one container to instantiate.
type ContainerSpec struct {
	Name        string
	ID          int
	Bridge      string
	VLAN        int
	Profile     []byte
	ProfilePath string
}

// Launcher instantiates containers on one host.
type Launcher interface {
	// Launch creates the container and returns the backend's output.
	Launch(ctx context.Context, spec ContainerSpec) (string, error)
	// List describes the containers present on the host.
	List(ctx context.Context) (string, error)
}

// Result is the outcome for one container id.
type Result struct {
	ID     int
	Record api.ContainerRecord
	Output string
	Err    error
}

// ContainerManager renders a profile per container and launches it.
type ContainerManager struct {
	launcher Launcher
	profiles *profile.Store
	sink     results.Sink
	log      *zap.SugaredLogger
}

func NewContainerManager(l Launcher, profiles *profile.Store, sink results.Sink, log *zap.SugaredLogger) *ContainerManager {
	if sink == nil {
		sink = results.Discard
	}
	return &ContainerManager{
		launcher: l,
		profiles: profiles,
		sink:     sink,
		log:      log.Named("node"),
	}
}

// CreateContainer instantiates name from a rendered profile.
func (cm *ContainerManager) CreateContainer(ctx context.Context, name string, prof []byte) (string, error) {
	return cm.launch(ctx, ContainerSpec{Name: name, Profile: prof})
}

func (cm *ContainerManager) launch(ctx context.Context, spec ContainerSpec) (string, error) {
	cm.log.Infow("creating container", "name", spec.Name, "bridge", spec.Bridge, "vlan", spec.VLAN)
	out, err := cm.launcher.Launch(ctx, spec)
	if serr := cm.sink.Append("create "+spec.Name, out); serr != nil {
		cm.log.Warnw("failed to record output", "name", spec.Name, "error", serr)
	}
	if err != nil {
		return out, fmt.Errorf("container %s: %w", spec.Name, err)
	}
	return out, nil
}

// ProvisionContainers creates cont-<id> for every id, on bridge in vlan.
// Each container gets its own scratch profile, removed again when the
// container could not be created. A failed id does not stop the others;
// the returned error aggregates every failure.
func (cm *ContainerManager) ProvisionContainers(ctx context.Context, ids []int, bridge string, vlan int) ([]Result, error) {
	if vlan < 1 || vlan > 4095 {
		return nil, fmt.Errorf("invalid vlan %d: want 1-4095", vlan)
	}
	var (
		res  = make([]Result, 0, len(ids))
		errs *multierror.Error
	)
	for _, id := range ids {
		r := cm.provisionOne(ctx, id, bridge, vlan)
		if r.Err != nil {
			cm.log.Errorw("container provisioning failed", "name", r.Record.Name, "error", r.Err)
			errs = multierror.Append(errs, r.Err)
		}
		res = append(res, r)

		list, err := cm.launcher.List(ctx)
		if err != nil {
			cm.log.Warnw("failed to list containers", "error", err)
			continue
		}
		if serr := cm.sink.Append("list containers", list); serr != nil {
			cm.log.Warnw("failed to record container list", "error", serr)
		}
	}
	return res, errs.ErrorOrNil()
}

func (cm *ContainerManager) provisionOne(ctx context.Context, id int, bridge string, vlan int) Result {
	name := naming.ContainerName(id)
	r := Result{
		ID:     id,
		Record: api.ContainerRecord{Name: name, Bridge: bridge, VLAN: vlan, HostID: id},
	}
	if id < 0 || id > 255 {
		r.Err = fmt.Errorf("container %s: id must be in [0,255]", name)
		return r
	}

	path, data, err := cm.profiles.Create(name, profile.Params{HostID: id, VLAN: vlan, Bridge: bridge})
	if err != nil {
		r.Err = fmt.Errorf("container %s: %w", name, err)
		return r
	}
	r.Record.Profile = path

	r.Output, r.Err = cm.launch(ctx, ContainerSpec{
		Name:        name,
		ID:          id,
		Bridge:      bridge,
		VLAN:        vlan,
		Profile:     data,
		ProfilePath: path,
	})
	if r.Err != nil {
		if err := cm.profiles.Remove(path); err != nil {
			cm.log.Warnw("failed to remove scratch profile", "path", path, "error", err)
		}
		r.Record.Profile = ""
	}
	return r
}
