//go:build linux

package node

import (
	"context"
	"fmt"
	"net"
	"strings"

	ns "github.com/containernetworking/plugins/pkg/ns"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/provision"
)

// DockerLauncher runs containers on the local Docker engine and wires each
// one into an OVS bridge of this host with a veth pair. The container end
// gets 10.0.<vlan>.<id>/24; the host end becomes an access port of the
// VLAN.
type DockerLauncher struct {
	dClient *client.Client
	prov    *provision.Provisioner
	image   string
	log     *zap.SugaredLogger
}

func NewDockerLauncher(prov *provision.Provisioner, image string, log *zap.SugaredLogger) (*DockerLauncher, error) {
	dClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("error creating docker client: %w", err)
	}
	if image == "" {
		image = DefaultDockerImage
	}
	return &DockerLauncher{
		dClient: dClient,
		prov:    prov,
		image:   image,
		log:     log.Named("docker"),
	}, nil
}

// Launch creates and starts the container, then links it to its bridge. A
// container that could not be wired is removed again.
func (dl *DockerLauncher) Launch(ctx context.Context, spec ContainerSpec) (string, error) {
	if spec.Bridge == "" {
		return "", fmt.Errorf("docker container %s needs a bridge", spec.Name)
	}

	sysctls := map[string]string{
		"net.ipv4.ip_forward": "1",
	}
	created, err := dl.dClient.ContainerCreate(ctx, &container.Config{
		Image:           dl.image,
		NetworkDisabled: true,
		User:            "root",
		Cmd:             []string{"sleep", "infinity"},
	}, &container.HostConfig{
		Privileged: true,
		Sysctls:    sysctls,
	}, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("error creating container: %w", err)
	}

	if err := dl.wire(ctx, spec); err != nil {
		if rerr := dl.Remove(ctx, spec.Name); rerr != nil {
			dl.log.Warnw("failed to remove container", "name", spec.Name, "error", rerr)
		}
		return created.ID, err
	}
	return created.ID, nil
}

// wire starts the container and attaches it to its bridge.
func (dl *DockerLauncher) wire(ctx context.Context, spec ContainerSpec) error {
	if err := dl.dClient.ContainerStart(ctx, spec.Name, container.StartOptions{}); err != nil {
		return fmt.Errorf("error starting container: %w", err)
	}

	res, err := dl.dClient.ContainerInspect(ctx, spec.Name)
	if err != nil {
		return fmt.Errorf("error inspecting container: %w", err)
	}
	netNs := fmt.Sprintf("/proc/%d/ns/net", res.State.Pid)
	dl.log.Debugw("container started", "name", spec.Name, "netns", netNs)

	hostVeth, err := dl.createVethPair(spec, netNs)
	if err != nil {
		return err
	}

	cmd, err := ovs.AccessPortCommand(spec.Bridge, hostVeth, spec.VLAN)
	if err != nil {
		return err
	}
	if err := dl.prov.Exec(ctx, cmd); err != nil {
		err = fmt.Errorf("error adding %s to %s: %w", hostVeth, spec.Bridge, err)
		dl.removeVethOnError(err, hostVeth)
		return err
	}
	return nil
}

// deleteLink removes the named link. Deleting either end of a veth pair
// removes both.
var deleteLink = func(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return err
	}
	return netlink.LinkDel(link)
}

// removeVethOnError deletes the host end of a veth pair when err is set.
func (dl *DockerLauncher) removeVethOnError(err error, vethHost string) {
	if err == nil {
		return
	}
	if derr := deleteLink(vethHost); derr != nil {
		dl.log.Warnw("failed to delete veth", "name", vethHost, "error", derr)
	}
}

// createVethPair creates a veth pair, moves one end into the container
// namespace with its address and returns the host end.
func (dl *DockerLauncher) createVethPair(spec ContainerSpec, netNs string) (_ string, err error) {
	vethContainer := spec.Name + VethContainerSuffix
	vethHost := spec.Name + VethHostSuffix
	cidr := ContainerAddress(spec.VLAN, spec.ID)

	linkAttr := netlink.NewLinkAttrs()
	linkAttr.Name = vethHost
	linkAttr.MTU = 1500
	linkAttr.Flags = net.FlagUp
	veth := &netlink.Veth{
		LinkAttrs: linkAttr,
		PeerName:  vethContainer,
	}
	if err := netlink.LinkAdd(veth); err != nil {
		return "", fmt.Errorf("failed to create veth pair %s: %w", vethHost, err)
	}
	defer func() { dl.removeVethOnError(err, vethHost) }()

	hostLink, err := netlink.LinkByName(vethHost)
	if err != nil {
		return "", fmt.Errorf("failed to get link %s: %w", vethHost, err)
	}
	if err = netlink.LinkSetUp(hostLink); err != nil {
		return "", fmt.Errorf("failed to set link %s up: %w", vethHost, err)
	}

	containerLink, err := netlink.LinkByName(vethContainer)
	if err != nil {
		return "", fmt.Errorf("failed to get link %s: %w", vethContainer, err)
	}

	containerNs, err := ns.GetNS(netNs)
	if err != nil {
		return "", fmt.Errorf("failed to get namespace for container: %w", err)
	}
	defer containerNs.Close()

	if err = netlink.LinkSetNsFd(containerLink, int(containerNs.Fd())); err != nil {
		return "", fmt.Errorf("failed to set namespace for veth: %w", err)
	}

	if err = containerNs.Do(func(_ ns.NetNS) error {
		link, err := netlink.LinkByName(vethContainer)
		if err != nil {
			return fmt.Errorf("failed to get link in container namespace: %w", err)
		}
		addr, err := netlink.ParseAddr(cidr)
		if err != nil {
			return fmt.Errorf("failed to parse address %s: %w", cidr, err)
		}
		if err = netlink.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("failed to add address to link: %w", err)
		}
		return netlink.LinkSetUp(link)
	}); err != nil {
		return "", fmt.Errorf("failed to configure container namespace: %w", err)
	}
	return vethHost, nil
}

// List prints one line per container: name, image and state.
func (dl *DockerLauncher) List(ctx context.Context) (string, error) {
	cs, err := dl.dClient.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return "", fmt.Errorf("error listing containers: %w", err)
	}
	var b strings.Builder
	for _, c := range cs {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", strings.TrimPrefix(strings.Join(c.Names, ","), "/"), c.Image, c.State)
	}
	return b.String(), nil
}

// Remove deletes a container.
func (dl *DockerLauncher) Remove(ctx context.Context, name string) error {
	return dl.dClient.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
}
