//go:build !linux

package node

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/provision"
)

var errDockerUnsupported = errors.New("docker backend requires linux network namespaces")

type DockerLauncher struct{}

func NewDockerLauncher(*provision.Provisioner, string, *zap.SugaredLogger) (*DockerLauncher, error) {
	return nil, errDockerUnsupported
}

func (*DockerLauncher) Launch(context.Context, ContainerSpec) (string, error) {
	return "", errDockerUnsupported
}

func (*DockerLauncher) List(context.Context) (string, error) {
	return "", errDockerUnsupported
}
