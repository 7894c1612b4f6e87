package node

import (
	"context"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

const (
	LxcCmd = "lxc"

	DefaultServer = "ubuntu"
	DefaultImage  = "24.04"
)

// LXDLauncher creates LXD containers with the lxc client. The profile is
// fed on stdin, so it never has to exist on the target host's disk.
type LXDLauncher struct {
	run    runner.Runner
	server string
	image  string
}

func NewLXDLauncher(run runner.Runner, server, image string) *LXDLauncher {
	if server == "" {
		server = DefaultServer
	}
	if image == "" {
		image = DefaultImage
	}
	return &LXDLauncher{run: run, server: server, image: image}
}

// InitCommand returns `lxc init <server>:<image> <name>` with the profile on
// stdin.
func (l *LXDLauncher) InitCommand(name string, prof []byte) runner.Command {
	cmd := runner.New(LxcCmd, "init", l.server+":"+l.image, name)
	cmd.Stdin = string(prof)
	return cmd
}

func (l *LXDLauncher) Launch(ctx context.Context, spec ContainerSpec) (string, error) {
	return l.run.Run(ctx, l.InitCommand(spec.Name, spec.Profile))
}

func (l *LXDLauncher) List(ctx context.Context) (string, error) {
	return l.run.Run(ctx, runner.New(LxcCmd, "list"))
}
