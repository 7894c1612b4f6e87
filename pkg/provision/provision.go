// Package provision executes switch command sequences against one host.
//
// Every step is checked before the next one is issued and every output is
// appended to the results sink. Nothing is rolled back: a failed step
// leaves whatever the earlier steps created and the error says which step
// failed.
package provision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/ovs"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

// Provisioner issues switch commands on one host.
type Provisioner struct {
	run  runner.Runner
	sink results.Sink
	om   *ovs.OvsManager
	qos  *ovs.QoS
	log  *zap.SugaredLogger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithSink records every command output in sink.
func WithSink(sink results.Sink) Option {
	return func(p *Provisioner) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithQoS replaces the default QoS builder, which uses fresh identifiers.
func WithQoS(q *ovs.QoS) Option {
	return func(p *Provisioner) {
		if q != nil {
			p.qos = q
		}
	}
}

// New returns a Provisioner issuing commands through run.
func New(run runner.Runner, log *zap.SugaredLogger, opts ...Option) *Provisioner {
	p := &Provisioner{
		run:  run,
		sink: results.Discard,
		qos:  ovs.NewQoS(nil, ""),
		log:  log.Named("provision"),
	}
	for _, o := range opts {
		o(p)
	}
	p.om = ovs.NewOvsManager(run, log)
	return p
}

// Inspector returns the switch inspector bound to the same runner.
func (p *Provisioner) Inspector() *ovs.OvsManager {
	return p.om
}

// Exec runs cmds in order and stops at the first failure.
func (p *Provisioner) Exec(ctx context.Context, cmds ...runner.Command) error {
	for i, cmd := range cmds {
		if _, err := p.exec(ctx, cmd); err != nil {
			return &StepError{Step: i + 1, Of: len(cmds), Err: err}
		}
	}
	return nil
}

// exec runs one command and records its output, failed or not.
func (p *Provisioner) exec(ctx context.Context, cmd runner.Command) (string, error) {
	p.log.Debugw("run", "cmd", cmd.String())
	out, err := p.run.Run(ctx, cmd)
	if serr := p.sink.Append(cmd.String(), out); serr != nil {
		p.log.Warnw("failed to record output", "cmd", cmd.String(), "error", serr)
	}
	if err != nil {
		p.log.Warnw("command failed", "cmd", cmd.String(), "error", err)
	}
	return out, err
}

// StepError reports which step of a sequence failed.
type StepError struct {
	Step int
	Of   int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d/%d: %v", e.Step, e.Of, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
