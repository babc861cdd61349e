package common

import (
	"context"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// WithSNMP opens an SNMP session to dev for the duration of fn.
func WithSNMP(ctx context.Context, t types.Transport, dev *model.Device, fn func(s types.SNMPSession) error) error {
	if t == nil {
		return types.Errorf(types.KindConfiguration, "no transport for %s", dev)
	}
	s, err := t.SNMP(ctx, dev)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// WithCLI logs in to dev with profile and runs fn. The session is closed
// on every path; a close failure is reported only when fn succeeded.
func WithCLI(ctx context.Context, t types.Transport, dev *model.Device, profile types.CLIProfile, fn func(s types.CLISession) error) (err error) {
	if t == nil {
		return types.Errorf(types.KindConfiguration, "no transport for %s", dev)
	}
	s, err := t.CLI(ctx, dev, profile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = types.Wrap(types.KindConnection, cerr, "close cli session")
		}
	}()
	return fn(s)
}
