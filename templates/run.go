package templates

import (
	"context"
	"fmt"

	"github.com/nanoncore/nano-devctl/types"
)

// CheckFunc inspects the output a command printed before its prompt and
// returns the vendor error it contains, if any.
type CheckFunc func(lines []string) error

// Run replays steps on s. A prompt mismatch, a timeout or an error found by
// check aborts the script with a ConfigurationError; nothing is rolled back.
func Run(ctx context.Context, s types.CLISession, steps []types.Step, check CheckFunc) error {
	for i, step := range steps {
		if len(step.Expect) == 0 {
			if err := s.Send(step.Line); err != nil {
				return stepError(i, step, err)
			}
			continue
		}
		if _, err := s.DoCmd(ctx, step.Line, step.Expect...); err != nil {
			return stepError(i, step, err)
		}
		if check == nil {
			continue
		}
		if err := check(s.LinesBefore()); err != nil {
			return stepError(i, step, err)
		}
	}
	return nil
}

func stepError(i int, step types.Step, err error) error {
	return &types.Error{
		Kind: types.KindConfiguration,
		Msg:  fmt.Sprintf("template step %d %q", i+1, step.Line),
		Err:  err,
	}
}
