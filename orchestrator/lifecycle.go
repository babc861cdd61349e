package orchestrator

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/sirupsen/logrus"
)

// Registration states of an ONU record.
const (
	StateUnregistered = "unregistered"
	StateRegistering  = "registering"
	StateRegistered   = "registered"
	StateRemoving     = "removing"
)

// Lifecycle events.
const (
	EventRegister       = "register"
	EventRegistered     = "registered"
	EventRegisterFailed = "register_failed"
	EventRemove         = "remove"
	EventRemoved        = "removed"
	EventRemoveFailed   = "remove_failed"
)

// lifecycle tracks one ONU record through a registration or a removal.
// It lives only for the duration of the orchestrated call.
type lifecycle struct {
	fsm *fsm.FSM
}

func newLifecycle(dev *model.Device, log *logrus.Entry) *lifecycle {
	initial := StateUnregistered
	if dev.Registered() {
		initial = StateRegistered
	}
	return &lifecycle{fsm: fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: EventRegister, Src: []string{StateUnregistered}, Dst: StateRegistering},
			{Name: EventRegistered, Src: []string{StateRegistering}, Dst: StateRegistered},
			{Name: EventRegisterFailed, Src: []string{StateRegistering}, Dst: StateUnregistered},
			{Name: EventRemove, Src: []string{StateRegistered}, Dst: StateRemoving},
			{Name: EventRemoved, Src: []string{StateRemoving}, Dst: StateUnregistered},
			{Name: EventRemoveFailed, Src: []string{StateRemoving}, Dst: StateRegistered},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.WithFields(logrus.Fields{"from": e.Src, "to": e.Dst}).Debug("lifecycle transition")
			},
		},
	)}
}

// State returns the current state.
func (l *lifecycle) State() string {
	return l.fsm.Current()
}

func (l *lifecycle) fire(ctx context.Context, event string) error {
	err := l.fsm.Event(ctx, event)
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return types.Errorf(types.KindValidation, "cannot %s an onu in state %s", event, l.fsm.Current())
	}
	return err
}

// run moves through begin, then ok or fail depending on fn. An error from
// fn is returned unchanged.
func (l *lifecycle) run(ctx context.Context, begin, ok, fail string, fn func() error) error {
	if err := l.fire(ctx, begin); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if ferr := l.fire(ctx, fail); ferr != nil {
			return ferr
		}
		return err
	}
	return l.fire(ctx, ok)
}
