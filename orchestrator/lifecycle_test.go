package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/nanoncore/nano-devctl/logging"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleInitialState(t *testing.T) {
	assert.Equal(t, StateUnregistered, newLifecycle(&model.Device{}, logging.Entry()).State())
	assert.Equal(t, StateRegistered, newLifecycle(&model.Device{SNMPExtra: "268501248.1"}, logging.Entry()).State())
}

func TestLifecycleRegister(t *testing.T) {
	ctx := context.Background()
	lc := newLifecycle(&model.Device{}, logging.Entry())

	var during string
	err := lc.run(ctx, EventRegister, EventRegistered, EventRegisterFailed, func() error {
		during = lc.State()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateRegistering, during)
	assert.Equal(t, StateRegistered, lc.State())
}

func TestLifecycleRegisterFails(t *testing.T) {
	lc := newLifecycle(&model.Device{}, logging.Entry())
	boom := types.Errorf(types.KindFiberFull, "no free slot")

	err := lc.run(context.Background(), EventRegister, EventRegistered, EventRegisterFailed, func() error {
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, StateUnregistered, lc.State())
}

func TestLifecycleRemove(t *testing.T) {
	ctx := context.Background()
	lc := newLifecycle(&model.Device{SNMPExtra: "268501248.1"}, logging.Entry())

	err := lc.run(ctx, EventRemove, EventRemoved, EventRemoveFailed, func() error {
		return types.Errorf(types.KindTimeout, "cli: waiting for prompt")
	})
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.Equal(t, StateRegistered, lc.State())

	require.NoError(t, lc.run(ctx, EventRemove, EventRemoved, EventRemoveFailed, func() error { return nil }))
	assert.Equal(t, StateUnregistered, lc.State())
}

func TestLifecycleInvalidEvent(t *testing.T) {
	lc := newLifecycle(&model.Device{}, logging.Entry())

	called := false
	err := lc.run(context.Background(), EventRemove, EventRemoved, EventRemoveFailed, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "cannot remove an onu in state unregistered")
	assert.False(t, called)
	assert.Equal(t, StateUnregistered, lc.State())
}
