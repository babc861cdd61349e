// Package lock provides the keyed, non-reentrant, fail-fast mutual
// exclusion that serialises CLI dialogues with one device.
package lock

import (
	"context"
	"fmt"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Unlock releases a held key.
type Unlock func() error

// Locker hands out named locks. TryLock never waits: a key that is
// already held, including by the caller itself, fails with ProcessLocked.
type Locker interface {
	TryLock(ctx context.Context, key string) (Unlock, error)
}

// DeviceKey is the canonical lock name of a device: its type code and its
// management address, or its record id when it has none.
func DeviceKey(dev *model.Device) string {
	if dev.IP != "" {
		return fmt.Sprintf("devctl:%d:%s", dev.Type, dev.IP)
	}
	return fmt.Sprintf("devctl:%d:id%d", dev.Type, dev.ID)
}

func locked(key string) error {
	return types.Errorf(types.KindProcessLocked, "%s is locked by another operation", key)
}
