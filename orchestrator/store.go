package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Record fields UpdateFields understands.
const (
	FieldSNMPExtra = "snmp_extra"
	FieldMAC       = "mac"
	FieldName      = "name"
)

// DeviceStore is the external owner of device records.
type DeviceStore interface {
	// GetByID returns the record with id, or a NotFound error
	GetByID(ctx context.Context, id int64) (*model.Device, error)

	// UpdateFields writes the given fields of dev
	UpdateFields(ctx context.Context, dev *model.Device, fields map[string]interface{}) error
}

// Notifier delivers operator alerts. Delivery is advisory: failures are
// logged and never fail an operation.
type Notifier interface {
	SendNotification(ctx context.Context, recipients []string, text string) error
}

// MemoryStore is a DeviceStore kept in memory. Records are copied in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[int64]*model.Device
}

var _ DeviceStore = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding devs.
func NewMemoryStore(devs ...*model.Device) *MemoryStore {
	s := &MemoryStore{devices: make(map[int64]*model.Device)}
	for _, d := range devs {
		s.Put(d)
	}
	return s
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(dev *model.Device) {
	c := dev.Clone()
	c.Parent = nil
	s.mu.Lock()
	s.devices[dev.ID] = c
	s.mu.Unlock()
}

// GetByID implements DeviceStore.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, types.Errorf(types.KindNotFound, "device %d not found", id)
	}
	return d.Clone(), nil
}

// UpdateFields implements DeviceStore.
func (s *MemoryStore) UpdateFields(_ context.Context, dev *model.Device, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[dev.ID]
	if !ok {
		return types.Errorf(types.KindNotFound, "device %d not found", dev.ID)
	}
	c := d.Clone()
	for name, value := range fields {
		str, ok := value.(string)
		if !ok {
			return types.Errorf(types.KindValidation, "field %s: want a string, got %T", name, value)
		}
		switch name {
		case FieldSNMPExtra:
			c.SNMPExtra = str
		case FieldMAC:
			c.MAC = str
		case FieldName:
			c.Name = str
		default:
			return types.Errorf(types.KindValidation, "field %s cannot be updated", name)
		}
	}
	s.devices[dev.ID] = c
	return nil
}

// List returns every record ordered by id.
func (s *MemoryStore) List() []*model.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
