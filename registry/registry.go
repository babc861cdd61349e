// Package registry maps device-type codes to driver factories. Vendor
// packages register their codes from init; the mapping is read-only once
// the process is up.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Factory builds a driver for one device record. Drivers open sessions
// through t per operation.
type Factory func(dev *model.Device, t types.Transport) (types.Driver, error)

// Entry describes a registered device type.
type Entry struct {
	Code        model.DeviceType
	Description string
	Family      types.Family
	Locator     types.LocatorKind
	New         Factory
}

// Registry is a code to Entry mapping safe for concurrent reads.
type Registry struct {
	mu      sync.RWMutex
	entries map[model.DeviceType]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[model.DeviceType]Entry)}
}

// Register adds e. It panics on a duplicate code or a nil factory: both
// are programming errors caught at load time.
func (r *Registry) Register(e Entry) {
	if e.New == nil {
		panic(fmt.Sprintf("registry: nil factory for device type %d", e.Code))
	}
	switch e.Family {
	case types.FamilySwitch, types.FamilyOLT, types.FamilyONU:
	default:
		panic(fmt.Sprintf("registry: device type %d has unknown family %q", e.Code, e.Family))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[e.Code]; dup {
		panic(fmt.Sprintf("registry: device type %d registered twice", e.Code))
	}
	r.entries[e.Code] = e
}

// Resolve returns the entry for code.
func (r *Registry) Resolve(code model.DeviceType) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[code]
	if !ok {
		return Entry{}, types.Errorf(types.KindUnknownDeviceType, "device type %d is not registered", code)
	}
	return e, nil
}

// List returns every entry ordered by code.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// NewDriver resolves dev.Type and builds its driver.
func (r *Registry) NewDriver(dev *model.Device, t types.Transport) (types.Driver, error) {
	if dev == nil {
		return nil, types.Errorf(types.KindConfiguration, "device record is required")
	}
	e, err := r.Resolve(dev.Type)
	if err != nil {
		return nil, err
	}
	return e.New(dev, t)
}

// ValidateLocator checks value against the locator kind of code. An empty
// value is always accepted: it marks an unregistered unit.
func (r *Registry) ValidateLocator(code model.DeviceType, value string) error {
	e, err := r.Resolve(code)
	if err != nil {
		return err
	}
	return ValidateLocator(e.Locator, value)
}

// ValidateLocator checks value against kind.
func ValidateLocator(kind types.LocatorKind, value string) error {
	if value == "" {
		return nil
	}
	switch kind {
	case types.LocatorIfIndex:
		_, err := codec.ParseIfIndexLocator(value)
		return err
	case types.LocatorPacked:
		_, err := codec.ParseLocator(value)
		return err
	}
	return nil
}

var defaultRegistry = New()

// Default is the process-wide registry vendor packages register into.
func Default() *Registry {
	return defaultRegistry
}

// Register adds e to the default registry.
func Register(e Entry) {
	defaultRegistry.Register(e)
}

// Resolve looks code up in the default registry.
func Resolve(code model.DeviceType) (Entry, error) {
	return defaultRegistry.Resolve(code)
}

// List returns the entries of the default registry.
func List() []Entry {
	return defaultRegistry.List()
}
