// Package devctl is the public surface of the device control subsystem:
// the device-type catalogue, the template catalogue, locator validation
// and the orchestrator constructor. Importing it registers every vendor
// driver and template.
package devctl

import (
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/orchestrator"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"

	_ "github.com/nanoncore/nano-devctl/vendors/bdcom"
	_ "github.com/nanoncore/nano-devctl/vendors/dlink"
	_ "github.com/nanoncore/nano-devctl/vendors/eltex"
	_ "github.com/nanoncore/nano-devctl/vendors/huawei"
	_ "github.com/nanoncore/nano-devctl/vendors/zte"
)

// Protocol is a management protocol a device family is driven over.
type Protocol string

const (
	ProtocolSNMP Protocol = "snmp"
	ProtocolCLI  Protocol = "cli"
)

// FamilyCapabilities defines what protocols a device family is driven over
type FamilyCapabilities struct {
	// ReadMethod serves discovery and status reads
	ReadMethod Protocol

	// ConfigMethod serves writes that need an interactive session
	ConfigMethod Protocol

	SupportedProtocols []Protocol

	// Locked reports whether some operations take the per-device lock
	Locked bool
}

// CapabilityMatrix defines how each family is driven
var CapabilityMatrix = map[Family]FamilyCapabilities{
	FamilySwitch: {
		ReadMethod:         ProtocolSNMP,
		ConfigMethod:       ProtocolSNMP,
		SupportedProtocols: []Protocol{ProtocolSNMP},
	},
	FamilyOLT: {
		ReadMethod:         ProtocolSNMP,
		ConfigMethod:       ProtocolCLI,
		SupportedProtocols: []Protocol{ProtocolSNMP, ProtocolCLI},
		Locked:             true,
	},
	// ONUs are reached through the parent OLT
	FamilyONU: {
		ReadMethod:         ProtocolSNMP,
		ConfigMethod:       ProtocolCLI,
		SupportedProtocols: []Protocol{ProtocolSNMP, ProtocolCLI},
		Locked:             true,
	},
}

// DeviceTypeInfo is one entry of the device-type catalogue.
type DeviceTypeInfo struct {
	Code        model.DeviceType `json:"code" yaml:"code"`
	Description string           `json:"description" yaml:"description"`
	Family      Family           `json:"family" yaml:"family"`
}

// ListDeviceTypes returns every registered device type ordered by code.
func ListDeviceTypes() []DeviceTypeInfo {
	entries := registry.List()
	out := make([]DeviceTypeInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, DeviceTypeInfo{Code: e.Code, Description: e.Description, Family: e.Family})
	}
	return out
}

// ListConfigTemplates returns the templates that may be applied to a
// device type. An unknown code is an UnknownDeviceType error.
func ListConfigTemplates(code model.DeviceType) ([]templates.Descriptor, error) {
	if _, err := registry.Resolve(code); err != nil {
		return nil, err
	}
	found := templates.For(code)
	out := make([]templates.Descriptor, 0, len(found))
	for _, t := range found {
		out = append(out, templates.Describe(t))
	}
	return out, nil
}

// ValidateSNMPExtra checks a locator before it is stored on a record of
// the given type. An empty value is always valid.
func ValidateSNMPExtra(code model.DeviceType, value string) error {
	return registry.Default().ValidateLocator(code, value)
}

// NewDriver builds the driver of dev through the process-wide registry.
func NewDriver(dev *model.Device, t types.Transport) (Driver, error) {
	return registry.Default().NewDriver(dev, t)
}

// GetSupportedFamilies returns the families of the capability matrix
func GetSupportedFamilies() []Family {
	return []Family{FamilySwitch, FamilyOLT, FamilyONU}
}

// GetFamilyCapabilities returns the capabilities for a family
func GetFamilyCapabilities(f Family) (FamilyCapabilities, bool) {
	caps, ok := CapabilityMatrix[f]
	return caps, ok
}

// New returns an orchestrator over the process-wide registry and
// template set.
func New(store orchestrator.DeviceStore, t types.Transport, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(store, t, opts...)
}
