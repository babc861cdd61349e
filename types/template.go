package types

import "github.com/nanoncore/nano-devctl/model"

// Step is one line of a CLI script and the prompts that may follow it.
type Step struct {
	Line   string   `json:"line"`
	Expect []string `json:"expect"`
}

// TemplateParams are the computed values a template renders with.
type TemplateParams struct {
	// Device is the ONU record being configured
	Device *model.Device

	// Interface is the vendor ONU interface name, e.g. "gpon-onu_1/2/1:5"
	Interface string

	// Slot is the ONU index on its fiber
	Slot int

	// ONUType is the vendor ONU type name
	ONUType string

	// Serial is the GPON serial or EPON MAC
	Serial string

	// Name is the normalised ONU description
	Name string

	// VIDs is the flat, deduplicated VLAN set from the configuration
	VIDs []int

	// NativeVID is the single untagged VLAN, 0 when none is native
	NativeVID int

	// Config is the per-port configuration as supplied
	Config []PortVLANConfig
}

// Template renders a vendor CLI script from parameters.
type Template interface {
	ShortCode() string
	Title() string
	AcceptsVLAN() bool

	// ValidFor reports whether the template may be applied to the device type
	ValidFor(code model.DeviceType) bool

	// Render validates cfg and produces the script
	Render(p TemplateParams) ([]Step, error)
}
