package types

import (
	"context"

	"github.com/nanoncore/nano-devctl/model"
)

// Driver is implemented by every device driver. A driver is built for one
// device record and lives for the duration of one orchestrated call.
type Driver interface {
	// Family returns the capability set the driver implements
	Family() Family

	// Device returns the record the driver was built for
	Device() *model.Device
}

// Identifier is implemented by drivers of directly managed devices.
type Identifier interface {
	// Identity reads sysName, sysDescr and sysUpTime
	Identity(ctx context.Context) (*Identity, error)

	// MonitoringTemplate renders a monitoring host definition for the device
	MonitoringTemplate() string
}

// SwitchDriver is the capability set of Ethernet access switches.
type SwitchDriver interface {
	Driver
	Identifier

	// PortsLen is the number of front-panel ports
	PortsLen() int

	// GetPorts returns PortsLen ports in display order
	GetPorts(ctx context.Context) ([]Port, error)

	// PortEnable and PortDisable set the administrative state of port n
	PortEnable(ctx context.Context, n int) error
	PortDisable(ctx context.Context, n int) error

	// ReadPortVLANInfo returns the VLANs of port n with their native flag
	ReadPortVLANInfo(ctx context.Context, n int) ([]VLAN, error)

	// ReadAllVLANInfo returns every VLAN except the default VLAN
	ReadAllVLANInfo(ctx context.Context) ([]VLAN, error)

	// ReadMACAddressPort returns the FDB entries learned on port n
	ReadMACAddressPort(ctx context.Context, n int) ([]MACEntry, error)

	// ReadMACAddressVLAN returns the FDB entries learned in vid
	ReadMACAddressVLAN(ctx context.Context, vid int) ([]MACEntry, error)

	// CreateVLANs and DeleteVLANs manage the VLAN list
	CreateVLANs(ctx context.Context, vlans []VLAN) error
	DeleteVLANs(ctx context.Context, vlans []VLAN) error

	// AttachVLANsToPort adds vlans to port n, creating missing VLANs
	AttachVLANsToPort(ctx context.Context, vlans []VLAN, n int, mode PortMode) error

	// DetachVLANFromPort removes vid from port n
	DetachVLANFromPort(ctx context.Context, vid, n int) error

	// Reboot restarts the switch, optionally saving the configuration first
	Reboot(ctx context.Context, saveBefore bool) (*RebootResult, error)
}

// RegisterRequest describes an OLT-side ONU registration.
type RegisterRequest struct {
	// Fiber is the vendor fiber index. Zero lets the driver find the fiber
	// from its unregistered-unit table.
	Fiber int

	// Slot is the ONU index on the fiber. Zero picks the first free slot.
	Slot int

	// ONUType is the vendor ONU type name
	ONUType string

	// Serial is the GPON serial or the EPON MAC
	Serial string

	// Name is the normalised description written on the ONU, may be empty
	Name string

	// Template renders the configuration script
	Template Template

	// Config is the per-port VLAN configuration handed to the template
	Config []PortVLANConfig
}

// OLTDriver is the capability set of PON head-ends.
type OLTDriver interface {
	Driver
	Identifier

	// ScanONUList streams every provisioned ONU
	ScanONUList(ctx context.Context) (*ONUStream, error)

	// GetFibers returns the PON ports with their ONU counts
	GetFibers(ctx context.Context) ([]Fiber, error)

	// GetPortsOnFiber returns each provisioned slot on fiber
	GetPortsOnFiber(ctx context.Context, fiber int) ([]FiberSlot, error)

	// GetUnitsUnregistered returns units that answered on fiber but are not provisioned
	GetUnitsUnregistered(ctx context.Context, fiber int) ([]UnregisteredUnit, error)

	// AttachVLANsToUplink allows vlans on an uplink interface
	AttachVLANsToUplink(ctx context.Context, vlans []VLAN, uplink string) error

	// RegisterONU binds an ONU on the OLT and returns its locator
	RegisterONU(ctx context.Context, req RegisterRequest) (string, error)

	// RemoveFromOLT unbinds the ONU addressed by locator
	RemoveFromOLT(ctx context.Context, locator string) error
}

// ONUDriver is the capability set of optical network units. ONUs are read
// through their parent OLT.
type ONUDriver interface {
	Driver

	// PortsLen is the number of subscriber-side ports
	PortsLen() int

	// GetDetails reads status, signal and attributes over SNMP
	GetDetails(ctx context.Context) (*ONUDetails, error)

	// ReadONUVLANInfo returns the per-port VLAN configuration
	ReadONUVLANInfo(ctx context.Context) ([]PortVLANConfig, error)

	// DefaultVLANInfo is the shape reported for an unregistered ONU
	DefaultVLANInfo() []PortVLANConfig

	// FindSNByMAC looks the device MAC up in the parent OLT
	FindSNByMAC(ctx context.Context) (FixResult, error)

	// ApplyONUConfig registers and configures the ONU through its parent
	// and returns the new locator
	ApplyONUConfig(ctx context.Context, tmpl Template, cfg []PortVLANConfig) (string, error)
}

// LocatorParser is implemented by OLT drivers whose ONUs carry a locator.
type LocatorParser interface {
	ValidateLocator(locator string) error
}
