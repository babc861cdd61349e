package types

import (
	"time"
)

// Family is the capability set a driver implements.
type Family string

const (
	FamilySwitch Family = "switch"
	FamilyOLT    Family = "olt"
	FamilyONU    Family = "onu"
)

// Status is the summarised health of a port, fiber slot or ONU.
type Status string

const (
	StatusOK      Status = "ok"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// LocatorKind tells how a device type interprets its snmp_extra.
type LocatorKind int

const (
	// LocatorNone means snmp_extra is meaningless (switches, OLTs)
	LocatorNone LocatorKind = iota

	// LocatorIfIndex is a positive decimal interface index (BDCOM ONUs)
	LocatorIfIndex

	// LocatorPacked is "<packed>.<onu>" (ZTE ONUs)
	LocatorPacked
)

// Port is a physical port of a switch.
type Port struct {
	// Number is the 1-based display number
	Number int `json:"number"`

	// SNMPIndex is the vendor's interface index for this port
	SNMPIndex int `json:"snmp_index"`

	// Name is the interface alias or description
	Name string `json:"name"`

	// Status is true when the link is operationally up
	Status bool `json:"status"`

	// MAC is the port hardware address
	MAC string `json:"mac,omitempty"`

	// Speed is the link speed in bits per second
	Speed uint64 `json:"speed"`

	// UptimeTicks is ifLastChange in hundredths of a second
	UptimeTicks uint64 `json:"uptime_ticks"`
}

// MACEntry is one row of a forwarding database.
type MACEntry struct {
	VID  int    `json:"vid"`
	Port int    `json:"port"`
	MAC  string `json:"mac"`
	Name string `json:"name,omitempty"`
}

// ONU is the projection of an optical unit produced by an OLT scan.
type ONU struct {
	// FiberIndex is the vendor index of the PON port
	FiberIndex int `json:"fiber_index"`

	// ONUIndex is the slot on the fiber
	ONUIndex int `json:"onu_index"`

	// Name is the ONU description configured on the OLT
	Name string `json:"name"`

	// Status is the registration state summary
	Status Status `json:"status"`

	// MAC is the ONU MAC (EPON) or the MAC derived from the serial (GPON)
	MAC string `json:"mac,omitempty"`

	// Signal is the received optical level in dBm x10
	Signal int `json:"signal"`

	// UptimeTicks is the ONU uptime in hundredths of a second, 0 when unknown
	UptimeTicks uint64 `json:"uptime_ticks"`
}

// Fiber is a PON port of an OLT.
type Fiber struct {
	// Index is the vendor index (ifIndex or packed fiber value)
	Index int `json:"index"`

	// Name is the interface name, e.g. "gpon-olt_1/2/1"
	Name string `json:"name"`

	// ONUCount is the number of provisioned ONUs
	ONUCount int `json:"onu_count"`

	// ActiveCount is the number of working ONUs, -1 when the vendor does not expose it
	ActiveCount int `json:"active_count"`
}

// FiberSlot describes one provisioned ONU slot on a fiber.
type FiberSlot struct {
	ONUIndex int     `json:"onu_index"`
	Type     string  `json:"type"`
	Signal   float64 `json:"signal"`
	Serial   string  `json:"serial"`
	Status   Status  `json:"status"`
}

// UnregisteredUnit is an ONU that answered on a fiber but is not provisioned.
type UnregisteredUnit struct {
	// Fiber is the vendor fiber index the unit was seen on
	Fiber int `json:"fiber"`

	// Serial is the GPON serial, or the MAC for EPON units
	Serial string `json:"serial"`

	// Firmware is the reported software version, if any
	Firmware string `json:"firmware,omitempty"`

	// MAC is set for EPON units and derived from the serial for ZTE
	MAC string `json:"mac,omitempty"`
}

// Attribute is a labelled value shown with ONU details.
type Attribute struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ONUDetails is the per-ONU view read through the parent OLT.
type ONUDetails struct {
	Status     Status      `json:"status"`
	Signal     float64     `json:"signal"`
	MAC        string      `json:"mac,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Identity is the sysName/sysDescr/sysUpTime triple of a managed device.
type Identity struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Uptime      time.Duration `json:"uptime"`
}

// FixResult is the outcome of reconciling an ONU record with its OLT.
// Failures that are expected on live networks are reported through Reason
// instead of an error.
type FixResult struct {
	// Locator is the new snmp_extra, empty on failure
	Locator string `json:"locator,omitempty"`

	// Reason explains a failed lookup
	Reason string `json:"reason,omitempty"`
}

// Found reports whether a locator was resolved.
func (r FixResult) Found() bool {
	return r.Locator != ""
}

// RebootResult is what a switch replies to a reboot request.
type RebootResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
