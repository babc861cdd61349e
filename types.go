package devctl

// Re-export types from the types sub-package so callers can use
// devctl.Driver, devctl.Error and so on.

import (
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Type aliases
type (
	Device         = model.Device
	DeviceType     = model.DeviceType
	Family         = types.Family
	Driver         = types.Driver
	SwitchDriver   = types.SwitchDriver
	OLTDriver      = types.OLTDriver
	ONUDriver      = types.ONUDriver
	Transport      = types.Transport
	Template       = types.Template
	VLAN           = types.VLAN
	PortVLANConfig = types.PortVLANConfig
	ONUStream      = types.ONUStream
	Error          = types.Error
	Kind           = types.Kind
)

// Re-export constants
const (
	FamilySwitch = types.FamilySwitch
	FamilyOLT    = types.FamilyOLT
	FamilyONU    = types.FamilyONU

	KindConfiguration      = types.KindConfiguration
	KindValidation         = types.KindValidation
	KindUnknownDeviceType  = types.KindUnknownDeviceType
	KindCapabilityMismatch = types.KindCapabilityMismatch
	KindNotRegistered      = types.KindNotRegistered
	KindNotFound           = types.KindNotFound
	KindFiberFull          = types.KindFiberFull
	KindAuthFailed         = types.KindAuthFailed
	KindProcessLocked      = types.KindProcessLocked
	KindTimeout            = types.KindTimeout
	KindConnection         = types.KindConnection
	KindConsole            = types.KindConsole
)

// HTTPStatus maps an error to the status the HTTP layer reports.
func HTTPStatus(err error) int {
	return types.HTTPStatus(err)
}
