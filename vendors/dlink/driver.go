// Package dlink drives D-Link DGS access switches over SNMP.
package dlink

import (
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// Device type codes.
const (
	TypeDGS1100_10ME model.DeviceType = 1
	TypeDGS3120_24SC model.DeviceType = 9
	TypeDGS1100_06ME model.DeviceType = 10
	TypeDGS3627G     model.DeviceType = 11
)

// Profile is the constant description of one switch model.
type Profile struct {
	Code        model.DeviceType
	Description string

	// Ports is the number of front-panel ports
	Ports int

	// Width is the membership bitmap width in bits
	Width int
}

// Profiles lists the supported models.
var Profiles = []Profile{
	{Code: TypeDGS1100_10ME, Description: "DLink switch DGS-1100-10/ME", Ports: 10, Width: 32},
	{Code: TypeDGS3120_24SC, Description: "DLink switch DGS-3120-24SC", Ports: 24, Width: 32},
	{Code: TypeDGS1100_06ME, Description: "DLink switch DGS-1100-06/ME", Ports: 6, Width: 32},
	{Code: TypeDGS3627G, Description: "DLink switch DGS-3627G", Ports: 27, Width: 32},
}

func init() {
	for _, p := range Profiles {
		p := p
		registry.Register(registry.Entry{
			Code:        p.Code,
			Description: p.Description,
			Family:      types.FamilySwitch,
			New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
				return New(dev, t, p), nil
			},
		})
	}
}

// Switch is a D-Link DGS switch. Port n is ifIndex n and bridge port n.
type Switch struct {
	*common.BridgeSwitch
	Profile Profile
}

var _ types.SwitchDriver = (*Switch)(nil)

// New builds the driver for dev.
func New(dev *model.Device, t types.Transport, p Profile) *Switch {
	save := types.SNMPVar{OID: OIDAgentSaveCfg, Type: types.SNMPInteger, Value: AgentSaveCfgValue}
	return &Switch{
		Profile: p,
		BridgeSwitch: &common.BridgeSwitch{
			Dev:       dev,
			Transport: t,
			Ports:     p.Ports,
			Bridge:    common.QBridge{Width: p.Width},
			Status:    common.OperUp,
			Save:      &save,
			Restart:   types.SNMPVar{OID: OIDAgentRestart, Type: types.SNMPInteger, Value: AgentRestartValue},
		},
	}
}
