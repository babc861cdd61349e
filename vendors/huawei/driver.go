// Package huawei drives Huawei S-series access switches over SNMP.
package huawei

import (
	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// Device type codes.
const (
	TypeS2300     model.DeviceType = 8
	TypeS5300_10P model.DeviceType = 12
)

// Profile is the constant description of one switch model.
type Profile struct {
	Code        model.DeviceType
	Description string
	Ports       int
}

// Profiles lists the supported models.
var Profiles = []Profile{
	{Code: TypeS2300, Description: "Huawei switch S2300", Ports: 26},
	{Code: TypeS5300_10P, Description: "Huawei switch S5300-10P", Ports: 10},
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

// Switch is a Huawei S-series switch. Front ports are the bridge ports in
// order; their ifIndexes come from the bridge port table and the CPU and
// VLAN interfaces after them are cut off at the port count.
type Switch struct {
	*common.BridgeSwitch
	Profile Profile
}

var _ types.SwitchDriver = (*Switch)(nil)

// New builds the driver for dev.
func New(dev *model.Device, t types.Transport, p Profile) *Switch {
	save := types.SNMPVar{OID: OIDCfgOperateType, Type: types.SNMPInteger, Value: CfgRunningToSave}
	return &Switch{
		Profile: p,
		BridgeSwitch: &common.BridgeSwitch{
			Dev:       dev,
			Transport: t,
			Ports:     p.Ports,
			Bridge:    common.QBridge{Width: codec.BitmapWidth64},
			Status:    common.AdminAndOperUp,
			IfIndexes: common.BridgeIfIndexes,
			Save:      &save,
			Restart:   types.SNMPVar{OID: OIDSysReloadAction, Type: types.SNMPInteger, Value: ReloadNow},
		},
	}
}
