package bdcom

import (
	"context"
	"strconv"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// ONUPorts is the number of UNI ports of the supported EPON ONUs.
const ONUPorts = 1

// ONU is an EPON ONU behind a BDCOM OLT. It is read through the parent
// and its locator is the ifIndex of the ONU interface.
type ONU struct {
	dev *model.Device
	t   types.Transport
}

var _ types.ONUDriver = (*ONU)(nil)

// NewONU builds the driver for dev.
func NewONU(dev *model.Device, t types.Transport) *ONU {
	return &ONU{dev: dev, t: t}
}

// Family implements types.Driver.
func (u *ONU) Family() types.Family { return types.FamilyONU }

// Device implements types.Driver.
func (u *ONU) Device() *model.Device { return u.dev }

// PortsLen implements types.ONUDriver.
func (u *ONU) PortsLen() int { return ONUPorts }

func (u *ONU) parent() (*OLT, error) {
	if u.dev == nil || u.dev.Parent == nil {
		return nil, types.Errorf(types.KindConfiguration, "%s has no parent olt", u.dev)
	}
	return NewOLT(u.dev.Parent, u.t), nil
}

func (u *ONU) ifIndex() (int, error) {
	if !u.dev.Registered() {
		return 0, types.Errorf(types.KindNotRegistered, "%s has no locator", u.dev)
	}
	return codec.ParseIfIndexLocator(u.dev.SNMPExtra)
}

// GetDetails implements types.ONUDriver.
func (u *ONU) GetDetails(ctx context.Context) (*types.ONUDetails, error) {
	olt, err := u.parent()
	if err != nil {
		return nil, err
	}
	ifIndex, err := u.ifIndex()
	if err != nil {
		return nil, err
	}
	var details *types.ONUDetails
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		name, err := common.GetString(ctx, s, common.OID(common.OIDIfDescr, ifIndex))
		if err != nil {
			return err
		}
		fiber, slot, ok := ParseInterface(name)
		if !ok || slot == 0 {
			return types.Errorf(types.KindNotFound, "ifIndex %d is not an onu interface", ifIndex)
		}
		onu, err := olt.readONU(ctx, s, ponIf{IfIndex: ifIndex, Name: name, Fiber: fiber, ONU: slot})
		if err != nil {
			return err
		}
		details = &types.ONUDetails{
			Status: onu.Status,
			Signal: float64(onu.Signal) / 10,
			MAC:    onu.MAC,
			Attributes: []types.Attribute{
				{Label: "Interface", Value: name},
			},
		}
		if onu.Name != "" {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Description", Value: onu.Name})
		}
		if distance, ok, err := common.GetInt(ctx, s, common.OID(OIDONUDistance, ifIndex)); err != nil {
			return err
		} else if ok {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Distance, m", Value: strconv.FormatInt(distance, 10)})
		}
		if fw, err := common.GetString(ctx, s, common.OID(OIDONUFirmware, ifIndex)); err != nil {
			return err
		} else if fw != "" {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Firmware", Value: fw})
		}
		return nil
	})
	return details, err
}

// ReadONUVLANInfo implements types.ONUDriver.
func (u *ONU) ReadONUVLANInfo(ctx context.Context) ([]types.PortVLANConfig, error) {
	olt, err := u.parent()
	if err != nil {
		return nil, err
	}
	ifIndex, err := u.ifIndex()
	if err != nil {
		return nil, err
	}
	var cfg []types.PortVLANConfig
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		var err error
		cfg, err = common.ReadONUPortVLANs(ctx, s, OIDONUPortPVID, OIDONUPortTrunk, strconv.Itoa(ifIndex), ONUPorts)
		return err
	})
	return cfg, err
}

// DefaultVLANInfo implements types.ONUDriver.
func (u *ONU) DefaultVLANInfo() []types.PortVLANConfig {
	return common.DefaultPortVLANs(u.dev, ONUPorts)
}

// FindSNByMAC implements types.ONUDriver. The parent's ONU MAC table is
// searched for the record's MAC and the matching ifIndex becomes the
// locator.
func (u *ONU) FindSNByMAC(ctx context.Context) (types.FixResult, error) {
	olt, err := u.parent()
	if err != nil {
		return types.FixResult{Reason: "onu has no parent olt"}, nil
	}
	mac, err := codec.ParseMAC(u.dev.MAC)
	if err != nil {
		return types.FixResult{Reason: "onu record has no valid mac"}, nil
	}
	var res types.FixResult
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		macs, err := common.WalkStrings(ctx, s, OIDONUMAC)
		if err != nil {
			return err
		}
		for _, k := range common.SortedIndexes(macs) {
			if got, err := codec.MACFromOctetString(macs[k]); err == nil && got == mac {
				res.Locator = k
				return nil
			}
		}
		res.Reason = "mac " + mac + " not found on olt"
		return nil
	})
	return res, err
}

// ApplyONUConfig implements types.ONUDriver. The ONU is bound on the parent
// by its MAC, or configured in place when it is bound already.
func (u *ONU) ApplyONUConfig(ctx context.Context, tmpl types.Template, cfg []types.PortVLANConfig) (string, error) {
	olt, err := u.parent()
	if err != nil {
		return "", err
	}
	if tmpl == nil || !tmpl.ValidFor(u.dev.Type) {
		return "", types.Errorf(types.KindConfiguration, "template is not valid for device type %d", u.dev.Type)
	}
	if u.dev.MAC == "" {
		return "", types.Errorf(types.KindConfiguration, "%s has no mac", u.dev)
	}
	return olt.RegisterONU(ctx, types.RegisterRequest{
		ONUType:  "EPON",
		Serial:   u.dev.MAC,
		Name:     codec.NormalizeName(u.dev.Name),
		Template: tmpl,
		Config:   cfg,
	})
}
