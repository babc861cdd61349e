package zte

import (
	"context"
	"strconv"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// Profile is the constant description of an ONU model.
type Profile struct {
	Code        model.DeviceType
	Description string

	// ONUType is the type name declared on the OLT
	ONUType string

	// Ports is the number of Ethernet UNI ports
	Ports int
}

// Profiles lists the supported ONU models.
var Profiles = []Profile{
	{Code: TypeF660, Description: "PON ONU ZTE F660", ONUType: "ZTE-F660", Ports: 4},
	{Code: TypeF601, Description: "PON ONU ZTE F601", ONUType: "ZTE-F601", Ports: 1},
}

func init() {
	for _, p := range Profiles {
		p := p // per-iteration copy (module targets go 1.21 loop semantics)
		registry.Register(registry.Entry{
			Code:        p.Code,
			Description: p.Description,
			Family:      types.FamilyONU,
			Locator:     types.LocatorPacked,
			New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
				return NewONU(dev, t, p), nil
			},
		})
	}
}

// ONU is a ZTE GPON ONU. It is read through the parent OLT and its locator
// is "<packed>.<onu>".
type ONU struct {
	dev     *model.Device
	t       types.Transport
	Profile Profile
}

var _ types.ONUDriver = (*ONU)(nil)

// NewONU builds the driver for dev.
func NewONU(dev *model.Device, t types.Transport, p Profile) *ONU {
	return &ONU{dev: dev, t: t, Profile: p}
}

// Family implements types.Driver.
func (u *ONU) Family() types.Family { return types.FamilyONU }

// Device implements types.Driver.
func (u *ONU) Device() *model.Device { return u.dev }

// PortsLen implements types.ONUDriver.
func (u *ONU) PortsLen() int { return u.Profile.Ports }

func (u *ONU) parent() (*OLT, error) {
	if u.dev == nil || u.dev.Parent == nil {
		return nil, types.Errorf(types.KindConfiguration, "%s has no parent olt", u.dev)
	}
	return NewOLT(u.dev.Parent, u.t), nil
}

func (u *ONU) locator() (codec.Locator, error) {
	if !u.dev.Registered() {
		return codec.Locator{}, types.Errorf(types.KindNotRegistered, "%s has no locator", u.dev)
	}
	return codec.ParseLocator(u.dev.SNMPExtra)
}

// GetDetails implements types.ONUDriver.
func (u *ONU) GetDetails(ctx context.Context) (*types.ONUDetails, error) {
	olt, err := u.parent()
	if err != nil {
		return nil, err
	}
	loc, err := u.locator()
	if err != nil {
		return nil, err
	}
	index := loc.Index()
	var details *types.ONUDetails
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		raw, err := common.GetString(ctx, s, OIDONUSerial+"."+index)
		if err != nil {
			return err
		}
		serial := serialOf(raw)
		if serial == "" {
			return types.Errorf(types.KindNotFound, "%s is not configured on the olt", ONUInterface(loc))
		}
		row, err := readONU(ctx, s, index, raw)
		if err != nil {
			return err
		}
		details = &types.ONUDetails{
			Status: row.onu.Status,
			Signal: row.dBm,
			MAC:    row.onu.MAC,
			Attributes: []types.Attribute{
				{Label: "Interface", Value: ONUInterface(loc)},
				{Label: "Serial", Value: serial},
			},
		}
		if kind, err := common.GetString(ctx, s, OIDONUType+"."+index); err != nil {
			return err
		} else if kind != "" {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Type", Value: kind})
		}
		if row.onu.Name != "" {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Name", Value: row.onu.Name})
		}
		if phase, ok := common.Int(row.phase); ok {
			name, known := phaseNames[phase]
			if !known {
				name = "unknown(" + strconv.FormatInt(phase, 10) + ")"
			}
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Phase", Value: name})
		}
		if distance, ok, err := common.GetInt(ctx, s, OIDONUDistance+"."+index); err != nil {
			return err
		} else if ok {
			details.Attributes = append(details.Attributes, types.Attribute{Label: "Distance, m", Value: strconv.FormatInt(distance, 10)})
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
	loc, err := u.locator()
	if err != nil {
		return nil, err
	}
	var cfg []types.PortVLANConfig
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		var err error
		cfg, err = common.ReadONUPortVLANs(ctx, s, OIDUNIAccessVID, OIDUNITrunkVIDs, loc.Index(), u.Profile.Ports)
		return err
	})
	return cfg, err
}

// DefaultVLANInfo implements types.ONUDriver.
func (u *ONU) DefaultVLANInfo() []types.PortVLANConfig {
	return common.DefaultPortVLANs(u.dev, u.Profile.Ports)
}

// FindSNByMAC implements types.ONUDriver. The serial encoded in the record
// MAC is searched in the parent's ONU table.
func (u *ONU) FindSNByMAC(ctx context.Context) (types.FixResult, error) {
	olt, err := u.parent()
	if err != nil {
		return types.FixResult{Reason: "onu has no parent olt"}, nil
	}
	serial, err := codec.MACToSerial(u.dev.MAC)
	if err != nil {
		return types.FixResult{Reason: "onu record has no valid mac"}, nil
	}
	var res types.FixResult
	err = common.WithSNMP(ctx, olt.t, olt.dev, func(s types.SNMPSession) error {
		serials, err := common.WalkStrings(ctx, s, OIDONUSerial)
		if err != nil {
			return err
		}
		for _, k := range common.SortedIndexes(serials) {
			if serialOf(serials[k]) != serial {
				continue
			}
			if _, err := codec.ParseLocator(k); err != nil {
				res.Reason = "serial " + serial + " has an unexpected index " + k
				return nil
			}
			res.Locator = k
			return nil
		}
		res.Reason = "serial " + serial + " not found on olt"
		return nil
	})
	return res, err
}

// ApplyONUConfig implements types.ONUDriver. The serial is recovered from
// the record MAC and the unit is registered on the parent.
func (u *ONU) ApplyONUConfig(ctx context.Context, tmpl types.Template, cfg []types.PortVLANConfig) (string, error) {
	olt, err := u.parent()
	if err != nil {
		return "", err
	}
	if tmpl == nil || !tmpl.ValidFor(u.dev.Type) {
		return "", types.Errorf(types.KindConfiguration, "template is not valid for device type %d", u.dev.Type)
	}
	serial, err := codec.MACToSerial(u.dev.MAC)
	if err != nil {
		return "", &types.Error{Kind: types.KindConfiguration, Msg: u.dev.String() + " has no valid mac", Err: err}
	}
	return olt.RegisterONU(ctx, types.RegisterRequest{
		ONUType:  u.Profile.ONUType,
		Serial:   serial,
		Name:     codec.NormalizeName(u.dev.Name),
		Template: tmpl,
		Config:   cfg,
	})
}
