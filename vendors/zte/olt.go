// Package zte drives ZTE C320 GPON OLTs and the F660 and F601 ONUs
// behind them.
package zte

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// Device type codes.
const (
	TypeC320 model.DeviceType = 5
	TypeF660 model.DeviceType = 6
	TypeF601 model.DeviceType = 7
)

func init() {
	registry.Register(registry.Entry{
		Code:        TypeC320,
		Description: "PON OLT ZTE C320",
		Family:      types.FamilyOLT,
		New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
			return NewOLT(dev, t), nil
		},
	})
}

// OLT is a ZTE C320. Fibers are addressed by their packed index, which is
// also the ifIndex of the gpon-olt interface.
type OLT struct {
	dev *model.Device
	t   types.Transport
}

var (
	_ types.OLTDriver     = (*OLT)(nil)
	_ types.LocatorParser = (*OLT)(nil)
)

// NewOLT builds the driver for dev.
func NewOLT(dev *model.Device, t types.Transport) *OLT {
	return &OLT{dev: dev, t: t}
}

// Family implements types.Driver.
func (o *OLT) Family() types.Family { return types.FamilyOLT }

// Device implements types.Driver.
func (o *OLT) Device() *model.Device { return o.dev }

// ValidateLocator implements types.LocatorParser.
func (o *OLT) ValidateLocator(locator string) error {
	_, err := codec.ParseLocator(locator)
	return err
}

// Identity implements types.Identifier.
func (o *OLT) Identity(ctx context.Context) (*types.Identity, error) {
	var id *types.Identity
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		var err error
		id, err = common.ReadIdentity(ctx, s)
		return err
	})
	return id, err
}

// MonitoringTemplate implements types.Identifier.
func (o *OLT) MonitoringTemplate() string {
	return common.MonitoringHost(o.dev, common.HostTemplateOLT)
}

func onuStatus(v interface{}) types.Status {
	n, ok := common.Int(v)
	switch {
	case !ok:
		return types.StatusUnknown
	case n == PhaseWorking:
		return types.StatusOK
	}
	return types.StatusDown
}

func signalDBm(v interface{}) float64 {
	n, ok := common.Int(v)
	if !ok {
		return 0
	}
	return codec.DecodeZTESignal(int(n))
}

func serialOf(raw string) string {
	serial, err := codec.SerialFromOctets(raw)
	if err != nil {
		return ""
	}
	return serial
}

func macOfSerial(serial string) string {
	mac, err := codec.SerialToMAC(serial)
	if err != nil {
		return ""
	}
	return mac
}

// ScanONUList implements types.OLTDriver. The serial column is walked up
// front for the total; the remaining columns are read per ONU as the
// consumer pulls.
func (o *OLT) ScanONUList(ctx context.Context) (*types.ONUStream, error) {
	s, err := o.t.SNMP(ctx, o.dev)
	if err != nil {
		return nil, err
	}
	serials, err := common.WalkStrings(ctx, s, OIDONUSerial)
	if err != nil {
		s.Close()
		return nil, err
	}
	keys := common.SortedIndexes(serials)
	return types.NewONUStream(ctx, len(keys), types.DefaultChunkSize, func(ctx context.Context, yield func(types.ONU) error) error {
		defer s.Close()
		for _, k := range keys {
			row, err := readONU(ctx, s, k, serials[k])
			if err != nil {
				return err
			}
			if err := yield(row.onu); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

// onuRow is one ONU read from the OLT tables, with the raw phase and
// level kept for callers that report them.
type onuRow struct {
	onu   types.ONU
	phase interface{}
	dBm   float64
}

func readONU(ctx context.Context, s types.SNMPSession, index, rawSerial string) (onuRow, error) {
	packed, n, err := common.LastTwo(index)
	if err != nil {
		return onuRow{}, err
	}
	name, err := common.GetString(ctx, s, OIDONUName+"."+index)
	if err != nil {
		return onuRow{}, err
	}
	phase, err := s.Get(ctx, OIDONUPhaseState+"."+index)
	if err != nil {
		return onuRow{}, err
	}
	rx, err := s.Get(ctx, RxPowerOID(index))
	if err != nil {
		return onuRow{}, err
	}
	dBm := signalDBm(rx)
	return onuRow{
		onu: types.ONU{
			FiberIndex: packed,
			ONUIndex:   n,
			Name:       name,
			Status:     onuStatus(phase),
			MAC:        macOfSerial(serialOf(rawSerial)),
			Signal:     int(math.Round(dBm * 10)),
		},
		phase: phase,
		dBm:   dBm,
	}, nil
}

var fiberNameRE = regexp.MustCompile(`^gpon(?:-olt)?_(\d+)/(\d+)/(\d+)$`)

// GetFibers implements types.OLTDriver.
func (o *OLT) GetFibers(ctx context.Context) ([]types.Fiber, error) {
	var fibers []types.Fiber
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		names, err := common.WalkStrings(ctx, s, common.OIDIfName)
		if err != nil {
			return err
		}
		serials, err := common.WalkStrings(ctx, s, OIDONUSerial)
		if err != nil {
			return err
		}
		phases, err := common.WalkInts(ctx, s, OIDONUPhaseState)
		if err != nil {
			return err
		}
		byFiber := make(map[int]*types.Fiber)
		for k, name := range names {
			if !fiberNameRE.MatchString(strings.TrimSpace(name)) {
				continue
			}
			ifIndex, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if _, _, err := codec.UnpackFiber(ifIndex); err != nil {
				continue
			}
			byFiber[ifIndex] = &types.Fiber{Index: ifIndex, Name: strings.TrimSpace(name)}
		}
		for k := range serials {
			packed, _, err := common.LastTwo(k)
			if err != nil {
				continue
			}
			f, ok := byFiber[packed]
			if !ok {
				continue
			}
			f.ONUCount++
			if phases[k] == PhaseWorking {
				f.ActiveCount++
			}
		}
		for _, f := range byFiber {
			fibers = append(fibers, *f)
		}
		sort.Slice(fibers, func(i, j int) bool { return fibers[i].Index < fibers[j].Index })
		return nil
	})
	return fibers, err
}

// GetPortsOnFiber implements types.OLTDriver. fiber is the packed index.
func (o *OLT) GetPortsOnFiber(ctx context.Context, fiber int) ([]types.FiberSlot, error) {
	if _, _, err := codec.UnpackFiber(fiber); err != nil {
		return nil, err
	}
	var slots []types.FiberSlot
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		name, err := common.GetString(ctx, s, common.OID(common.OIDIfName, fiber))
		if err != nil {
			return err
		}
		if name == "" {
			return types.Errorf(types.KindNotFound, "fiber %d not found", fiber)
		}
		serials, err := common.WalkStrings(ctx, s, common.OID(OIDONUSerial, fiber))
		if err != nil {
			return err
		}
		for _, k := range common.SortedIndexes(serials) {
			n, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			index := common.OID(strconv.Itoa(fiber), n)
			kind, err := common.GetString(ctx, s, OIDONUType+"."+index)
			if err != nil {
				return err
			}
			phase, err := s.Get(ctx, OIDONUPhaseState+"."+index)
			if err != nil {
				return err
			}
			rx, err := s.Get(ctx, RxPowerOID(index))
			if err != nil {
				return err
			}
			slots = append(slots, types.FiberSlot{
				ONUIndex: n,
				Type:     kind,
				Signal:   signalDBm(rx),
				Serial:   serialOf(serials[k]),
				Status:   onuStatus(phase),
			})
		}
		return nil
	})
	return slots, err
}

// GetUnitsUnregistered implements types.OLTDriver. Fiber 0 lists the units
// of every fiber.
func (o *OLT) GetUnitsUnregistered(ctx context.Context, fiber int) ([]types.UnregisteredUnit, error) {
	var units []types.UnregisteredUnit
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		serials, err := common.WalkStrings(ctx, s, OIDUncfgSerial)
		if err != nil {
			return err
		}
		firmware, err := common.WalkStrings(ctx, s, OIDUncfgFirmware)
		if err != nil {
			return err
		}
		for _, k := range common.SortedIndexes(serials) {
			packed, _, err := common.LastTwo(k)
			if err != nil || (fiber != 0 && packed != fiber) {
				continue
			}
			serial := serialOf(serials[k])
			if serial == "" {
				continue
			}
			units = append(units, types.UnregisteredUnit{
				Fiber:    packed,
				Serial:   serial,
				Firmware: strings.TrimSpace(firmware[k]),
				MAC:      macOfSerial(serial),
			})
		}
		return nil
	})
	return units, err
}

// AttachVLANsToUplink implements types.OLTDriver.
func (o *OLT) AttachVLANsToUplink(ctx context.Context, vlans []types.VLAN, uplink string) error {
	if uplink == "" {
		return types.Errorf(types.KindValidation, "uplink interface is required")
	}
	vids := make([]int, 0, len(vlans))
	for _, v := range vlans {
		if err := types.ValidateVID(v.VID); err != nil {
			return err
		}
		vids = append(vids, v.VID)
	}
	if len(vids) == 0 {
		return types.Errorf(types.KindValidation, "empty vlan set")
	}
	steps := []types.Step{
		{Line: "configure terminal", Expect: []string{PromptConfig}},
		{Line: "interface " + uplink, Expect: []string{PromptInterface}},
		{Line: "switchport vlan " + codec.FormatVIDRange(vids) + " tag", Expect: []string{PromptInterface}},
		{Line: "end", Expect: []string{PromptExec}},
	}
	return common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		return templates.Run(ctx, s, steps, CheckOutput)
	})
}

// RegisterONU implements types.OLTDriver. The unit is looked up in the
// unconfigured table by serial, bound to the first free index of its
// fiber and configured by the template. The locator is "<packed>.<onu>".
func (o *OLT) RegisterONU(ctx context.Context, req types.RegisterRequest) (string, error) {
	serial := strings.ToUpper(strings.TrimSpace(req.Serial))
	if err := codec.ValidateZTESerial(serial); err != nil {
		return "", err
	}
	if req.Template == nil {
		return "", types.Errorf(types.KindConfiguration, "template is required")
	}
	if req.ONUType == "" {
		return "", types.Errorf(types.KindConfiguration, "onu type is required")
	}
	if req.Template.AcceptsVLAN() {
		if _, _, err := templates.FlatVIDs(req.Config); err != nil {
			return "", err
		}
	}

	var locator string
	err := common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		if _, err := s.DoCmd(ctx, "show gpon onu uncfg", PromptExec); err != nil {
			return err
		}
		waiting, ok := ParseUncfg(s.LinesBefore())
		if !ok {
			return types.Errorf(types.KindNotFound, "onu %s is not waiting for configuration", serial)
		}
		var unit *UncfgUnit
		for i := range waiting {
			if waiting[i].Serial == serial {
				unit = &waiting[i]
				break
			}
		}
		if unit == nil {
			return types.Errorf(types.KindNotFound, "onu %s is not waiting for configuration", serial)
		}
		if req.Fiber != 0 {
			if packed, err := codec.PackFiber(unit.Rack, unit.Fiber); err != nil || packed != req.Fiber {
				return types.Errorf(types.KindValidation, "onu %s answers on %s, not on fiber %d", serial, OLTInterface(unit.Rack, unit.Fiber), req.Fiber)
			}
		}

		oltIf := OLTInterface(unit.Rack, unit.Fiber)
		if _, err := s.DoCmd(ctx, "show running-config interface "+oltIf, PromptExec); err != nil {
			return err
		}
		slot, err := FreeSlot(ParseONUIndexes(s.LinesBefore()), req.Slot)
		if err != nil {
			return err
		}
		loc := codec.Locator{Rack: unit.Rack, Fiber: unit.Fiber, ONU: slot}
		body, err := req.Template.Render(types.TemplateParams{
			Interface: ONUInterface(loc),
			Slot:      slot,
			ONUType:   req.ONUType,
			Serial:    serial,
			Name:      req.Name,
			Config:    req.Config,
		})
		if err != nil {
			return err
		}

		steps := []types.Step{
			{Line: "configure terminal", Expect: []string{PromptConfig}},
			{Line: "interface " + oltIf, Expect: []string{PromptInterface}},
		}
		steps = append(steps, body...)
		steps = append(steps, types.Step{Line: "end", Expect: []string{PromptExec}})
		if err := templates.Run(ctx, s, steps, CheckOutput); err != nil {
			return err
		}
		locator, err = codec.PackLocator(loc.Rack, loc.Fiber, loc.ONU)
		return err
	})
	if err != nil {
		return "", err
	}
	return locator, nil
}

// RemoveFromOLT implements types.OLTDriver.
func (o *OLT) RemoveFromOLT(ctx context.Context, locator string) error {
	loc, err := codec.ParseLocator(locator)
	if err != nil {
		return err
	}
	steps := []types.Step{
		{Line: "configure terminal", Expect: []string{PromptConfig}},
		{Line: "interface " + OLTInterface(loc.Rack, loc.Fiber), Expect: []string{PromptInterface}},
		{Line: "no onu " + strconv.Itoa(loc.ONU), Expect: []string{PromptInterface}},
		{Line: "end", Expect: []string{PromptExec}},
	}
	return common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		return templates.Run(ctx, s, steps, CheckOutput)
	})
}
