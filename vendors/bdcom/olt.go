// Package bdcom drives BDCOM EPON OLTs and the ONUs behind them.
package bdcom

import (
	"context"
	"sort"
	"strconv"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// Device type codes.
const (
	TypeP3310C  model.DeviceType = 2
	TypeEPONONU model.DeviceType = 3
)

func init() {
	registry.Register(registry.Entry{
		Code:        TypeP3310C,
		Description: "PON OLT BDCOM P3310C",
		Family:      types.FamilyOLT,
		New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
			return NewOLT(dev, t), nil
		},
	})
	registry.Register(registry.Entry{
		Code:        TypeEPONONU,
		Description: "PON ONU BDCOM",
		Family:      types.FamilyONU,
		Locator:     types.LocatorIfIndex,
		New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
			return NewONU(dev, t), nil
		},
	})
}

// OLT is a BDCOM P3310C. Fibers are numbered as in "EPON0/<fiber>".
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
	_, err := codec.ParseIfIndexLocator(locator)
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

// ponIf is an interface of the PON side: a fiber (ONU == 0) or an ONU.
type ponIf struct {
	IfIndex int
	Name    string
	Fiber   int
	ONU     int
}

// readPONIfs walks ifDescr and keeps the EPON interfaces in ifIndex order.
func readPONIfs(ctx context.Context, s types.SNMPSession) ([]ponIf, error) {
	descr, err := common.WalkStrings(ctx, s, common.OIDIfDescr)
	if err != nil {
		return nil, err
	}
	var out []ponIf
	for _, k := range common.SortedIndexes(descr) {
		fiber, onu, ok := ParseInterface(descr[k])
		if !ok {
			continue
		}
		ifIndex, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, ponIf{IfIndex: ifIndex, Name: descr[k], Fiber: fiber, ONU: onu})
	}
	return out, nil
}

func onuStatus(v interface{}) types.Status {
	n, ok := common.Int(v)
	switch {
	case !ok:
		return types.StatusUnknown
	case n == ONUStatusUp:
		return types.StatusOK
	}
	return types.StatusDown
}

// rxLevel returns the received level in 0.1 dBm, 0 when unreadable.
func rxLevel(v interface{}) int {
	n, ok := common.Int(v)
	if !ok || !common.IsValidSNMPValue(n) {
		return 0
	}
	return int(n)
}

func macOf(v interface{}) string {
	str, ok := common.String(v)
	if !ok {
		return ""
	}
	mac, err := codec.MACFromOctetString(str)
	if err != nil {
		return ""
	}
	return mac
}

// ScanONUList implements types.OLTDriver. The interface list is read up
// front for the total; ONU rows are read one by one as the consumer pulls.
func (o *OLT) ScanONUList(ctx context.Context) (*types.ONUStream, error) {
	s, err := o.t.SNMP(ctx, o.dev)
	if err != nil {
		return nil, err
	}
	ifs, err := readPONIfs(ctx, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	var onus []ponIf
	for _, p := range ifs {
		if p.ONU > 0 {
			onus = append(onus, p)
		}
	}
	return types.NewONUStream(ctx, len(onus), types.DefaultChunkSize, func(ctx context.Context, yield func(types.ONU) error) error {
		defer s.Close()
		for _, p := range onus {
			onu, err := o.readONU(ctx, s, p)
			if err != nil {
				return err
			}
			if err := yield(onu); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (o *OLT) readONU(ctx context.Context, s types.SNMPSession, p ponIf) (types.ONU, error) {
	mac, err := s.Get(ctx, common.OID(OIDONUMAC, p.IfIndex))
	if err != nil {
		return types.ONU{}, err
	}
	status, err := s.Get(ctx, common.OID(OIDONUStatus, p.IfIndex))
	if err != nil {
		return types.ONU{}, err
	}
	rx, err := s.Get(ctx, common.OID(OIDONURxPower, p.IfIndex))
	if err != nil {
		return types.ONU{}, err
	}
	name, err := common.GetString(ctx, s, common.OID(common.OIDIfAlias, p.IfIndex))
	if err != nil {
		return types.ONU{}, err
	}
	return types.ONU{
		FiberIndex: p.Fiber,
		ONUIndex:   p.ONU,
		Name:       name,
		Status:     onuStatus(status),
		MAC:        macOf(mac),
		Signal:     rxLevel(rx),
	}, nil
}

// GetFibers implements types.OLTDriver.
func (o *OLT) GetFibers(ctx context.Context) ([]types.Fiber, error) {
	var fibers []types.Fiber
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		ifs, err := readPONIfs(ctx, s)
		if err != nil {
			return err
		}
		status, err := common.WalkInts(ctx, s, OIDONUStatus)
		if err != nil {
			return err
		}
		byFiber := make(map[int]*types.Fiber)
		for _, p := range ifs {
			if p.ONU == 0 {
				byFiber[p.Fiber] = &types.Fiber{Index: p.Fiber, Name: p.Name}
			}
		}
		for _, p := range ifs {
			f, ok := byFiber[p.Fiber]
			if p.ONU == 0 || !ok {
				continue
			}
			f.ONUCount++
			if status[strconv.Itoa(p.IfIndex)] == ONUStatusUp {
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

// GetPortsOnFiber implements types.OLTDriver.
func (o *OLT) GetPortsOnFiber(ctx context.Context, fiber int) ([]types.FiberSlot, error) {
	var slots []types.FiberSlot
	err := common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		ifs, err := readPONIfs(ctx, s)
		if err != nil {
			return err
		}
		found := false
		for _, p := range ifs {
			if p.Fiber != fiber {
				continue
			}
			if p.ONU == 0 {
				found = true
				continue
			}
			onu, err := o.readONU(ctx, s, p)
			if err != nil {
				return err
			}
			kind, err := common.GetString(ctx, s, common.OID(OIDONUModel, p.IfIndex))
			if err != nil {
				return err
			}
			if kind == "" {
				kind = "EPON"
			}
			slots = append(slots, types.FiberSlot{
				ONUIndex: p.ONU,
				Type:     kind,
				Signal:   float64(onu.Signal) / 10,
				Serial:   onu.MAC,
				Status:   onu.Status,
			})
		}
		if !found {
			return types.Errorf(types.KindNotFound, "fiber %s not found", FiberInterface(fiber))
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
		var err error
		units, err = o.unregistered(ctx, s, fiber)
		return err
	})
	return units, err
}

func (o *OLT) unregistered(ctx context.Context, s types.SNMPSession, fiber int) ([]types.UnregisteredUnit, error) {
	ifs, err := readPONIfs(ctx, s)
	if err != nil {
		return nil, err
	}
	fiberOf := make(map[int]int)
	for _, p := range ifs {
		if p.ONU == 0 {
			fiberOf[p.IfIndex] = p.Fiber
		}
	}
	macs, err := common.WalkStrings(ctx, s, OIDInactiveONUMAC)
	if err != nil {
		return nil, err
	}
	firmware, err := common.WalkStrings(ctx, s, OIDInactiveONUFirmware)
	if err != nil {
		return nil, err
	}
	var units []types.UnregisteredUnit
	for _, k := range common.SortedIndexes(macs) {
		parts, err := common.IndexParts(k)
		if err != nil || len(parts) != 2 {
			continue
		}
		f, ok := fiberOf[parts[0]]
		if !ok || (fiber != 0 && f != fiber) {
			continue
		}
		mac, err := codec.MACFromOctetString(macs[k])
		if err != nil {
			continue
		}
		units = append(units, types.UnregisteredUnit{Fiber: f, Serial: mac, MAC: mac, Firmware: firmware[k]})
	}
	return units, nil
}

// findBound returns the ONU interface whose MAC is mac.
func findBound(ctx context.Context, s types.SNMPSession, ifs []ponIf, mac string) (ponIf, bool, error) {
	macs, err := common.WalkStrings(ctx, s, OIDONUMAC)
	if err != nil {
		return ponIf{}, false, err
	}
	for _, p := range ifs {
		if p.ONU == 0 {
			continue
		}
		if got, err := codec.MACFromOctetString(macs[strconv.Itoa(p.IfIndex)]); err == nil && got == mac {
			return p, true, nil
		}
	}
	return ponIf{}, false, nil
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
		{Line: "config", Expect: []string{PromptConfig}},
		{Line: "interface " + uplink, Expect: []string{InterfacePrompt(uplink)}},
		{Line: "switchport trunk vlan-allowed add " + codec.FormatVIDRange(vids), Expect: []string{InterfacePrompt(uplink)}},
		{Line: "exit", Expect: []string{PromptConfig}},
		{Line: "exit", Expect: []string{PromptExec}},
	}
	return common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		return templates.Run(ctx, s, steps, CheckOutput)
	})
}

// RegisterONU implements types.OLTDriver. req.Serial is the ONU MAC. An
// ONU already bound on the OLT is configured in place; otherwise it is
// bound to req.Slot, or the first free slot, on its fiber. The locator is
// the ifIndex of the ONU interface.
func (o *OLT) RegisterONU(ctx context.Context, req types.RegisterRequest) (string, error) {
	mac, err := codec.ParseMAC(req.Serial)
	if err != nil {
		return "", err
	}
	if req.Template == nil {
		return "", types.Errorf(types.KindConfiguration, "template is required")
	}

	var (
		fiber, slot int
		bound       bool
	)
	err = common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		ifs, err := readPONIfs(ctx, s)
		if err != nil {
			return err
		}
		p, ok, err := findBound(ctx, s, ifs, mac)
		if err != nil {
			return err
		}
		if ok {
			fiber, slot, bound = p.Fiber, p.ONU, true
			return nil
		}
		fiber = req.Fiber
		if fiber == 0 {
			units, err := o.unregistered(ctx, s, 0)
			if err != nil {
				return err
			}
			for _, u := range units {
				if u.MAC == mac {
					fiber = u.Fiber
					break
				}
			}
			if fiber == 0 {
				return types.Errorf(types.KindNotFound, "onu %s is not seen by the olt", mac)
			}
		}
		slot, err = freeSlot(ifs, fiber, req.Slot)
		return err
	})
	if err != nil {
		return "", err
	}

	iface := ONUInterface(fiber, slot)
	body, err := req.Template.Render(types.TemplateParams{
		Interface: iface,
		Slot:      slot,
		ONUType:   req.ONUType,
		Serial:    mac,
		Name:      req.Name,
		Config:    req.Config,
	})
	if err != nil {
		return "", err
	}

	var steps []types.Step
	steps = append(steps, types.Step{Line: "config", Expect: []string{PromptConfig}})
	if !bound {
		dotted, err := codec.FormatMACDotted(mac)
		if err != nil {
			return "", err
		}
		fiberIf := FiberInterface(fiber)
		steps = append(steps,
			types.Step{Line: "interface " + fiberIf, Expect: []string{InterfacePrompt(fiberIf)}},
			types.Step{Line: "epon bind-onu mac " + dotted + " " + strconv.Itoa(slot), Expect: []string{InterfacePrompt(fiberIf)}},
			types.Step{Line: "exit", Expect: []string{PromptConfig}},
		)
	}
	steps = append(steps, body...)
	steps = append(steps, types.Step{Line: "exit", Expect: []string{PromptExec}})

	err = common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		return templates.Run(ctx, s, steps, CheckOutput)
	})
	if err != nil {
		return "", err
	}

	var locator string
	err = common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		ifs, err := readPONIfs(ctx, s)
		if err != nil {
			return err
		}
		for _, p := range ifs {
			if p.Fiber == fiber && p.ONU == slot {
				locator = strconv.Itoa(p.IfIndex)
				return nil
			}
		}
		return types.Errorf(types.KindNotFound, "%s was bound but the olt does not report it", iface)
	})
	return locator, err
}

// freeSlot returns want when it is free, or the lowest free slot when want is 0.
func freeSlot(ifs []ponIf, fiber, want int) (int, error) {
	used := make(map[int]bool)
	known := false
	for _, p := range ifs {
		if p.Fiber != fiber {
			continue
		}
		known = true
		if p.ONU > 0 {
			used[p.ONU] = true
		}
	}
	if !known {
		return 0, types.Errorf(types.KindNotFound, "fiber %s not found", FiberInterface(fiber))
	}
	if want != 0 {
		if want < 1 || want > MaxONUSlot {
			return 0, types.Errorf(types.KindValidation, "slot %d out of range [1, %d]", want, MaxONUSlot)
		}
		if used[want] {
			return 0, types.Errorf(types.KindValidation, "slot %d on %s is taken", want, FiberInterface(fiber))
		}
		return want, nil
	}
	for n := 1; n <= MaxONUSlot; n++ {
		if !used[n] {
			return n, nil
		}
	}
	return 0, types.Errorf(types.KindFiberFull, "no free slot on %s", FiberInterface(fiber))
}

// RemoveFromOLT implements types.OLTDriver. locator is the ONU ifIndex.
func (o *OLT) RemoveFromOLT(ctx context.Context, locator string) error {
	ifIndex, err := codec.ParseIfIndexLocator(locator)
	if err != nil {
		return err
	}
	var fiber, slot int
	err = common.WithSNMP(ctx, o.t, o.dev, func(s types.SNMPSession) error {
		name, err := common.GetString(ctx, s, common.OID(common.OIDIfDescr, ifIndex))
		if err != nil {
			return err
		}
		f, n, ok := ParseInterface(name)
		if !ok || n == 0 {
			return types.Errorf(types.KindNotFound, "ifIndex %d is not an onu interface", ifIndex)
		}
		fiber, slot = f, n
		return nil
	})
	if err != nil {
		return err
	}
	fiberIf := FiberInterface(fiber)
	steps := []types.Step{
		{Line: "config", Expect: []string{PromptConfig}},
		{Line: "interface " + fiberIf, Expect: []string{InterfacePrompt(fiberIf)}},
		{Line: "no epon bind-onu sequence " + strconv.Itoa(slot), Expect: []string{InterfacePrompt(fiberIf)}},
		{Line: "exit", Expect: []string{PromptConfig}},
		{Line: "exit", Expect: []string{PromptExec}},
	}
	return common.WithCLI(ctx, o.t, o.dev, CLIProfile, func(s types.CLISession) error {
		return templates.Run(ctx, s, steps, CheckOutput)
	})
}
