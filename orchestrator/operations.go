package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
)

// operation is one entry of the operation table.
type operation struct {
	family types.Family

	// locked operations hold the device lock. ONU operations lock their
	// parent OLT.
	locked bool

	// registered operations refuse records without a locator
	registered bool

	run func(ctx context.Context, c *call) (interface{}, error)
}

var operations = map[types.Family]map[string]operation{}

func define(family types.Family, name string, op operation) {
	op.family = family
	if operations[family] == nil {
		operations[family] = make(map[string]operation)
	}
	operations[family][name] = op
}

func lookupOperation(family types.Family, name string) (operation, error) {
	ops, ok := operations[family]
	if !ok {
		return operation{}, types.Errorf(types.KindCapabilityMismatch, "unknown capability %q", family)
	}
	op, ok := ops[name]
	if !ok {
		return operation{}, types.Errorf(types.KindCapabilityMismatch, "%s has no operation %q", family, name)
	}
	return op, nil
}

// Operations lists the operation names of a capability.
func Operations(family types.Family) []string {
	out := make([]string, 0, len(operations[family]))
	for name := range operations[family] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func okResult() map[string]interface{} {
	return map[string]interface{}{"ok": true}
}

func init() {
	defineSwitch()
	defineOLT()
	defineONU()
}

func (c *call) switchDriver() (types.SwitchDriver, error) { return registry.AsSwitch(c.drv) }
func (c *call) oltDriver() (types.OLTDriver, error)       { return registry.AsOLT(c.drv) }
func (c *call) onuDriver() (types.ONUDriver, error)       { return registry.AsONU(c.drv) }

func identifier(c *call) (types.Identifier, error) {
	id, isIdentifier := c.drv.(types.Identifier)
	if !isIdentifier {
		return nil, types.Errorf(types.KindCapabilityMismatch, "%s cannot be identified", c.dev)
	}
	return id, nil
}

func identity(ctx context.Context, c *call) (interface{}, error) {
	id, err := identifier(c)
	if err != nil {
		return nil, err
	}
	return id.Identity(ctx)
}

func monitoringTemplate(_ context.Context, c *call) (interface{}, error) {
	id, err := identifier(c)
	if err != nil {
		return nil, err
	}
	return id.MonitoringTemplate(), nil
}

// switchOp adapts a function of the switch driver.
func switchOp(fn func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error)) func(context.Context, *call) (interface{}, error) {
	return func(ctx context.Context, c *call) (interface{}, error) {
		d, err := c.switchDriver()
		if err != nil {
			return nil, err
		}
		return fn(ctx, d, c.args)
	}
}

func defineSwitch() {
	f := types.FamilySwitch
	define(f, "identity", operation{run: identity})
	define(f, "monitoring_template", operation{run: monitoringTemplate})
	define(f, "get_ports", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, _ Args) (interface{}, error) {
		return d.GetPorts(ctx)
	})})
	define(f, "port_enable", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		if err := d.PortEnable(ctx, port); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "port_disable", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		if err := d.PortDisable(ctx, port); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "read_port_vlan_info", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		return d.ReadPortVLANInfo(ctx, port)
	})})
	define(f, "read_all_vlan_info", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, _ Args) (interface{}, error) {
		return d.ReadAllVLANInfo(ctx)
	})})
	define(f, "read_mac_address_port", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		return d.ReadMACAddressPort(ctx, port)
	})})
	define(f, "read_mac_address_vlan", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		vid, err := a.Int("vid")
		if err != nil {
			return nil, err
		}
		return d.ReadMACAddressVLAN(ctx, vid)
	})})
	define(f, "create_vlans", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		vlans, err := a.VLANs("vlans")
		if err != nil {
			return nil, err
		}
		if err := d.CreateVLANs(ctx, vlans); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "delete_vlans", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		vlans, err := a.VLANs("vlans")
		if err != nil {
			return nil, err
		}
		if err := d.DeleteVLANs(ctx, vlans); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "attach_vlans_to_port", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		vlans, err := a.VLANs("vlans")
		if err != nil {
			return nil, err
		}
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		raw, err := a.OptString("mode", "")
		if err != nil {
			return nil, err
		}
		mode, err := types.ParsePortMode(raw)
		if err != nil {
			return nil, err
		}
		if err := d.AttachVLANsToPort(ctx, vlans, port, mode); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "detach_vlan_from_port", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		vid, err := a.Int("vid")
		if err != nil {
			return nil, err
		}
		port, err := a.Int("port")
		if err != nil {
			return nil, err
		}
		if err := d.DetachVLANFromPort(ctx, vid, port); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "reboot", operation{run: switchOp(func(ctx context.Context, d types.SwitchDriver, a Args) (interface{}, error) {
		save, err := a.OptBool("save_before", false)
		if err != nil {
			return nil, err
		}
		return d.Reboot(ctx, save)
	})})
}

// oltOp adapts a function of the OLT driver.
func oltOp(fn func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error)) func(context.Context, *call) (interface{}, error) {
	return func(ctx context.Context, c *call) (interface{}, error) {
		d, err := c.oltDriver()
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, d)
	}
}

func defineOLT() {
	f := types.FamilyOLT
	define(f, "identity", operation{run: identity})
	define(f, "monitoring_template", operation{run: monitoringTemplate})
	define(f, "scan_onu_list", operation{run: oltOp(func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
		stream, err := d.ScanONUList(ctx)
		if err != nil {
			return nil, err
		}
		if c.o.chunkSize > 0 {
			stream.ChunkSize = c.o.chunkSize
		}
		return stream, nil
	})})
	define(f, "get_fibers", operation{run: oltOp(func(ctx context.Context, _ *call, d types.OLTDriver) (interface{}, error) {
		return d.GetFibers(ctx)
	})})
	define(f, "get_ports_on_fiber", operation{locked: true, run: oltOp(func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
		fiber, err := c.args.Int("fiber")
		if err != nil {
			return nil, err
		}
		return d.GetPortsOnFiber(ctx, fiber)
	})})
	define(f, "get_units_unregistered", operation{run: oltOp(func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
		fiber, err := c.args.Int("fiber")
		if err != nil {
			return nil, err
		}
		return d.GetUnitsUnregistered(ctx, fiber)
	})})
	define(f, "attach_vlans_to_uplink", operation{locked: true, run: oltOp(func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
		vlans, err := c.args.VLANs("vlans")
		if err != nil {
			return nil, err
		}
		uplink, err := c.args.String("uplink")
		if err != nil {
			return nil, err
		}
		if err := d.AttachVLANsToUplink(ctx, vlans, uplink); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
	define(f, "register_onu_on_fiber", operation{locked: true, run: oltOp(registerOnFiber)})
	define(f, "remove_from_olt", operation{locked: true, run: oltOp(func(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
		id, err := c.args.Int("onu_id")
		if err != nil {
			return nil, err
		}
		onu, err := c.o.load(ctx, int64(id))
		if err != nil {
			return nil, err
		}
		if onu.ParentID != c.dev.ID {
			return nil, types.Errorf(types.KindValidation, "%s is not attached to %s", onu, c.dev)
		}
		if !onu.Registered() {
			return nil, types.Errorf(types.KindNotRegistered, "%s has no locator", onu)
		}
		if err := c.remove(ctx, onu, onu.SNMPExtra, d); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
}

// registerOnFiber binds an ONU on the OLT. With onu_id the ONU record goes
// through the registration lifecycle and receives the new locator.
func registerOnFiber(ctx context.Context, c *call, d types.OLTDriver) (interface{}, error) {
	a := c.args
	serial, err := a.String("serial")
	if err != nil {
		return nil, err
	}
	onuType, err := a.String("onu_type")
	if err != nil {
		return nil, err
	}
	code, err := a.String("template")
	if err != nil {
		return nil, err
	}
	tmpl, err := c.o.template(code)
	if err != nil {
		return nil, err
	}
	var cfg []types.PortVLANConfig
	if tmpl.AcceptsVLAN() {
		if cfg, err = a.VLANConfig("vlan_config"); err != nil {
			return nil, err
		}
	}
	fiber, err := a.OptInt("fiber", 0)
	if err != nil {
		return nil, err
	}
	slot, err := a.OptInt("slot", 0)
	if err != nil {
		return nil, err
	}
	name, err := a.OptString("name", "")
	if err != nil {
		return nil, err
	}
	onuID, err := a.OptInt("onu_id", 0)
	if err != nil {
		return nil, err
	}
	req := types.RegisterRequest{
		Fiber:    fiber,
		Slot:     slot,
		ONUType:  onuType,
		Serial:   serial,
		Name:     name,
		Template: tmpl,
		Config:   cfg,
	}

	if onuID == 0 {
		locator, err := d.RegisterONU(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"snmp_extra": locator}, nil
	}

	onu, err := c.o.load(ctx, int64(onuID))
	if err != nil {
		return nil, err
	}
	if onu.ParentID != c.dev.ID {
		return nil, types.Errorf(types.KindValidation, "%s is not attached to %s", onu, c.dev)
	}
	if !tmpl.ValidFor(onu.Type) {
		return nil, types.Errorf(types.KindConfiguration, "template %s is not valid for device type %d", tmpl.ShortCode(), onu.Type)
	}
	locator, err := c.register(ctx, onu, onu.SNMPExtra, func() (string, error) {
		return d.RegisterONU(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"snmp_extra": locator}, nil
}

// register runs bind through the registration lifecycle of onu and
// persists the locator it returns. seen is the locator read at the start
// of the call.
func (c *call) register(ctx context.Context, onu *model.Device, seen string, bind func() (string, error)) (string, error) {
	log := c.log.WithField("onu", onu.String())
	lc := newLifecycle(onu, log)
	var locator string
	err := lc.run(ctx, EventRegister, EventRegistered, EventRegisterFailed, func() error {
		var err error
		if locator, err = bind(); err != nil {
			return err
		}
		return c.o.persist(ctx, onu, seen, locator)
	})
	if err != nil {
		if lc.State() == StateUnregistered {
			log.WithError(err).Warn("registration failed, onu stays unregistered")
		}
		return "", err
	}
	log.WithField("snmp_extra", locator).Info("onu registered")
	c.o.notify(ctx, log, fmt.Sprintf("%s registered as %s", onu, locator))
	return locator, nil
}

// remove unbinds a registered onu through the removal lifecycle and clears
// its locator.
func (c *call) remove(ctx context.Context, onu *model.Device, seen string, d types.OLTDriver) error {
	log := c.log.WithField("onu", onu.String())
	lc := newLifecycle(onu, log)
	err := lc.run(ctx, EventRemove, EventRemoved, EventRemoveFailed, func() error {
		if err := d.RemoveFromOLT(ctx, onu.SNMPExtra); err != nil {
			return err
		}
		return c.o.persist(ctx, onu, seen, "")
	})
	if err != nil {
		if lc.State() == StateRegistered {
			log.WithError(err).Warn("removal failed, onu stays registered")
		}
		return err
	}
	log.Info("onu removed")
	c.o.notify(ctx, log, fmt.Sprintf("%s removed from %s", onu, onu.Parent))
	return nil
}

// onuOp adapts a function of the ONU driver.
func onuOp(fn func(ctx context.Context, c *call, d types.ONUDriver) (interface{}, error)) func(context.Context, *call) (interface{}, error) {
	return func(ctx context.Context, c *call) (interface{}, error) {
		d, err := c.onuDriver()
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, d)
	}
}

func defineONU() {
	f := types.FamilyONU
	define(f, "get_details", operation{registered: true, run: onuOp(func(ctx context.Context, _ *call, d types.ONUDriver) (interface{}, error) {
		return d.GetDetails(ctx)
	})})
	define(f, "read_onu_vlan_info", operation{run: onuOp(func(ctx context.Context, c *call, d types.ONUDriver) (interface{}, error) {
		if !c.dev.Registered() {
			return d.DefaultVLANInfo(), nil
		}
		return d.ReadONUVLANInfo(ctx)
	})})
	define(f, "default_vlan_info", operation{run: onuOp(func(_ context.Context, _ *call, d types.ONUDriver) (interface{}, error) {
		return d.DefaultVLANInfo(), nil
	})})
	define(f, "onu_find_sn_by_mac", operation{run: onuOp(func(ctx context.Context, c *call, d types.ONUDriver) (interface{}, error) {
		res, err := d.FindSNByMAC(ctx)
		if err != nil {
			return nil, err
		}
		if res.Found() && res.Locator != c.seen {
			if err := c.o.persist(ctx, c.dev, c.seen, res.Locator); err != nil {
				return nil, err
			}
			c.log.WithField("snmp_extra", res.Locator).Info("onu locator fixed")
		}
		return res, nil
	})})
	define(f, "apply_onu_config", operation{locked: true, run: onuOp(applyONUConfig)})
	define(f, "remove_from_olt", operation{locked: true, registered: true, run: onuOp(func(ctx context.Context, c *call, _ types.ONUDriver) (interface{}, error) {
		olt, err := c.parentOLT()
		if err != nil {
			return nil, err
		}
		if err := c.remove(ctx, c.dev, c.seen, olt); err != nil {
			return nil, err
		}
		return okResult(), nil
	})})
}

// applyONUConfig pushes a template through the parent OLT. An ONU without
// a locator goes through the registration lifecycle.
func applyONUConfig(ctx context.Context, c *call, d types.ONUDriver) (interface{}, error) {
	code, err := c.args.String("template")
	if err != nil {
		return nil, err
	}
	tmpl, err := c.o.template(code)
	if err != nil {
		return nil, err
	}
	var cfg []types.PortVLANConfig
	if tmpl.AcceptsVLAN() {
		if cfg, err = c.args.VLANConfig("vlan_config"); err != nil {
			return nil, err
		}
	}
	apply := func() (string, error) {
		return d.ApplyONUConfig(ctx, tmpl, cfg)
	}

	var locator string
	if c.dev.Registered() {
		if locator, err = apply(); err != nil {
			return nil, err
		}
		if locator != c.seen {
			if err := c.o.persist(ctx, c.dev, c.seen, locator); err != nil {
				return nil, err
			}
		}
	} else if locator, err = c.register(ctx, c.dev, c.seen, apply); err != nil {
		return nil, err
	}
	return map[string]interface{}{"snmp_extra": locator}, nil
}
