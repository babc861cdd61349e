package common

import (
	"context"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// BridgeSwitch implements types.SwitchDriver for agents that expose the
// IF-MIB, BRIDGE-MIB and Q-BRIDGE-MIB. Vendor drivers embed it and
// override what their agent does differently.
type BridgeSwitch struct {
	Dev       *model.Device
	Transport types.Transport

	// Ports is the number of front-panel ports
	Ports int

	// Bridge writes VLAN membership
	Bridge QBridge

	// Status derives the port status from the IF-MIB columns
	Status StatusRule

	// IfIndexes returns the ifIndex of every front port in display order.
	// Nil means port n is ifIndex n.
	IfIndexes func(ctx context.Context, s types.SNMPSession) ([]int, error)

	// BridgePort maps display port n to its bridge port number, the bit
	// position in membership bitmaps and the value of FDB rows. Nil means n.
	BridgePort func(n int) int

	// Save, when set, is written before a reboot that saves the configuration
	Save *types.SNMPVar

	// Restart is the variable that reboots the switch
	Restart types.SNMPVar

	// HostTemplate is the monitoring "use" line
	HostTemplate string
}

var _ types.SwitchDriver = (*BridgeSwitch)(nil)

// Family implements types.Driver.
func (b *BridgeSwitch) Family() types.Family { return types.FamilySwitch }

// Device implements types.Driver.
func (b *BridgeSwitch) Device() *model.Device { return b.Dev }

// PortsLen implements types.SwitchDriver.
func (b *BridgeSwitch) PortsLen() int { return b.Ports }

// WithSNMP opens a session for the duration of fn.
func (b *BridgeSwitch) WithSNMP(ctx context.Context, fn func(s types.SNMPSession) error) error {
	return WithSNMP(ctx, b.Transport, b.Dev, fn)
}

// Identity implements types.Identifier.
func (b *BridgeSwitch) Identity(ctx context.Context) (*types.Identity, error) {
	var id *types.Identity
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		var err error
		id, err = ReadIdentity(ctx, s)
		return err
	})
	return id, err
}

// MonitoringTemplate implements types.Identifier.
func (b *BridgeSwitch) MonitoringTemplate() string {
	use := b.HostTemplate
	if use == "" {
		use = HostTemplateSwitch
	}
	return MonitoringHost(b.Dev, use)
}

func (b *BridgeSwitch) ifIndexes(ctx context.Context, s types.SNMPSession) ([]int, error) {
	if b.IfIndexes == nil {
		return SequentialIfIndexes(b.Ports), nil
	}
	idx, err := b.IfIndexes(ctx, s)
	if err != nil {
		return nil, err
	}
	if len(idx) > b.Ports {
		idx = idx[:b.Ports]
	}
	return idx, nil
}

// IfIndex returns the ifIndex of display port n.
func (b *BridgeSwitch) IfIndex(ctx context.Context, s types.SNMPSession, n int) (int, error) {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return 0, err
	}
	idx, err := b.ifIndexes(ctx, s)
	if err != nil {
		return 0, err
	}
	if n > len(idx) {
		return 0, types.Errorf(types.KindValidation, "port %d is not reported by the agent", n)
	}
	return idx[n-1], nil
}

func (b *BridgeSwitch) bridgePort(n int) int {
	if b.BridgePort == nil {
		return n
	}
	return b.BridgePort(n)
}

// GetPorts implements types.SwitchDriver.
func (b *BridgeSwitch) GetPorts(ctx context.Context) ([]types.Port, error) {
	rule := b.Status
	if rule == nil {
		rule = OperUp
	}
	var ports []types.Port
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		idx, err := b.ifIndexes(ctx, s)
		if err != nil {
			return err
		}
		ports, err = ReadPorts(ctx, s, idx, rule)
		return err
	})
	return ports, err
}

// PortEnable implements types.SwitchDriver.
func (b *BridgeSwitch) PortEnable(ctx context.Context, n int) error {
	return b.setPort(ctx, n, true)
}

// PortDisable implements types.SwitchDriver.
func (b *BridgeSwitch) PortDisable(ctx context.Context, n int) error {
	return b.setPort(ctx, n, false)
}

func (b *BridgeSwitch) setPort(ctx context.Context, n int, up bool) error {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return err
	}
	return b.WithSNMP(ctx, func(s types.SNMPSession) error {
		ifIndex, err := b.IfIndex(ctx, s, n)
		if err != nil {
			return err
		}
		return SetAdminStatus(ctx, s, ifIndex, up)
	})
}

// ReadPortVLANInfo implements types.SwitchDriver.
func (b *BridgeSwitch) ReadPortVLANInfo(ctx context.Context, n int) ([]types.VLAN, error) {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return nil, err
	}
	var vlans []types.VLAN
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		var err error
		vlans, err = b.Bridge.PortVLANs(ctx, s, b.bridgePort(n))
		return err
	})
	return vlans, err
}

// ReadAllVLANInfo implements types.SwitchDriver.
func (b *BridgeSwitch) ReadAllVLANInfo(ctx context.Context) ([]types.VLAN, error) {
	var vlans []types.VLAN
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		var err error
		vlans, err = b.Bridge.AllVLANs(ctx, s)
		return err
	})
	return vlans, err
}

// ReadMACAddressPort implements types.SwitchDriver.
func (b *BridgeSwitch) ReadMACAddressPort(ctx context.Context, n int) ([]types.MACEntry, error) {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return nil, err
	}
	var entries []types.MACEntry
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		all, err := ReadFDB(ctx, s, 0)
		if err != nil {
			return err
		}
		entries = FilterFDBPort(all, b.bridgePort(n), n)
		return nil
	})
	return entries, err
}

// ReadMACAddressVLAN implements types.SwitchDriver. Ports of the returned
// entries are display numbers; rows learned on other bridge ports keep 0.
func (b *BridgeSwitch) ReadMACAddressVLAN(ctx context.Context, vid int) ([]types.MACEntry, error) {
	if err := types.ValidateVID(vid); err != nil {
		return nil, err
	}
	var entries []types.MACEntry
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		rows, err := ReadFDB(ctx, s, vid)
		if err != nil {
			return err
		}
		display := make(map[int]int, b.Ports)
		for n := 1; n <= b.Ports; n++ {
			display[b.bridgePort(n)] = n
		}
		for _, e := range rows {
			e.Port = display[e.Port]
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// CreateVLANs implements types.SwitchDriver.
func (b *BridgeSwitch) CreateVLANs(ctx context.Context, vlans []types.VLAN) error {
	return b.WithSNMP(ctx, func(s types.SNMPSession) error {
		return b.Bridge.CreateVLANs(ctx, s, vlans)
	})
}

// DeleteVLANs implements types.SwitchDriver.
func (b *BridgeSwitch) DeleteVLANs(ctx context.Context, vlans []types.VLAN) error {
	return b.WithSNMP(ctx, func(s types.SNMPSession) error {
		return b.Bridge.DeleteVLANs(ctx, s, vlans)
	})
}

// AttachVLANsToPort implements types.SwitchDriver.
func (b *BridgeSwitch) AttachVLANsToPort(ctx context.Context, vlans []types.VLAN, n int, mode types.PortMode) error {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return err
	}
	return b.WithSNMP(ctx, func(s types.SNMPSession) error {
		return b.Bridge.Attach(ctx, s, vlans, b.bridgePort(n), mode)
	})
}

// DetachVLANFromPort implements types.SwitchDriver.
func (b *BridgeSwitch) DetachVLANFromPort(ctx context.Context, vid, n int) error {
	if err := types.ValidatePort(n, b.Ports); err != nil {
		return err
	}
	return b.WithSNMP(ctx, func(s types.SNMPSession) error {
		return b.Bridge.Detach(ctx, s, vid, b.bridgePort(n))
	})
}

// Reboot implements types.SwitchDriver. Agents often restart before they
// answer the request, so a timeout on the restart write counts as success.
func (b *BridgeSwitch) Reboot(ctx context.Context, saveBefore bool) (*types.RebootResult, error) {
	if b.Restart.OID == "" {
		return nil, types.Errorf(types.KindCapabilityMismatch, "%s cannot be rebooted over snmp", b.Dev)
	}
	var res *types.RebootResult
	err := b.WithSNMP(ctx, func(s types.SNMPSession) error {
		if saveBefore && b.Save != nil {
			if err := s.SetMulti(ctx, []types.SNMPVar{*b.Save}); err != nil {
				return types.Wrap(types.KindConfiguration, err, "save configuration")
			}
		}
		err := s.SetMulti(ctx, []types.SNMPVar{b.Restart})
		switch types.KindOf(err) {
		case types.KindUnknown:
			if err != nil {
				return err
			}
			res = &types.RebootResult{Code: 0, Message: "reboot accepted"}
		case types.KindTimeout:
			res = &types.RebootResult{Code: 0, Message: "no reply, device is restarting"}
		default:
			return err
		}
		return nil
	})
	return res, err
}
