// Package eltex drives Eltex MES access switches over SNMP.
package eltex

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// TypeMES is the device type code of Eltex MES switches.
const TypeMES model.DeviceType = 4

// Profile is the constant description of the switch.
type Profile struct {
	// Ports is the number of access ports
	Ports int

	// Uplinks is the number of interfaces numbered before the access ports
	Uplinks int
}

// DefaultProfile describes the 24-port MES access switch.
var DefaultProfile = Profile{Ports: 24, Uplinks: 4}

func init() {
	registry.Register(registry.Entry{
		Code:        TypeMES,
		Description: "Eltex switch",
		Family:      types.FamilySwitch,
		New: func(dev *model.Device, t types.Transport) (types.Driver, error) {
			return New(dev, t, DefaultProfile), nil
		},
	})
}

// Switch is an Eltex MES switch. Port membership lives in the vendor
// per-port tables; VLAN rows and the FDB use the Q-BRIDGE-MIB.
type Switch struct {
	*common.BridgeSwitch
	Profile Profile
}

var _ types.SwitchDriver = (*Switch)(nil)

// New builds the driver for dev.
func New(dev *model.Device, t types.Transport, p Profile) *Switch {
	sw := &Switch{Profile: p}
	sw.BridgeSwitch = &common.BridgeSwitch{
		Dev:       dev,
		Transport: t,
		Ports:     p.Ports,
		Bridge:    common.QBridge{Width: codec.BitmapWidth64},
		Status:    common.OperUp,
		IfIndexes: func(ctx context.Context, s types.SNMPSession) ([]int, error) {
			idx := make([]int, p.Ports)
			for i := range idx {
				idx[i] = sw.PortIndex(i + 1)
			}
			return idx, nil
		},
		BridgePort: sw.PortIndex,
		Restart:    types.SNMPVar{OID: OIDRlReboot, Type: types.SNMPInteger, Value: RebootValue},
	}
	return sw
}

// PortIndex returns the ifIndex of access port n.
func (sw *Switch) PortIndex(n int) int {
	return n + sw.Profile.Uplinks
}

// portTables reads the four egress and four untagged lists of a port.
func (sw *Switch) portTables(ctx context.Context, s types.SNMPSession, ifIndex int) (egress, untagged map[int][]byte, err error) {
	egress = make(map[int][]byte, codec.EltexTableCount)
	untagged = make(map[int][]byte, codec.EltexTableCount)
	for t := 0; t < codec.EltexTableCount; t++ {
		e, err := common.GetString(ctx, s, EgressOID(t, ifIndex))
		if err != nil {
			return nil, nil, err
		}
		u, err := common.GetString(ctx, s, UntaggedOID(t, ifIndex))
		if err != nil {
			return nil, nil, err
		}
		egress[t] = []byte(e)
		untagged[t] = []byte(u)
	}
	return egress, untagged, nil
}

// ReadPortVLANInfo implements types.SwitchDriver.
func (sw *Switch) ReadPortVLANInfo(ctx context.Context, n int) ([]types.VLAN, error) {
	if err := types.ValidatePort(n, sw.Ports); err != nil {
		return nil, err
	}
	var vlans []types.VLAN
	err := sw.WithSNMP(ctx, func(s types.SNMPSession) error {
		egress, untagged, err := sw.portTables(ctx, s, sw.PortIndex(n))
		if err != nil {
			return err
		}
		names, err := common.WalkStrings(ctx, s, common.OIDVlanStaticName)
		if err != nil {
			return err
		}
		members := make(map[int]bool)
		for t := 0; t < codec.EltexTableCount; t++ {
			for _, vid := range codec.DecodeEltexVLANs(t, egress[t]) {
				if _, ok := members[vid]; !ok {
					members[vid] = false
				}
			}
			for _, vid := range codec.DecodeEltexVLANs(t, untagged[t]) {
				members[vid] = true
			}
		}
		vids := make([]int, 0, len(members))
		for vid := range members {
			vids = append(vids, vid)
		}
		sort.Ints(vids)
		for _, vid := range vids {
			vlans = append(vlans, types.VLAN{
				VID:    vid,
				Title:  strings.TrimSpace(names[strconv.Itoa(vid)]),
				Native: members[vid],
			})
		}
		return nil
	})
	return vlans, err
}

// AttachVLANsToPort implements types.SwitchDriver. Missing VLANs are
// created first; then every touched table is written with one set, egress
// lists before untagged lists. A native VLAN also becomes the port PVID.
func (sw *Switch) AttachVLANsToPort(ctx context.Context, vlans []types.VLAN, n int, mode types.PortMode) error {
	if err := types.ValidatePort(n, sw.Ports); err != nil {
		return err
	}
	vlans, err := types.NormalizeAttach(vlans, mode)
	if err != nil {
		return err
	}
	ifIndex := sw.PortIndex(n)
	return sw.WithSNMP(ctx, func(s types.SNMPSession) error {
		var missing []types.VLAN
		for _, v := range vlans {
			ok, err := sw.Bridge.Exists(ctx, s, v.VID)
			if err != nil {
				return err
			}
			if !ok {
				missing = append(missing, v)
			}
		}
		if len(missing) > 0 {
			if err := sw.Bridge.CreateVLANs(ctx, s, missing); err != nil {
				return err
			}
		}

		egress, untagged, err := sw.portTables(ctx, s, ifIndex)
		if err != nil {
			return err
		}
		var all, natives, tagged []int
		pvid := 0
		for _, v := range vlans {
			all = append(all, v.VID)
			if v.Native {
				natives = append(natives, v.VID)
				pvid = v.VID
			} else {
				tagged = append(tagged, v.VID)
			}
		}
		newEgress, err := codec.MergeEltexVLANs(egress, all, true)
		if err != nil {
			return err
		}
		newUntagged, err := codec.MergeEltexVLANs(untagged, natives, true)
		if err != nil {
			return err
		}
		cleared, err := codec.MergeEltexVLANs(mergeInto(untagged, newUntagged), tagged, false)
		if err != nil {
			return err
		}
		for t, buf := range cleared {
			newUntagged[t] = buf
		}

		if err := writeTables(ctx, s, newEgress, func(t int) string { return EgressOID(t, ifIndex) }); err != nil {
			return types.Wrap(types.KindConfiguration, err, "attach vlans to port %d", n)
		}
		if err := writeTables(ctx, s, newUntagged, func(t int) string { return UntaggedOID(t, ifIndex) }); err != nil {
			return types.Wrap(types.KindConfiguration, err, "attach vlans to port %d", n)
		}
		if pvid != 0 {
			if err := s.Set(ctx, common.OID(OIDPortPVID, ifIndex), pvid, types.SNMPGauge); err != nil {
				return types.Wrap(types.KindConfiguration, err, "set pvid %d on port %d", pvid, n)
			}
			return nil
		}
		if err := resetPVID(ctx, s, ifIndex, tagged); err != nil {
			return types.Wrap(types.KindConfiguration, err, "reset pvid on port %d", n)
		}
		return nil
	})
}

// DetachVLANFromPort implements types.SwitchDriver.
func (sw *Switch) DetachVLANFromPort(ctx context.Context, vid, n int) error {
	if err := types.ValidatePort(n, sw.Ports); err != nil {
		return err
	}
	if err := types.ValidateVID(vid); err != nil {
		return err
	}
	ifIndex := sw.PortIndex(n)
	return sw.WithSNMP(ctx, func(s types.SNMPSession) error {
		egress, untagged, err := sw.portTables(ctx, s, ifIndex)
		if err != nil {
			return err
		}
		newEgress, err := codec.MergeEltexVLANs(egress, []int{vid}, false)
		if err != nil {
			return err
		}
		newUntagged, err := codec.MergeEltexVLANs(untagged, []int{vid}, false)
		if err != nil {
			return err
		}
		if err := writeTables(ctx, s, newEgress, func(t int) string { return EgressOID(t, ifIndex) }); err != nil {
			return types.Wrap(types.KindConfiguration, err, "detach vlan %d from port %d", vid, n)
		}
		if err := writeTables(ctx, s, newUntagged, func(t int) string { return UntaggedOID(t, ifIndex) }); err != nil {
			return types.Wrap(types.KindConfiguration, err, "detach vlan %d from port %d", vid, n)
		}
		if err := resetPVID(ctx, s, ifIndex, []int{vid}); err != nil {
			return types.Wrap(types.KindConfiguration, err, "reset pvid on port %d", n)
		}
		return nil
	})
}

// resetPVID points the port back at the default VLAN when its PVID is one
// of vids, which are no longer untagged on it.
func resetPVID(ctx context.Context, s types.SNMPSession, ifIndex int, vids []int) error {
	oid := common.OID(OIDPortPVID, ifIndex)
	cur, ok, err := common.GetInt(ctx, s, oid)
	if err != nil || !ok || cur == types.DefaultVID {
		return err
	}
	for _, vid := range vids {
		if int64(vid) == cur {
			return s.Set(ctx, oid, types.DefaultVID, types.SNMPGauge)
		}
	}
	return nil
}

// mergeInto overlays the updated tables on the current ones.
func mergeInto(current, updated map[int][]byte) map[int][]byte {
	out := make(map[int][]byte, len(current))
	for t, buf := range current {
		out[t] = buf
	}
	for t, buf := range updated {
		out[t] = buf
	}
	return out
}

func writeTables(ctx context.Context, s types.SNMPSession, tables map[int][]byte, oid func(t int) string) error {
	for _, t := range codec.SortedTables(tables) {
		if err := s.Set(ctx, oid(t), tables[t], types.SNMPOctetString); err != nil {
			return err
		}
	}
	return nil
}
