package common

import (
	"context"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/types"
)

// StaticVLAN is a row of dot1qVlanStaticTable.
type StaticVLAN struct {
	VID      int
	Name     string
	Egress   []byte
	Untagged []byte
}

// QBridge manages static VLANs through the Q-BRIDGE-MIB. Port numbers are
// bridge port numbers, the bit positions of the membership bitmaps.
type QBridge struct {
	// Width is the bitmap width in bits the device expects on writes
	Width int
}

// VLANs reads every static VLAN with its membership bitmaps.
func (q QBridge) VLANs(ctx context.Context, s types.SNMPSession) ([]StaticVLAN, error) {
	names, err := WalkStrings(ctx, s, OIDVlanStaticName)
	if err != nil {
		return nil, err
	}
	egress, err := WalkStrings(ctx, s, OIDVlanStaticEgress)
	if err != nil {
		return nil, err
	}
	untagged, err := WalkStrings(ctx, s, OIDVlanStaticUntagged)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(names))
	for k := range names {
		keys[k] = struct{}{}
	}
	for k := range egress {
		keys[k] = struct{}{}
	}
	var out []StaticVLAN
	for _, k := range SortedIndexes(keys) {
		vid, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, StaticVLAN{
			VID:      vid,
			Name:     strings.TrimSpace(names[k]),
			Egress:   []byte(egress[k]),
			Untagged: []byte(untagged[k]),
		})
	}
	return out, nil
}

// PortVLANs returns the VLANs port belongs to. A VLAN is native on the port
// when the port is in its untagged set; untagged membership counts as
// membership even if the agent left the egress bit clear.
func (q QBridge) PortVLANs(ctx context.Context, s types.SNMPSession, port int) ([]types.VLAN, error) {
	all, err := q.VLANs(ctx, s)
	if err != nil {
		return nil, err
	}
	var out []types.VLAN
	for _, v := range all {
		native := codec.HasPort(v.Untagged, port)
		if !native && !codec.HasPort(v.Egress, port) {
			continue
		}
		out = append(out, types.VLAN{VID: v.VID, Title: v.Name, Native: native})
	}
	return out, nil
}

// AllVLANs returns every VLAN except the default VLAN.
func (q QBridge) AllVLANs(ctx context.Context, s types.SNMPSession) ([]types.VLAN, error) {
	all, err := q.VLANs(ctx, s)
	if err != nil {
		return nil, err
	}
	out := make([]types.VLAN, 0, len(all))
	for _, v := range all {
		if v.VID == types.DefaultVID {
			continue
		}
		out = append(out, types.VLAN{VID: v.VID, Title: v.Name})
	}
	return out, nil
}

// Exists reports whether vid has a row in the static table.
func (q QBridge) Exists(ctx context.Context, s types.SNMPSession, vid int) (bool, error) {
	v, err := s.Get(ctx, OID(OIDVlanStaticRowStatus, vid))
	if err != nil {
		return false, err
	}
	if v != nil {
		return true, nil
	}
	v, err = s.Get(ctx, OID(OIDVlanStaticEgress, vid))
	return v != nil, err
}

// CreateVLANs creates missing VLANs and renames existing ones.
func (q QBridge) CreateVLANs(ctx context.Context, s types.SNMPSession, vlans []types.VLAN) error {
	for _, v := range vlans {
		if err := types.ValidateOperatorVID(v.VID); err != nil {
			return err
		}
		exists, err := q.Exists(ctx, s, v.VID)
		if err != nil {
			return err
		}
		vars := q.createVars(v, !exists)
		if err := s.SetMulti(ctx, vars); err != nil {
			return types.Wrap(types.KindConfiguration, err, "create vlan %d", v.VID)
		}
	}
	return nil
}

// DeleteVLANs destroys the rows of vlans. VLANs already absent are skipped.
func (q QBridge) DeleteVLANs(ctx context.Context, s types.SNMPSession, vlans []types.VLAN) error {
	for _, v := range vlans {
		if err := types.ValidateOperatorVID(v.VID); err != nil {
			return err
		}
		exists, err := q.Exists(ctx, s, v.VID)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := s.Set(ctx, OID(OIDVlanStaticRowStatus, v.VID), RowDestroy, types.SNMPInteger); err != nil {
			return types.Wrap(types.KindConfiguration, err, "delete vlan %d", v.VID)
		}
	}
	return nil
}

// Attach adds port to vlans. Both bitmaps of a VLAN are read, modified and
// written back in one request; a VLAN that does not exist is created in the
// same request.
func (q QBridge) Attach(ctx context.Context, s types.SNMPSession, vlans []types.VLAN, port int, mode types.PortMode) error {
	vlans, err := types.NormalizeAttach(vlans, mode)
	if err != nil {
		return err
	}
	for _, v := range vlans {
		egress, err := s.Get(ctx, OID(OIDVlanStaticEgress, v.VID))
		if err != nil {
			return err
		}
		untagged, err := s.Get(ctx, OID(OIDVlanStaticUntagged, v.VID))
		if err != nil {
			return err
		}
		eg, _ := String(egress)
		un, _ := String(untagged)

		newEgress, err := codec.SetPort([]byte(eg), port, true, q.Width)
		if err != nil {
			return err
		}
		newUntagged, err := codec.SetPort([]byte(un), port, v.Native, q.Width)
		if err != nil {
			return err
		}

		var vars []types.SNMPVar
		if egress == nil {
			vars = append(vars, q.createVars(v, true)...)
		}
		vars = append(vars,
			types.SNMPVar{OID: OID(OIDVlanStaticEgress, v.VID), Type: types.SNMPOctetString, Value: newEgress},
			types.SNMPVar{OID: OID(OIDVlanStaticUntagged, v.VID), Type: types.SNMPOctetString, Value: newUntagged},
		)
		if err := s.SetMulti(ctx, vars); err != nil {
			return types.Wrap(types.KindConfiguration, err, "attach vlan %d to port %d", v.VID, port)
		}
	}
	return nil
}

// Detach removes port from vid. Detaching from a missing VLAN is a no-op.
func (q QBridge) Detach(ctx context.Context, s types.SNMPSession, vid, port int) error {
	if err := types.ValidateVID(vid); err != nil {
		return err
	}
	egress, err := s.Get(ctx, OID(OIDVlanStaticEgress, vid))
	if err != nil {
		return err
	}
	if egress == nil {
		return nil
	}
	untagged, err := s.Get(ctx, OID(OIDVlanStaticUntagged, vid))
	if err != nil {
		return err
	}
	eg, _ := String(egress)
	un, _ := String(untagged)

	newEgress, err := codec.SetPort([]byte(eg), port, false, q.Width)
	if err != nil {
		return err
	}
	newUntagged, err := codec.SetPort([]byte(un), port, false, q.Width)
	if err != nil {
		return err
	}
	err = s.SetMulti(ctx, []types.SNMPVar{
		{OID: OID(OIDVlanStaticEgress, vid), Type: types.SNMPOctetString, Value: newEgress},
		{OID: OID(OIDVlanStaticUntagged, vid), Type: types.SNMPOctetString, Value: newUntagged},
	})
	if err != nil {
		return types.Wrap(types.KindConfiguration, err, "detach vlan %d from port %d", vid, port)
	}
	return nil
}

func (q QBridge) createVars(v types.VLAN, create bool) []types.SNMPVar {
	var vars []types.SNMPVar
	if create {
		vars = append(vars, types.SNMPVar{OID: OID(OIDVlanStaticRowStatus, v.VID), Type: types.SNMPInteger, Value: RowCreateAndGo})
	}
	return append(vars, types.SNMPVar{
		OID:   OID(OIDVlanStaticName, v.VID),
		Type:  types.SNMPOctetString,
		Value: codec.VLANName(v.Title, v.VID),
	})
}

// ReadFDB reads dot1qTpFdbPort. With vid > 0 only that VLAN's subtree is
// walked. Port is the bridge port number reported by the agent.
func ReadFDB(ctx context.Context, s types.SNMPSession, vid int) ([]types.MACEntry, error) {
	base := OIDFdbPort
	if vid > 0 {
		if err := types.ValidateVID(vid); err != nil {
			return nil, err
		}
		base = OID(OIDFdbPort, vid)
	}
	var out []types.MACEntry
	err := s.Walk(ctx, base, func(index string, value interface{}) error {
		entryVID := vid
		suffix := index
		if vid == 0 {
			dot := strings.IndexByte(index, '.')
			if dot < 0 {
				return nil
			}
			n, err := strconv.Atoi(index[:dot])
			if err != nil {
				return nil
			}
			entryVID, suffix = n, index[dot+1:]
		}
		mac, err := codec.MACFromOIDSuffix(suffix)
		if err != nil {
			return nil
		}
		port, _ := Int(value)
		out = append(out, types.MACEntry{VID: entryVID, Port: int(port), MAC: mac})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilterFDBPort keeps the entries learned on bridge port and renumbers
// them to the display port.
func FilterFDBPort(entries []types.MACEntry, bridgePort, display int) []types.MACEntry {
	var out []types.MACEntry
	for _, e := range entries {
		if e.Port == bridgePort {
			e.Port = display
			out = append(out, e)
		}
	}
	return out
}
