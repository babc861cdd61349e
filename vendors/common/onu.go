package common

import (
	"context"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// DefaultPortVLANs is the VLAN shape of an unregistered ONU: every port
// carries the parent's default vid as its only, native, VLAN.
func DefaultPortVLANs(dev *model.Device, ports int) []types.PortVLANConfig {
	vid := DefaultVID(dev)
	out := make([]types.PortVLANConfig, 0, ports)
	for n := 1; n <= ports; n++ {
		out = append(out, types.PortVLANConfig{Port: n, VIDs: []types.PortVID{{VID: vid, Native: true}}})
	}
	return out
}

// PortVIDs merges the access vid and the trunk range string of one ONU
// port. The access vid is native; trunk vids are tagged. A zero or invalid
// access vid is skipped.
func PortVIDs(access int64, trunk string) ([]types.PortVID, error) {
	var out []types.PortVID
	if access > 0 && types.ValidateVID(int(access)) == nil {
		out = append(out, types.PortVID{VID: int(access), Native: true})
	}
	vids, err := codec.ParseVIDRange(strings.Trim(trunk, "\x00 "))
	if err != nil {
		return nil, err
	}
	for _, vid := range vids {
		if vid == int(access) {
			continue
		}
		out = append(out, types.PortVID{VID: vid})
	}
	return out, nil
}

// ReadONUPortVLANs reads ports 1..n of the ONU at index from an access vid
// column and a trunk range column, both indexed by <index>.<port>.
func ReadONUPortVLANs(ctx context.Context, s types.SNMPSession, accessOID, trunkOID, index string, ports int) ([]types.PortVLANConfig, error) {
	out := make([]types.PortVLANConfig, 0, ports)
	for n := 1; n <= ports; n++ {
		access, _, err := GetInt(ctx, s, OID(accessOID+"."+index, n))
		if err != nil {
			return nil, err
		}
		trunk, err := GetString(ctx, s, OID(trunkOID+"."+index, n))
		if err != nil {
			return nil, err
		}
		vids, err := PortVIDs(access, trunk)
		if err != nil {
			return nil, types.Wrap(types.KindValidation, err, "onu port %d", n)
		}
		out = append(out, types.PortVLANConfig{Port: n, VIDs: vids})
	}
	return out, nil
}
