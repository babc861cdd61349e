package eltex

import (
	"context"
	"testing"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/drivers/mock"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwitch(t *testing.T, s *mock.SNMP) *Switch {
	t.Helper()
	tr := mock.NewTransport().AddSNMP("10.0.1.4", s)
	drv, err := registry.Default().NewDriver(&model.Device{ID: 4, IP: "10.0.1.4", Type: TypeMES}, tr)
	require.NoError(t, err)
	return drv.(*Switch)
}

func TestPortIndex(t *testing.T) {
	sw := New(&model.Device{}, nil, Profile{Ports: 24, Uplinks: 4})
	assert.Equal(t, 5, sw.PortIndex(1))
	assert.Equal(t, 28, sw.PortIndex(24))
	assert.Equal(t, 24, sw.PortsLen())
}

func TestAttachAccess(t *testing.T) {
	ctx := context.Background()
	s := mock.NewSNMP(map[string]interface{}{
		common.OID(common.OIDVlanStaticRowStatus, 100): int64(1),
		common.OID(common.OIDVlanStaticName, 100):      "office",
	})
	sw := newSwitch(t, s)

	require.NoError(t, sw.AttachVLANsToPort(ctx, []types.VLAN{{VID: 100}}, 3, types.PortModeAccess))

	want, err := codec.EncodeEltexVLANs([]int{100})
	require.NoError(t, err)
	sets := s.Sets()
	require.Len(t, sets, 3, "one set per table plus the pvid")
	assert.Equal(t, EgressOID(0, 7), sets[0][0].OID)
	assert.Equal(t, want[0], sets[0][0].Value)
	assert.Equal(t, UntaggedOID(0, 7), sets[1][0].OID)
	assert.Equal(t, want[0], sets[1][0].Value)
	assert.Equal(t, common.OID(OIDPortPVID, 7), sets[2][0].OID)
	assert.Equal(t, 100, sets[2][0].Value)

	vlans, err := sw.ReadPortVLANInfo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []types.VLAN{{VID: 100, Title: "office", Native: true}}, vlans)
}

func TestAttachTrunkCreatesVLANs(t *testing.T) {
	ctx := context.Background()
	s := mock.NewSNMP(nil)
	sw := newSwitch(t, s)

	vlans := []types.VLAN{{VID: 1100, Title: "iptv"}, {VID: 2050}}
	require.NoError(t, sw.AttachVLANsToPort(ctx, vlans, 1, types.PortModeTrunk))

	var oids []string
	for _, req := range s.Sets() {
		oids = append(oids, req[0].OID)
	}
	assert.Equal(t, []string{
		common.OID(common.OIDVlanStaticRowStatus, 1100),
		common.OID(common.OIDVlanStaticRowStatus, 2050),
		EgressOID(1, 5),
		EgressOID(2, 5),
		UntaggedOID(1, 5),
		UntaggedOID(2, 5),
	}, oids)

	got, err := sw.ReadPortVLANInfo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.VLAN{{VID: 1100, Title: "iptv"}, {VID: 2050, Title: "v2050"}}, got)
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	tables, err := codec.EncodeEltexVLANs([]int{10, 20})
	require.NoError(t, err)
	untagged, err := codec.EncodeEltexVLANs([]int{10})
	require.NoError(t, err)
	s := mock.NewSNMP(map[string]interface{}{
		EgressOID(0, 6):   string(tables[0]),
		UntaggedOID(0, 6): string(untagged[0]),
	})
	sw := newSwitch(t, s)

	require.NoError(t, sw.DetachVLANFromPort(ctx, 10, 2))
	vlans, err := sw.ReadPortVLANInfo(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []types.VLAN{{VID: 20}}, vlans)

	assert.ErrorIs(t, sw.DetachVLANFromPort(ctx, 0, 2), types.ErrValidation)
	assert.ErrorIs(t, sw.DetachVLANFromPort(ctx, 10, 25), types.ErrValidation)
}

func TestPVIDFollowsUntagged(t *testing.T) {
	tables, err := codec.EncodeEltexVLANs([]int{10, 20})
	require.NoError(t, err)
	untagged, err := codec.EncodeEltexVLANs([]int{10})
	require.NoError(t, err)
	tree := func(pvid int64) *mock.SNMP {
		s := mock.NewSNMP(map[string]interface{}{
			EgressOID(0, 6):            string(tables[0]),
			UntaggedOID(0, 6):          string(untagged[0]),
			common.OID(OIDPortPVID, 6): pvid,
		})
		s.Put(common.OID(common.OIDVlanStaticRowStatus, 10), int64(1))
		s.Put(common.OID(common.OIDVlanStaticRowStatus, 20), int64(1))
		return s
	}
	pvidOf := func(s *mock.SNMP) int64 {
		v, err := s.Get(context.Background(), common.OID(OIDPortPVID, 6))
		require.NoError(t, err)
		n, _ := common.Int(v)
		return n
	}

	tests := []struct {
		name string
		pvid int64
		run  func(sw *Switch) error
		want int64
	}{
		{"native re-attached tagged", 10, func(sw *Switch) error {
			return sw.AttachVLANsToPort(context.Background(), []types.VLAN{{VID: 10}}, 2, types.PortModeTrunk)
		}, types.DefaultVID},
		{"other vid re-attached tagged", 10, func(sw *Switch) error {
			return sw.AttachVLANsToPort(context.Background(), []types.VLAN{{VID: 20}}, 2, types.PortModeTrunk)
		}, 10},
		{"native detached", 10, func(sw *Switch) error {
			return sw.DetachVLANFromPort(context.Background(), 10, 2)
		}, types.DefaultVID},
		{"tagged detached", 10, func(sw *Switch) error {
			return sw.DetachVLANFromPort(context.Background(), 20, 2)
		}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tree(tt.pvid)
			require.NoError(t, tt.run(newSwitch(t, s)))
			assert.Equal(t, tt.want, pvidOf(s))
		})
	}

	s := tree(10)
	sw := newSwitch(t, s)
	require.NoError(t, sw.AttachVLANsToPort(context.Background(), []types.VLAN{{VID: 10}}, 2, types.PortModeTrunk))
	vlans, err := sw.ReadPortVLANInfo(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []types.VLAN{{VID: 10}, {VID: 20}}, vlans)
}

func TestReadMACAddressPort(t *testing.T) {
	ctx := context.Background()
	s := mock.NewSNMP(map[string]interface{}{
		common.OIDFdbPort + ".10.0.17.34.51.68.85": int64(5),
		common.OIDFdbPort + ".10.0.17.34.51.68.86": int64(1),
	})
	sw := newSwitch(t, s)

	entries, err := sw.ReadMACAddressPort(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.MACEntry{{VID: 10, Port: 1, MAC: "00:11:22:33:44:55"}}, entries)

	entries, err = sw.ReadMACAddressVLAN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Port)
	assert.Equal(t, 0, entries[1].Port, "uplink rows have no access port")
}
