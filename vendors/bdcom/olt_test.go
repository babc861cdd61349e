package bdcom

import (
	"context"
	"testing"

	"github.com/nanoncore/nano-devctl/drivers/mock"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oltIP = "10.0.3.2"

func oltTree() *mock.SNMP {
	return mock.NewSNMP(map[string]interface{}{
		common.OID(common.OIDIfDescr, 1):  "EPON0/1",
		common.OID(common.OIDIfDescr, 2):  "EPON0/2",
		common.OID(common.OIDIfDescr, 10): "EPON0/1:1",
		common.OID(common.OIDIfDescr, 11): "EPON0/1:2",
		common.OID(common.OIDIfDescr, 20): "GigaEthernet0/1",

		common.OID(OIDONUMAC, 10):         "\x00\x11\x22\x33\x44\x55",
		common.OID(OIDONUMAC, 11):         "\xaa\xbb\xcc\x00\x00\x01",
		common.OID(OIDONUStatus, 10):      int64(3),
		common.OID(OIDONUStatus, 11):      int64(2),
		common.OID(OIDONURxPower, 10):     int64(-215),
		common.OID(OIDONURxPower, 11):     common.SNMPInvalidValue,
		common.OID(common.OIDIfAlias, 10): "client-1",
		common.OID(OIDONUDistance, 10):    int64(1250),

		OIDInactiveONUMAC + ".1.1":      "\x00\x11\x22\x33\x44\x66",
		OIDInactiveONUFirmware + ".1.1": "V1.0",
	})
}

func oltDevice() *model.Device {
	return &model.Device{
		ID:        2,
		Name:      "olt-2",
		IP:        oltIP,
		Type:      TypeP3310C,
		ExtraData: model.ExtraData{"login": "admin", "password": "secret", "default_vid": float64(42)},
	}
}

func TestScanONUList(t *testing.T) {
	s := oltTree()
	olt := NewOLT(oltDevice(), mock.NewTransport().AddSNMP(oltIP, s))

	stream, err := olt.ScanONUList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stream.Total)
	assert.Equal(t, types.DefaultChunkSize, stream.ChunkSize)

	onus, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.ONU{
		{FiberIndex: 1, ONUIndex: 1, Name: "client-1", Status: types.StatusOK, MAC: "00:11:22:33:44:55", Signal: -215},
		{FiberIndex: 1, ONUIndex: 2, Status: types.StatusDown, MAC: "aa:bb:cc:00:00:01"},
	}, onus)
	assert.Equal(t, 1, s.Closed())
}

func TestScanONUListTimeout(t *testing.T) {
	s := oltTree()
	s.Fail(OIDONURxPower, types.Errorf(types.KindTimeout, "snmp: request timeout"))
	olt := NewOLT(oltDevice(), mock.NewTransport().AddSNMP(oltIP, s))

	stream, err := olt.ScanONUList(context.Background())
	require.NoError(t, err)
	_, err = stream.Collect()
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.Equal(t, 1, s.Closed())
}

func TestGetFibers(t *testing.T) {
	olt := NewOLT(oltDevice(), mock.NewTransport().AddSNMP(oltIP, oltTree()))
	fibers, err := olt.GetFibers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Fiber{
		{Index: 1, Name: "EPON0/1", ONUCount: 2, ActiveCount: 1},
		{Index: 2, Name: "EPON0/2"},
	}, fibers)
}

func TestGetPortsOnFiber(t *testing.T) {
	ctx := context.Background()
	olt := NewOLT(oltDevice(), mock.NewTransport().AddSNMP(oltIP, oltTree()))

	slots, err := olt.GetPortsOnFiber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, types.FiberSlot{ONUIndex: 1, Type: "EPON", Signal: -21.5, Serial: "00:11:22:33:44:55", Status: types.StatusOK}, slots[0])

	slots, err = olt.GetPortsOnFiber(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = olt.GetPortsOnFiber(ctx, 3)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetUnitsUnregistered(t *testing.T) {
	ctx := context.Background()
	olt := NewOLT(oltDevice(), mock.NewTransport().AddSNMP(oltIP, oltTree()))

	units, err := olt.GetUnitsUnregistered(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.UnregisteredUnit{
		{Fiber: 1, Serial: "00:11:22:33:44:66", MAC: "00:11:22:33:44:66", Firmware: "V1.0"},
	}, units)

	units, err = olt.GetUnitsUnregistered(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestRegisterONU(t *testing.T) {
	ctx := context.Background()
	s := oltTree()
	c := mock.NewCLI("",
		mock.Exchange{Line: "config", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "interface EPON0/1", Reply: "\r\nOLT_config_epon0/1#"},
		mock.Exchange{Line: "epon bind-onu mac 0011.2233.4466 3", Reply: "\r\nOLT_config_epon0/1#", Do: func() {
			s.Put(common.OID(common.OIDIfDescr, 12), "EPON0/1:3")
		}},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "interface EPON0/1:3", Reply: "\r\nOLT_config_epon0/1:3#"},
		mock.Exchange{Line: "epon onu port 1 ctc vlan mode tag 100", Reply: "\r\nOLT_config_epon0/1:3#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT#"},
	)
	tr := mock.NewTransport().AddSNMP(oltIP, s).AddCLI(oltIP, c)
	olt := NewOLT(oltDevice(), tr)

	locator, err := olt.RegisterONU(ctx, types.RegisterRequest{
		Serial:   "00:11:22:33:44:66",
		Template: EPONVLAN,
		Config:   []types.PortVLANConfig{{Port: 1, VIDs: []types.PortVID{{VID: 100, Native: true}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "12", locator)
	assert.Zero(t, c.Remaining())
	assert.Equal(t, 1, c.Closed())
	assert.Equal(t, []string{"enable"}, tr.Profiles()[0].Setup)
}

func TestRegisterONUNotSeen(t *testing.T) {
	tr := mock.NewTransport().AddSNMP(oltIP, oltTree())
	olt := NewOLT(oltDevice(), tr)

	_, err := olt.RegisterONU(context.Background(), types.RegisterRequest{
		Serial:   "00:11:22:33:44:77",
		Template: EPONVLAN,
		Config:   []types.PortVLANConfig{{Port: 1, VIDs: []types.PortVID{{VID: 100}}}},
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, tr.CLIDials())
}

func TestRegisterONUConsoleError(t *testing.T) {
	c := mock.NewCLI("",
		mock.Exchange{Line: "config", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "interface EPON0/1", Reply: "\r\nOLT_config_epon0/1#"},
		mock.Exchange{Line: "epon bind-onu mac 0011.2233.4466 3", Reply: "\r\n% The onu has been bound\r\nOLT_config_epon0/1#"},
	)
	tr := mock.NewTransport().AddSNMP(oltIP, oltTree()).AddCLI(oltIP, c)
	olt := NewOLT(oltDevice(), tr)

	_, err := olt.RegisterONU(context.Background(), types.RegisterRequest{
		Serial:   "0011.2233.4466",
		Template: EPONVLAN,
		Config:   []types.PortVLANConfig{{Port: 1, VIDs: []types.PortVID{{VID: 100}}}},
	})
	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "The onu has been bound")
	assert.Equal(t, 1, c.Closed(), "session is closed without rollback")
}

func TestRemoveFromOLT(t *testing.T) {
	c := mock.NewCLI("",
		mock.Exchange{Line: "config", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "interface EPON0/1", Reply: "\r\nOLT_config_epon0/1#"},
		mock.Exchange{Line: "no epon bind-onu sequence 2", Reply: "\r\nOLT_config_epon0/1#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT#"},
	)
	tr := mock.NewTransport().AddSNMP(oltIP, oltTree()).AddCLI(oltIP, c)
	olt := NewOLT(oltDevice(), tr)

	require.NoError(t, olt.RemoveFromOLT(context.Background(), "11"))
	assert.Zero(t, c.Remaining())

	assert.ErrorIs(t, olt.RemoveFromOLT(context.Background(), "1"), types.ErrNotFound)
	assert.ErrorIs(t, olt.RemoveFromOLT(context.Background(), "x"), types.ErrValidation)
}

func TestAttachVLANsToUplink(t *testing.T) {
	c := mock.NewCLI("",
		mock.Exchange{Line: "config", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "interface GigaEthernet0/1", Reply: "\r\nOLT_config_gigaethernet0/1#"},
		mock.Exchange{Line: "switchport trunk vlan-allowed add 100-102,200", Reply: "\r\nOLT_config_gigaethernet0/1#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT_config#"},
		mock.Exchange{Line: "exit", Reply: "\r\nOLT#"},
	)
	tr := mock.NewTransport().AddCLI(oltIP, c)
	olt := NewOLT(oltDevice(), tr)

	vlans := []types.VLAN{{VID: 200}, {VID: 100}, {VID: 101}, {VID: 102}}
	require.NoError(t, olt.AttachVLANsToUplink(context.Background(), vlans, "GigaEthernet0/1"))
	assert.Zero(t, c.Remaining())

	err := olt.AttachVLANsToUplink(context.Background(), []types.VLAN{{VID: 5000}}, "GigaEthernet0/1")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestFreeSlot(t *testing.T) {
	full := []ponIf{{IfIndex: 1, Fiber: 1}}
	for n := 1; n <= MaxONUSlot; n++ {
		full = append(full, ponIf{IfIndex: 100 + n, Fiber: 1, ONU: n})
	}
	_, err := freeSlot(full, 1, 0)
	assert.ErrorIs(t, err, types.ErrFiberFull)

	some := []ponIf{{Fiber: 1}, {Fiber: 1, ONU: 1}, {Fiber: 1, ONU: 3}}
	n, err := freeSlot(some, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = freeSlot(some, 1, 3)
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = freeSlot(some, 4, 0)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
