package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/nanoncore/nano-devctl/drivers/mock"
	"github.com/nanoncore/nano-devctl/lock"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
	"github.com/nanoncore/nano-devctl/vendors/zte"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oltIP  = "10.0.5.2"
	fiber1 = 268501248
	fiber2 = 268501504
)

func oltRecord() *model.Device {
	return &model.Device{
		ID:        5,
		Name:      "c320-5",
		IP:        oltIP,
		Type:      zte.TypeC320,
		ExtraData: model.ExtraData{"login": "zte", "password": "zte", "default_vid": float64(42)},
	}
}

func onuRecord(locator string) *model.Device {
	return &model.Device{
		ID:        50,
		MAC:       "45:47:00:00:00:09",
		Type:      zte.TypeF660,
		ParentID:  5,
		SNMPExtra: locator,
	}
}

// zxan builds a device reply: the output lines, then the prompt.
func zxan(prompt string, out ...string) string {
	var b strings.Builder
	for _, l := range out {
		b.WriteString("\r\n" + l)
	}
	b.WriteString("\r\nZXAN" + prompt)
	return b.String()
}

// registerScript binds ZTEG00000009 as onu 1 of gpon-olt_1/1/2 with vid
// 100 native on port 1.
func registerScript() []mock.Exchange {
	return []mock.Exchange{
		{Line: "show gpon onu uncfg", Reply: zxan(zte.PromptExec,
			"OnuIndex                 Sn                  State",
			"---------------------------------------------------------",
			"gpon-onu_1/1/2:1         ZTEG00000009        unknown",
		)},
		{Line: "show running-config interface gpon-olt_1/1/2", Reply: zxan(zte.PromptExec, "interface gpon-olt_1/1/2", "  no shutdown", "!")},
		{Line: "configure terminal", Reply: zxan(zte.PromptConfig)},
		{Line: "interface gpon-olt_1/1/2", Reply: zxan(zte.PromptInterface)},
		{Line: "onu 1 type ZTE-F660 sn ZTEG00000009", Reply: zxan(zte.PromptInterface)},
		{Line: "exit", Reply: zxan(zte.PromptConfig)},
		{Line: "interface gpon-onu_1/1/2:1", Reply: zxan(zte.PromptInterface)},
		{Line: "tcont 1 profile 1G", Reply: zxan(zte.PromptInterface)},
		{Line: "gemport 1 tcont 1", Reply: zxan(zte.PromptInterface)},
		{Line: "service-port 1 vport 1 user-vlan 100 vlan 100", Reply: zxan(zte.PromptInterface)},
		{Line: "exit", Reply: zxan(zte.PromptConfig)},
		{Line: "pon-onu-mng gpon-onu_1/1/2:1", Reply: zxan(zte.PromptONUMng)},
		{Line: "service 1 gemport 1 vlan 100", Reply: zxan(zte.PromptONUMng)},
		{Line: "vlan port eth_0/1 mode tag vlan 100", Reply: zxan(zte.PromptONUMng)},
		{Line: "exit", Reply: zxan(zte.PromptConfig)},
		{Line: "end", Reply: zxan(zte.PromptExec)},
	}
}

func vlanConfig() []interface{} {
	return []interface{}{
		map[string]interface{}{
			"port": float64(1),
			"vids": []interface{}{map[string]interface{}{"vid": float64(100), "native": true}},
		},
	}
}

func registerArgs() Args {
	return Args{
		"serial":      "ZTEG00000009",
		"onu_type":    "ZTE-F660",
		"template":    "zte_f660_bridge",
		"vlan_config": vlanConfig(),
		"onu_id":      float64(50),
	}
}

type recorder struct {
	mu    sync.Mutex
	sent  []string
	to    [][]string
	fails error
}

func (r *recorder) SendNotification(_ context.Context, recipients []string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	r.to = append(r.to, recipients)
	return r.fails
}

type fixture struct {
	store     *MemoryStore
	transport *mock.Transport
	metrics   *Metrics
	notes     *recorder
	locker    *lock.Memory
	log       *bytes.Buffer
	o         *Orchestrator
}

func newFixture(t *testing.T, devs ...*model.Device) *fixture {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	f := &fixture{
		store:     NewMemoryStore(devs...),
		transport: mock.NewTransport(),
		metrics:   m,
		notes:     &recorder{},
		locker:    lock.NewMemory(),
		log:       &buf,
	}
	f.o = New(f.store, f.transport,
		WithMetrics(m),
		WithLocker(f.locker),
		WithNotifier(f.notes, "noc@example.net"),
		WithLogger(logrus.NewEntry(logger)),
	)
	return f
}

func (f *fixture) record(t *testing.T, id int64) *model.Device {
	t.Helper()
	d, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func (f *fixture) operations(t *testing.T, capability, operation, result string) float64 {
	return counterValue(t, f.metrics.operations.WithLabelValues(capability, operation, result))
}

func TestRunUnknownOperation(t *testing.T) {
	f := newFixture(t, oltRecord())

	_, err := f.o.Run(context.Background(), 5, "olt", "format_flash", nil)
	assert.ErrorIs(t, err, types.ErrCapabilityMismatch)

	_, err = f.o.Run(context.Background(), 5, "router", "identity", nil)
	assert.ErrorIs(t, err, types.ErrCapabilityMismatch)
}

func TestRunWrongCapability(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	_, err := f.o.Run(context.Background(), 50, "olt", "scan_onu_list", nil)
	assert.ErrorIs(t, err, types.ErrCapabilityMismatch)
	assert.Zero(t, f.transport.SNMPDials())
}

func TestRunUnknownDevice(t *testing.T) {
	f := newFixture(t)

	_, err := f.o.Run(context.Background(), 99, "switch", "get_ports", nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, types.HTTPStatus(err))
}

func TestRunUnknownDeviceType(t *testing.T) {
	f := newFixture(t, &model.Device{ID: 7, IP: "10.0.0.7", Type: 999})

	_, err := f.o.Run(context.Background(), 7, "switch", "get_ports", nil)
	assert.ErrorIs(t, err, types.ErrUnknownDeviceType)
}

func TestReadONUVLANInfoFallsBackToDefault(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	res, err := f.o.Run(context.Background(), 50, "onu", "read_onu_vlan_info", nil)
	require.NoError(t, err)
	cfg, isConfig := res.([]types.PortVLANConfig)
	require.True(t, isConfig)
	require.Len(t, cfg, 4)
	for i, port := range cfg {
		assert.Equal(t, i+1, port.Port)
		assert.Equal(t, []types.PortVID{{VID: 42, Native: true}}, port.VIDs)
	}
	assert.Zero(t, f.transport.SNMPDials())
}

func TestGetDetailsNotRegistered(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	_, err := f.o.Run(context.Background(), 50, "onu", "get_details", nil)
	assert.ErrorIs(t, err, types.ErrNotRegistered)
	assert.Zero(t, f.transport.SNMPDials())
	assert.Equal(t, float64(1), f.operations(t, "onu", "get_details", "NotRegistered"))
}

func TestFindSNByMACPersists(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	f.transport.AddSNMP(oltIP, mock.NewSNMP(map[string]interface{}{
		common.OID(zte.OIDONUSerial, fiber1, 1): "ZTEG\x12\x34\x56\x78",
		common.OID(zte.OIDONUSerial, fiber1, 3): "ZTEG\x00\x00\x00\x09",
	}))

	res, err := f.o.Run(context.Background(), 50, "onu", "onu_find_sn_by_mac", nil)
	require.NoError(t, err)
	assert.Equal(t, types.FixResult{Locator: "268501248.3"}, res)
	assert.Equal(t, "268501248.3", f.record(t, 50).SNMPExtra)
}

func TestFindSNByMACNotFoundKeepsRecord(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	f.transport.AddSNMP(oltIP, mock.NewSNMP(map[string]interface{}{
		common.OID(zte.OIDONUSerial, fiber1, 1): "ZTEG\x12\x34\x56\x78",
	}))

	res, err := f.o.Run(context.Background(), 50, "onu", "onu_find_sn_by_mac", nil)
	require.NoError(t, err)
	fix := res.(types.FixResult)
	assert.False(t, fix.Found())
	assert.Contains(t, fix.Reason, "ZTEG00000009")
	assert.Empty(t, f.record(t, 50).SNMPExtra)
}

func TestRegisterONUOnFiber(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	c := mock.NewCLI("", registerScript()...)
	f.transport.AddCLI(oltIP, c)

	res, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", registerArgs())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"snmp_extra": "268501504.1"}, res)
	assert.Zero(t, c.Remaining())
	assert.Equal(t, 1, c.Closed())

	assert.Equal(t, "268501504.1", f.record(t, 50).SNMPExtra)
	require.Len(t, f.notes.sent, 1)
	assert.Contains(t, f.notes.sent[0], "registered as 268501504.1")
	assert.Equal(t, []string{"noc@example.net"}, f.notes.to[0])
	assert.False(t, f.locker.Held(lock.DeviceKey(oltRecord())))
	assert.Equal(t, float64(1), f.operations(t, "olt", "register_onu_on_fiber", "ok"))
}

func TestRegisterONUOnFiberWithoutRecord(t *testing.T) {
	f := newFixture(t, oltRecord())
	f.transport.AddCLI(oltIP, mock.NewCLI("", registerScript()...))

	args := registerArgs()
	delete(args, "onu_id")
	res, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", args)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"snmp_extra": "268501504.1"}, res)
	assert.Empty(t, f.notes.sent)
}

// Two register calls on one OLT: the second fails fast without opening a
// transport while the first holds the device lock.
func TestRegisterONUOnFiberConcurrent(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	script := registerScript()
	entered := make(chan struct{})
	release := make(chan struct{})
	script[0].Do = func() {
		close(entered)
		<-release
	}
	f.transport.AddCLI(oltIP, mock.NewCLI("", script...))

	type outcome struct {
		res interface{}
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", registerArgs())
		first <- outcome{res, err}
	}()
	<-entered

	_, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", registerArgs())
	assert.ErrorIs(t, err, types.ErrProcessLocked)
	assert.Equal(t, types.StatusProcessLocked, types.HTTPStatus(err))
	assert.Equal(t, 1, f.transport.CLIDials())

	close(release)
	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, map[string]interface{}{"snmp_extra": "268501504.1"}, got.res)
	assert.Equal(t, 1, f.transport.CLIDials())

	key := lock.DeviceKey(oltRecord())
	assert.Equal(t, float64(1), counterValue(t, f.metrics.lockContention.WithLabelValues(key)))
	assert.Equal(t, float64(1), f.operations(t, "olt", "register_onu_on_fiber", "ok"))
	assert.Equal(t, float64(1), f.operations(t, "olt", "register_onu_on_fiber", "ProcessLocked"))
	assert.Contains(t, f.log.String(), "device is locked by another operation")
}

func TestRegisterONUOnFiberNotWaiting(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	f.transport.AddCLI(oltIP, mock.NewCLI("",
		mock.Exchange{Line: "show gpon onu uncfg", Reply: zxan(zte.PromptExec, zte.NoUncfg)},
	))

	_, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", registerArgs())
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, f.record(t, 50).SNMPExtra)
	assert.Empty(t, f.notes.sent)
	assert.Contains(t, f.log.String(), "registration failed")
	assert.False(t, f.locker.Held(lock.DeviceKey(oltRecord())))
}

func TestRegisterONUOnFiberRejectsArgs(t *testing.T) {
	tests := []struct {
		name string
		edit func(Args)
		want error
	}{
		{"missing serial", func(a Args) { delete(a, "serial") }, types.ErrValidation},
		{"unknown template", func(a Args) { a["template"] = "nope" }, types.ErrValidation},
		{"vlan config not a list", func(a Args) { a["vlan_config"] = float64(3) }, types.ErrValidation},
		{"foreign template", func(a Args) { a["template"] = "zte_f601_bridge" }, types.ErrConfiguration},
		{"foreign onu", func(a Args) { a["onu_id"] = float64(5) }, types.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, oltRecord(), onuRecord(""))
			args := registerArgs()
			tt.edit(args)

			_, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", args)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.transport.CLIDials())
		})
	}
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501504.7"))

	_, err := f.o.Run(context.Background(), 5, "olt", "register_onu_on_fiber", registerArgs())
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, f.transport.CLIDials())
	assert.Equal(t, "268501504.7", f.record(t, 50).SNMPExtra)
}

func TestApplyONUConfigRegisters(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	c := mock.NewCLI("", registerScript()...)
	f.transport.AddCLI(oltIP, c)

	res, err := f.o.Run(context.Background(), 50, "onu", "apply_onu_config", Args{
		"template":    "zte_f660_bridge",
		"vlan_config": `[{"port": 1, "vids": [{"vid": 100, "native": true}]}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"snmp_extra": "268501504.1"}, res)
	assert.Zero(t, c.Remaining())
	assert.Equal(t, "268501504.1", f.record(t, 50).SNMPExtra)
	require.Len(t, f.notes.sent, 1)
}

func TestApplyONUConfigEmptyVIDs(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	_, err := f.o.Run(context.Background(), 50, "onu", "apply_onu_config", Args{
		"template":    "zte_f660_bridge",
		"vlan_config": []interface{}{},
	})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "empty vid set")
	assert.Zero(t, f.transport.CLIDials())
}

func TestApplyONUConfigLockedParent(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	unlock, err := f.locker.TryLock(context.Background(), lock.DeviceKey(oltRecord()))
	require.NoError(t, err)
	defer unlock()

	_, err = f.o.Run(context.Background(), 50, "onu", "apply_onu_config", Args{
		"template":    "zte_f660_bridge",
		"vlan_config": vlanConfig(),
	})
	assert.ErrorIs(t, err, types.ErrProcessLocked)
	assert.Zero(t, f.transport.CLIDials())
}

func removeScript() []mock.Exchange {
	return []mock.Exchange{
		{Line: "configure terminal", Reply: zxan(zte.PromptConfig)},
		{Line: "interface gpon-olt_1/1/1", Reply: zxan(zte.PromptInterface)},
		{Line: "no onu 3", Reply: zxan(zte.PromptInterface)},
		{Line: "end", Reply: zxan(zte.PromptExec)},
	}
}

func TestRemoveFromOLTThroughONU(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	c := mock.NewCLI("", removeScript()...)
	f.transport.AddCLI(oltIP, c)

	res, err := f.o.Run(context.Background(), 50, "onu", "remove_from_olt", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, res)
	assert.Zero(t, c.Remaining())
	assert.Empty(t, f.record(t, 50).SNMPExtra)
	require.Len(t, f.notes.sent, 1)
	assert.Contains(t, f.notes.sent[0], "removed from")
}

// countingRegistry wraps every default entry so built records how many
// drivers were constructed per device id.
func countingRegistry(built map[int64]int) *registry.Registry {
	r := registry.New()
	for _, e := range registry.List() {
		next := e.New
		e.New = func(dev *model.Device, t types.Transport) (types.Driver, error) {
			built[dev.ID]++
			return next(dev, t)
		}
		r.Register(e)
	}
	return r
}

func TestRemoveFromOLTBuildsParentOnce(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	built := map[int64]int{}
	f.o.registry = countingRegistry(built)
	f.transport.AddCLI(oltIP, mock.NewCLI("", removeScript()...))

	_, err := f.o.Run(context.Background(), 50, "onu", "remove_from_olt", nil)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{5: 1, 50: 1}, built)
}

func TestCallParentOLTCached(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	dev, err := f.o.load(context.Background(), 50)
	require.NoError(t, err)

	c := &call{o: f.o, dev: dev}
	first, err := c.parentOLT()
	require.NoError(t, err)
	second, err := c.parentOLT()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCallParentOLTMissing(t *testing.T) {
	f := newFixture(t, oltRecord())
	dev, err := f.o.load(context.Background(), 5)
	require.NoError(t, err)

	_, err = (&call{o: f.o, dev: dev}).parentOLT()
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

func TestRemoveFromOLTThroughOLT(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	f.transport.AddCLI(oltIP, mock.NewCLI("", removeScript()...))

	_, err := f.o.Run(context.Background(), 5, "olt", "remove_from_olt", Args{"onu_id": "50"})
	require.NoError(t, err)
	assert.Empty(t, f.record(t, 50).SNMPExtra)
}

func TestRemoveFromOLTFailureKeepsLocator(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	f.transport.FailCLI(oltIP, types.Errorf(types.KindAuthFailed, "cli: login rejected"))

	_, err := f.o.Run(context.Background(), 50, "onu", "remove_from_olt", nil)
	assert.ErrorIs(t, err, types.ErrAuthFailed)
	assert.Equal(t, "268501248.3", f.record(t, 50).SNMPExtra)
	assert.Contains(t, f.log.String(), "removal failed")
	assert.Contains(t, f.log.String(), `"level":"error"`)
}

func TestRemoveFromOLTNotRegistered(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	_, err := f.o.Run(context.Background(), 50, "onu", "remove_from_olt", nil)
	assert.ErrorIs(t, err, types.ErrNotRegistered)
	assert.Zero(t, f.transport.CLIDials())
}

func TestNotifierFailureIgnored(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord("268501248.3"))
	f.notes.fails = errors.New("smtp: connection refused")
	f.transport.AddCLI(oltIP, mock.NewCLI("", removeScript()...))

	_, err := f.o.Run(context.Background(), 50, "onu", "remove_from_olt", nil)
	require.NoError(t, err)
	assert.Contains(t, f.log.String(), "notification not delivered")
}

func TestPersistDetectsConcurrentChange(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))
	onu := f.record(t, 50)
	require.NoError(t, f.store.UpdateFields(context.Background(), onu, map[string]interface{}{FieldSNMPExtra: "268501248.9"}))

	err := f.o.persist(context.Background(), onu, "", "268501248.3")
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "record changed concurrently")
	assert.Equal(t, "268501248.9", f.record(t, 50).SNMPExtra)
}

func TestPersistValidatesLocator(t *testing.T) {
	f := newFixture(t, oltRecord(), onuRecord(""))

	err := f.o.persist(context.Background(), f.record(t, 50), "", "268501248")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestScanONUListChunkSize(t *testing.T) {
	f := newFixture(t, oltRecord())
	f.o = New(f.store, f.transport, WithChunkSize(50))
	f.transport.AddSNMP(oltIP, mock.NewSNMP(map[string]interface{}{
		common.OID(zte.OIDONUSerial, fiber1, 1): "ZTEG\x12\x34\x56\x78",
	}))

	res, err := f.o.Run(context.Background(), 5, "olt", "scan_onu_list", nil)
	require.NoError(t, err)
	stream := res.(*types.ONUStream)
	assert.Equal(t, 50, stream.ChunkSize)
	assert.Equal(t, 1, stream.Total)
	onus, err := stream.Collect()
	require.NoError(t, err)
	require.Len(t, onus, 1)
	assert.Equal(t, "45:47:12:34:56:78", onus[0].MAC)
}

func TestOperations(t *testing.T) {
	assert.Contains(t, Operations(types.FamilyOLT), "register_onu_on_fiber")
	assert.Contains(t, Operations(types.FamilyONU), "read_onu_vlan_info")
	assert.Len(t, Operations(types.FamilySwitch), 14)
	assert.Empty(t, Operations("router"))
}
