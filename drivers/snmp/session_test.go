package snmp

import (
	"context"
	"errors"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/nanoncore/nano-devctl/types"
)

func TestDialRequiresHostname(t *testing.T) {
	_, err := Dial(context.Background(), "", "public", Config{})
	if !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("Dial(\"\") error = %v, want ConfigurationError", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		pdu  gosnmp.SnmpPDU
		want interface{}
	}{
		{"octet string", gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("eth1")}, "eth1"},
		{"nosuchinstance sentinel", gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("NOSUCHINSTANCE")}, nil},
		{"no such instance", gosnmp.SnmpPDU{Type: gosnmp.NoSuchInstance}, nil},
		{"no such object", gosnmp.SnmpPDU{Type: gosnmp.NoSuchObject}, nil},
		{"integer", gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: 2}, int64(2)},
		{"counter32", gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: uint(10)}, uint64(10)},
		{"gauge32", gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(1000000000)}, uint64(1000000000)},
		{"timeticks", gosnmp.SnmpPDU{Type: gosnmp.TimeTicks, Value: uint32(12345)}, uint64(12345)},
		{"counter64", gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: uint64(1 << 40)}, uint64(1 << 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.pdu); got != tt.want {
				t.Errorf("Normalize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToPDU(t *testing.T) {
	pdu, err := toPDU(types.SNMPVar{OID: "1.3.6.1.2.1.2.2.1.7.3", Type: types.SNMPInteger, Value: 2})
	if err != nil {
		t.Fatalf("toPDU() error = %v", err)
	}
	if pdu.Name != ".1.3.6.1.2.1.2.2.1.7.3" || pdu.Type != gosnmp.Integer || pdu.Value != 2 {
		t.Errorf("toPDU() = %+v", pdu)
	}

	pdu, err = toPDU(types.SNMPVar{OID: ".1.3", Type: types.SNMPOctetString, Value: []byte{0x02, 0, 0, 0}})
	if err != nil {
		t.Fatalf("toPDU() error = %v", err)
	}
	if b, ok := pdu.Value.([]byte); !ok || len(b) != 4 || b[0] != 0x02 {
		t.Errorf("toPDU() octet value = %#v", pdu.Value)
	}

	if _, err := toPDU(types.SNMPVar{OID: "1.3", Type: types.SNMPInteger, Value: "x"}); !errors.Is(err, types.ErrValidation) {
		t.Errorf("toPDU(bad integer) error = %v, want ValidationError", err)
	}
	if _, err := toPDU(types.SNMPVar{OID: "1.3", Type: types.SNMPIPAddress, Value: "300.1.1.1"}); err == nil {
		t.Errorf("toPDU(bad ip) = nil error")
	}
}

func TestClassify(t *testing.T) {
	if err := classify(errors.New("request timeout (after 1 retries)"), "get"); !errors.Is(err, types.ErrTimeout) {
		t.Errorf("classify(timeout) = %v, want TimeoutError", err)
	}
	if err := classify(context.DeadlineExceeded, "get"); !errors.Is(err, types.ErrTimeout) {
		t.Errorf("classify(deadline) = %v, want TimeoutError", err)
	}
	if err := classify(errors.New("connection refused"), "get"); !errors.Is(err, types.ErrConnection) {
		t.Errorf("classify(refused) = %v, want ConnectionError", err)
	}
}
