// Package snmp is the gosnmp-backed SNMP session used by the drivers.
// Sessions are cheap: callers open one per operation and close it on every
// exit path.
package snmp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/hashicorp/go-multierror"
	"github.com/nanoncore/nano-devctl/types"
)

// Defaults.
const (
	DefaultPort    = 161
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 1
)

// noSuchInstance is the string some agents return instead of an exception PDU.
const noSuchInstance = "NOSUCHINSTANCE"

// Config holds the per-session protocol settings.
type Config struct {
	// Port is the agent UDP port (default 161)
	Port uint16

	// Timeout is the per-request timeout (default 5s)
	Timeout time.Duration

	// Retries is the number of retransmissions per request
	Retries int

	// Version is "1" or "2c" (default)
	Version string
}

// Session implements types.SNMPSession over gosnmp.
type Session struct {
	client *gosnmp.GoSNMP
}

var _ types.SNMPSession = (*Session)(nil)

// Dial opens a session to target. An empty target is a ConfigurationError.
func Dial(ctx context.Context, target, community string, cfg Config) (*Session, error) {
	if target == "" {
		return nil, types.Errorf(types.KindConfiguration, "snmp: hostname is required")
	}
	if community == "" {
		community = "public"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	version := gosnmp.Version2c
	if cfg.Version == "1" {
		version = gosnmp.Version1
	}

	client := &gosnmp.GoSNMP{
		Target:    target,
		Port:      cfg.Port,
		Community: community,
		Version:   version,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return nil, types.Wrap(types.KindConnection, err, "snmp: connect %s", target)
	}
	return &Session{client: client}, nil
}

// Get reads a single OID. Missing instances are (nil, nil).
func (s *Session) Get(ctx context.Context, oid string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err, "snmp get %s", oid)
	}
	result, err := s.client.Get([]string{oid})
	if err != nil {
		return nil, classify(err, "snmp get %s", oid)
	}
	if len(result.Variables) == 0 {
		return nil, nil
	}
	return Normalize(result.Variables[0]), nil
}

// GetNext returns the next OID after oid. At the end of the MIB it returns
// an empty OID and a nil value.
func (s *Session) GetNext(ctx context.Context, oid string) (string, interface{}, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, classify(err, "snmp getnext %s", oid)
	}
	result, err := s.client.GetNext([]string{oid})
	if err != nil {
		return "", nil, classify(err, "snmp getnext %s", oid)
	}
	if len(result.Variables) == 0 || result.Variables[0].Type == gosnmp.EndOfMibView {
		return "", nil, nil
	}
	v := result.Variables[0]
	return v.Name, Normalize(v), nil
}

// Walk streams the subtree under oid. v2c sessions use GETBULK.
func (s *Session) Walk(ctx context.Context, oid string, fn types.WalkFunc) error {
	base := "." + strings.TrimPrefix(oid, ".")
	walk := s.client.BulkWalk
	if s.client.Version == gosnmp.Version1 {
		walk = s.client.Walk
	}
	err := walk(base, func(pdu gosnmp.SnmpPDU) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		value := Normalize(pdu)
		if value == nil {
			return nil
		}
		index := strings.TrimPrefix(strings.TrimPrefix(pdu.Name, base), ".")
		return fn(index, value)
	})
	if err != nil {
		var te *types.Error
		if errors.As(err, &te) {
			return err
		}
		return classify(err, "snmp walk %s", oid)
	}
	return nil
}

// Set writes one value.
func (s *Session) Set(ctx context.Context, oid string, value interface{}, typ types.SNMPType) error {
	return s.SetMulti(ctx, []types.SNMPVar{{OID: oid, Type: typ, Value: value}})
}

// SetMulti writes several values in one PDU.
func (s *Session) SetMulti(ctx context.Context, vars []types.SNMPVar) error {
	if len(vars) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return classify(err, "snmp set")
	}
	pdus := make([]gosnmp.SnmpPDU, 0, len(vars))
	for _, v := range vars {
		pdu, err := toPDU(v)
		if err != nil {
			return err
		}
		pdus = append(pdus, pdu)
	}
	result, err := s.client.Set(pdus)
	if err != nil {
		return classify(err, "snmp set %s", vars[0].OID)
	}
	if result.Error != gosnmp.NoError {
		return types.Errorf(types.KindConfiguration, "snmp set %s: device replied %v at index %d",
			vars[0].OID, result.Error, result.ErrorIndex)
	}
	return nil
}

// Close releases the UDP socket.
func (s *Session) Close() error {
	var result *multierror.Error
	if s.client != nil && s.client.Conn != nil {
		if err := s.client.Conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		s.client.Conn = nil
	}
	return result.ErrorOrNil()
}

// Normalize converts a PDU value to the types.SNMPSession value set.
func Normalize(pdu gosnmp.SnmpPDU) interface{} {
	switch pdu.Type {
	case gosnmp.NoSuchInstance, gosnmp.NoSuchObject, gosnmp.EndOfMibView, gosnmp.Null:
		return nil
	case gosnmp.OctetString:
		var s string
		switch v := pdu.Value.(type) {
		case []byte:
			s = string(v)
		case string:
			s = v
		}
		if s == noSuchInstance {
			return nil
		}
		return s
	case gosnmp.Integer:
		if v, ok := pdu.Value.(int); ok {
			return int64(v)
		}
		return pdu.Value
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Uinteger32:
		switch v := pdu.Value.(type) {
		case uint:
			return uint64(v)
		case uint32:
			return uint64(v)
		}
		return pdu.Value
	case gosnmp.TimeTicks:
		if v, ok := pdu.Value.(uint32); ok {
			return uint64(v)
		}
		return pdu.Value
	case gosnmp.Counter64:
		return gosnmp.ToBigInt(pdu.Value).Uint64()
	default:
		return pdu.Value
	}
}

func toPDU(v types.SNMPVar) (gosnmp.SnmpPDU, error) {
	name := "." + strings.TrimPrefix(v.OID, ".")
	switch v.Type {
	case types.SNMPInteger:
		n, ok := toInt(v.Value)
		if !ok {
			return gosnmp.SnmpPDU{}, types.Errorf(types.KindValidation, "snmp set %s: %T is not an integer", v.OID, v.Value)
		}
		return gosnmp.SnmpPDU{Name: name, Type: gosnmp.Integer, Value: n}, nil
	case types.SNMPOctetString:
		switch b := v.Value.(type) {
		case []byte:
			return gosnmp.SnmpPDU{Name: name, Type: gosnmp.OctetString, Value: b}, nil
		case string:
			return gosnmp.SnmpPDU{Name: name, Type: gosnmp.OctetString, Value: []byte(b)}, nil
		}
		return gosnmp.SnmpPDU{}, types.Errorf(types.KindValidation, "snmp set %s: %T is not an octet string", v.OID, v.Value)
	case types.SNMPGauge, types.SNMPUnsigned:
		n, ok := toInt(v.Value)
		if !ok || n < 0 {
			return gosnmp.SnmpPDU{}, types.Errorf(types.KindValidation, "snmp set %s: %v is not unsigned", v.OID, v.Value)
		}
		typ := gosnmp.Gauge32
		if v.Type == types.SNMPUnsigned {
			typ = gosnmp.Uinteger32
		}
		return gosnmp.SnmpPDU{Name: name, Type: typ, Value: uint32(n)}, nil
	case types.SNMPIPAddress:
		s, ok := v.Value.(string)
		if !ok || net.ParseIP(s) == nil {
			return gosnmp.SnmpPDU{}, types.Errorf(types.KindValidation, "snmp set %s: %v is not an ip address", v.OID, v.Value)
		}
		return gosnmp.SnmpPDU{Name: name, Type: gosnmp.IPAddress, Value: s}, nil
	}
	return gosnmp.SnmpPDU{}, types.Errorf(types.KindValidation, "snmp set %s: unknown type %d", v.OID, v.Type)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// classify maps gosnmp and socket errors onto the taxonomy.
func classify(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		return types.Wrap(types.KindTimeout, err, "%s", msg)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.Wrap(types.KindTimeout, err, "%s", msg)
	}
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return types.Wrap(types.KindTimeout, err, "%s", msg)
	}
	return types.Wrap(types.KindConnection, err, "%s", msg)
}
