// Package mock replays device exchanges without hardware. SNMP is an
// in-memory OID tree that records writes; CLI replays a scripted dialogue.
package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nanoncore/nano-devctl/types"
)

// SNMP is an in-memory types.SNMPSession. Writes are recorded and, unless
// ReadOnly is set, applied to the tree so later reads observe them.
type SNMP struct {
	// ReadOnly keeps writes out of the tree
	ReadOnly bool

	mu       sync.Mutex
	values   map[string]interface{}
	failures map[string]error
	sets     [][]types.SNMPVar
	gets     []string
	closed   int
}

var _ types.SNMPSession = (*SNMP)(nil)

// NewSNMP builds a session over values, keyed by OID with or without the
// leading dot.
func NewSNMP(values map[string]interface{}) *SNMP {
	m := &SNMP{
		values:   make(map[string]interface{}, len(values)),
		failures: make(map[string]error),
	}
	for oid, v := range values {
		m.values[trimOID(oid)] = v
	}
	return m
}

// Put stores a value.
func (m *SNMP) Put(oid string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[trimOID(oid)] = value
}

// Fail makes every request under prefix return err.
func (m *SNMP) Fail(prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[trimOID(prefix)] = err
}

// Sets returns the recorded SetMulti requests in order. Set calls are
// recorded as single-variable requests.
func (m *SNMP) Sets() [][]types.SNMPVar {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]types.SNMPVar, len(m.sets))
	copy(out, m.sets)
	return out
}

// Gets returns the OIDs requested with Get, in order and without the
// leading dot.
func (m *SNMP) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gets...)
}

// Closed reports how many times Close was called.
func (m *SNMP) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Get implements types.SNMPSession.
func (m *SNMP) Get(ctx context.Context, oid string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oid = trimOID(oid)
	m.gets = append(m.gets, oid)
	if err := m.check(ctx, oid); err != nil {
		return nil, err
	}
	v, ok := m.values[oid]
	if !ok || isNoSuchInstance(v) {
		return nil, nil
	}
	return v, nil
}

// GetNext implements types.SNMPSession.
func (m *SNMP) GetNext(ctx context.Context, oid string) (string, interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oid = trimOID(oid)
	if err := m.check(ctx, oid); err != nil {
		return "", nil, err
	}
	for _, k := range m.sortedKeys() {
		if compareOID(k, oid) > 0 {
			return "." + k, m.values[k], nil
		}
	}
	return "", nil, nil
}

// Walk implements types.SNMPSession.
func (m *SNMP) Walk(ctx context.Context, oid string, fn types.WalkFunc) error {
	m.mu.Lock()
	base := trimOID(oid)
	if err := m.check(ctx, base); err != nil {
		m.mu.Unlock()
		return err
	}
	type row struct {
		index string
		value interface{}
	}
	var rows []row
	for _, k := range m.sortedKeys() {
		if !strings.HasPrefix(k, base+".") {
			continue
		}
		if isNoSuchInstance(m.values[k]) {
			continue
		}
		rows = append(rows, row{strings.TrimPrefix(k, base+"."), m.values[k]})
	}
	m.mu.Unlock()

	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return types.Wrap(types.KindTimeout, err, "snmp walk %s", oid)
		}
		if err := fn(r.index, r.value); err != nil {
			return err
		}
	}
	return nil
}

// Set implements types.SNMPSession.
func (m *SNMP) Set(ctx context.Context, oid string, value interface{}, typ types.SNMPType) error {
	return m.SetMulti(ctx, []types.SNMPVar{{OID: oid, Type: typ, Value: value}})
}

// SetMulti implements types.SNMPSession.
func (m *SNMP) SetMulti(ctx context.Context, vars []types.SNMPVar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range vars {
		if err := m.check(ctx, trimOID(v.OID)); err != nil {
			return err
		}
	}
	rec := make([]types.SNMPVar, len(vars))
	for i, v := range vars {
		rec[i] = v
		rec[i].OID = trimOID(v.OID)
		if b, ok := v.Value.([]byte); ok {
			rec[i].Value = append([]byte(nil), b...)
		}
	}
	m.sets = append(m.sets, rec)
	if m.ReadOnly {
		return nil
	}
	for _, v := range rec {
		switch val := v.Value.(type) {
		case []byte:
			m.values[v.OID] = string(val)
		case int:
			m.values[v.OID] = int64(val)
		default:
			m.values[v.OID] = val
		}
	}
	return nil
}

// Close implements types.SNMPSession.
func (m *SNMP) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *SNMP) check(ctx context.Context, oid string) error {
	if err := ctx.Err(); err != nil {
		return types.Wrap(types.KindTimeout, err, "snmp %s", oid)
	}
	for prefix, err := range m.failures {
		if oid == prefix || strings.HasPrefix(oid, prefix+".") {
			return err
		}
	}
	return nil
}

func (m *SNMP) sortedKeys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return compareOID(keys[i], keys[j]) < 0 })
	return keys
}

func isNoSuchInstance(v interface{}) bool {
	s, ok := v.(string)
	return ok && s == "NOSUCHINSTANCE"
}

func trimOID(oid string) string {
	return strings.Trim(oid, ".")
}

func compareOID(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, _ := strconv.Atoi(as[i])
		y, _ := strconv.Atoi(bs[i])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}
