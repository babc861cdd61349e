package common

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
)

// SNMPInvalidValue is the magic value some agents return for an offline
// unit or a reading that could not be taken.
const SNMPInvalidValue int64 = 2147483647

// Int extracts an int64 from the numeric types an SNMP session may return.
// Decimal strings are accepted as well: several agents report counters as
// octet strings.
func Int(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Uint extracts a non-negative counter value.
func Uint(value interface{}) (uint64, bool) {
	n, ok := Int(value)
	if !ok || n < 0 {
		if u, isU := value.(uint64); isU {
			return u, true
		}
		return 0, false
	}
	return uint64(n), true
}

// String extracts a string from an octet-string value.
func String(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// IsValidSNMPValue reports whether a reading is neither zero nor the invalid marker.
func IsValidSNMPValue(value int64) bool {
	return value != SNMPInvalidValue && value != 0
}

// GetString reads oid as a string. A missing instance is "".
func GetString(ctx context.Context, s types.SNMPSession, oid string) (string, error) {
	v, err := s.Get(ctx, oid)
	if err != nil {
		return "", err
	}
	str, _ := String(v)
	return str, nil
}

// GetInt reads oid as an integer. ok is false for a missing instance.
func GetInt(ctx context.Context, s types.SNMPSession, oid string) (n int64, ok bool, err error) {
	v, err := s.Get(ctx, oid)
	if err != nil {
		return 0, false, err
	}
	n, ok = Int(v)
	return n, ok, nil
}

// WalkMap collects the subtree under oid keyed by row index.
func WalkMap(ctx context.Context, s types.SNMPSession, oid string) (map[string]interface{}, error) {
	rows := make(map[string]interface{})
	err := s.Walk(ctx, oid, func(index string, value interface{}) error {
		rows[index] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// WalkStrings collects a string column keyed by row index.
func WalkStrings(ctx context.Context, s types.SNMPSession, oid string) (map[string]string, error) {
	rows := make(map[string]string)
	err := s.Walk(ctx, oid, func(index string, value interface{}) error {
		if str, ok := String(value); ok {
			rows[index] = str
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// WalkInts collects an integer column keyed by row index.
func WalkInts(ctx context.Context, s types.SNMPSession, oid string) (map[string]int64, error) {
	rows := make(map[string]int64)
	err := s.Walk(ctx, oid, func(index string, value interface{}) error {
		if n, ok := Int(value); ok {
			rows[index] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IndexParts splits a row index such as "3.7" into its integer components.
func IndexParts(index string) ([]int, error) {
	index = strings.Trim(index, ".")
	if index == "" {
		return nil, types.Errorf(types.KindValidation, "empty snmp index")
	}
	fields := strings.Split(index, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, types.Errorf(types.KindValidation, "snmp index %q: %q is not a number", index, f)
		}
		parts[i] = n
	}
	return parts, nil
}

// LastTwo returns the two trailing components of an index, the usual
// (fiber, onu) pair of PON tables.
func LastTwo(index string) (int, int, error) {
	parts, err := IndexParts(index)
	if err != nil {
		return 0, 0, err
	}
	if len(parts) < 2 {
		return 0, 0, types.Errorf(types.KindValidation, "snmp index %q has fewer than two parts", index)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// OID joins a base OID and numeric index components.
func OID(base string, parts ...int) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "."))
	for _, p := range parts {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(p))
	}
	return b.String()
}

// SortedIndexes returns the keys of rows in numeric OID order.
func SortedIndexes[V any](rows map[string]V) []string {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return CompareOID(keys[i], keys[j]) < 0 })
	return keys
}

// CompareOID orders two dotted OIDs component by component.
func CompareOID(a, b string) int {
	as := strings.Split(strings.Trim(a, "."), ".")
	bs := strings.Split(strings.Trim(b, "."), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, errX := strconv.Atoi(as[i])
		y, errY := strconv.Atoi(bs[i])
		if errX != nil || errY != nil {
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
