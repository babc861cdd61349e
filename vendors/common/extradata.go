package common

import (
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/model"
)

// Well-known extra_data keys.
const (
	ExtraLogin       = "login"
	ExtraPassword    = "password"
	ExtraTransport   = "transport"
	ExtraCLIPort     = "cli_port"
	ExtraDefaultVID  = "default_vid"
	ExtraSNMPVersion = "snmp_version"
)

// ExtraString retrieves a string from extra_data. Keys are checked in
// order and the first match wins. Numbers are rendered in decimal.
func ExtraString(data model.ExtraData, keys ...string) (string, bool) {
	if data == nil {
		return "", false
	}
	for _, key := range keys {
		switch v := data[key].(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		case int64:
			return strconv.FormatInt(v, 10), true
		}
	}
	return "", false
}

// ExtraInt retrieves an integer from extra_data. JSON numbers decode as
// float64 and are accepted when integral; decimal strings are parsed.
func ExtraInt(data model.ExtraData, keys ...string) (int, bool) {
	if data == nil {
		return 0, false
	}
	for _, key := range keys {
		switch v := data[key].(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case float64:
			if v == float64(int(v)) {
				return int(v), true
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// ExtraStringWithDefault retrieves a string, or returns defaultValue.
func ExtraStringWithDefault(data model.ExtraData, defaultValue string, keys ...string) string {
	if value, ok := ExtraString(data, keys...); ok && value != "" {
		return value
	}
	return defaultValue
}

// ExtraIntWithDefault retrieves an integer, or returns defaultValue.
func ExtraIntWithDefault(data model.ExtraData, defaultValue int, keys ...string) int {
	if value, ok := ExtraInt(data, keys...); ok {
		return value
	}
	return defaultValue
}

// DefaultVID is the default VLAN of an ONU: the parent OLT's default_vid,
// or 1 when the parent is unknown or carries none.
func DefaultVID(dev *model.Device) int {
	if dev == nil || dev.Parent == nil {
		return 1
	}
	vid := ExtraIntWithDefault(dev.Parent.ExtraData, 1, ExtraDefaultVID)
	if vid < 1 || vid > 4094 {
		return 1
	}
	return vid
}
