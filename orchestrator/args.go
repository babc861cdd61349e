package orchestrator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
)

// Args are the JSON-shaped arguments of an operation. Numbers may arrive
// as float64 (decoded JSON), as Go integers or as decimal strings (command
// line).
type Args map[string]interface{}

func missing(name string) error {
	return types.Errorf(types.KindValidation, "argument %q is required", name)
}

func illTyped(name string, v interface{}, want string) error {
	return types.Errorf(types.KindValidation, "argument %q: want %s, got %T", name, want, v)
}

// Int returns a required integer argument.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, missing(name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, illTyped(name, v, "an integer")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, illTyped(name, v, "an integer")
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, illTyped(name, v, "an integer")
		}
		return i, nil
	}
	return 0, illTyped(name, v, "an integer")
}

// OptInt returns an integer argument or def when it is absent.
func (a Args) OptInt(name string, def int) (int, error) {
	if v, ok := a[name]; !ok || v == nil {
		return def, nil
	}
	return a.Int(name)
}

// String returns a required, non-empty string argument.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", illTyped(name, v, "a string")
	}
	if s == "" {
		return "", missing(name)
	}
	return s, nil
}

// OptString returns a string argument or def when it is absent.
func (a Args) OptString(name, def string) (string, error) {
	if v, ok := a[name]; !ok || v == nil {
		return def, nil
	}
	s, ok := a[name].(string)
	if !ok {
		return "", illTyped(name, a[name], "a string")
	}
	return s, nil
}

// OptBool returns a boolean argument or def when it is absent.
func (a Args) OptBool(name string, def bool) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, illTyped(name, v, "a boolean")
		}
		return parsed, nil
	}
	return false, illTyped(name, v, "a boolean")
}

// decode converts a structured argument into out through its JSON form.
func (a Args) decode(name string, out interface{}) error {
	v, ok := a[name]
	if !ok || v == nil {
		return missing(name)
	}
	if s, isString := v.(string); isString {
		if err := json.Unmarshal([]byte(s), out); err != nil {
			return types.Wrap(types.KindValidation, err, "argument %q", name)
		}
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return types.Wrap(types.KindValidation, err, "argument %q", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return types.Wrap(types.KindValidation, err, "argument %q", name)
	}
	return nil
}

// VLANs returns a list of VLANs. Bare numbers are accepted as tagged vids.
func (a Args) VLANs(name string) ([]types.VLAN, error) {
	var raw []json.RawMessage
	if err := a.decode(name, &raw); err != nil {
		return nil, err
	}
	out := make([]types.VLAN, 0, len(raw))
	for _, item := range raw {
		var vid int
		if err := json.Unmarshal(item, &vid); err == nil {
			out = append(out, types.VLAN{VID: vid})
			continue
		}
		var v types.VLAN
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, types.Wrap(types.KindValidation, err, "argument %q", name)
		}
		out = append(out, v)
	}
	return out, nil
}

// VLANConfig returns a vlanConfig list.
func (a Args) VLANConfig(name string) ([]types.PortVLANConfig, error) {
	var cfg []types.PortVLANConfig
	if err := a.decode(name, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
