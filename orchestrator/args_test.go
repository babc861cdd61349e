package orchestrator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nanoncore/nano-devctl/types"
)

func TestArgsInt(t *testing.T) {
	args := Args{
		"int":     7,
		"int64":   int64(8),
		"float":   float64(9),
		"string":  " 10 ",
		"half":    1.5,
		"word":    "ten",
		"boolean": true,
		"null":    nil,
	}
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"int", 7, false},
		{"int64", 8, false},
		{"float", 9, false},
		{"string", 10, false},
		{"half", 0, true},
		{"word", 0, true},
		{"boolean", 0, true},
		{"null", 0, true},
		{"absent", 0, true},
	}
	for _, tt := range tests {
		got, err := args.Int(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Int(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, types.ErrValidation) {
			t.Errorf("Int(%q) error = %v, want a ValidationError", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestArgsOptional(t *testing.T) {
	args := Args{"slot": float64(3), "name": "client", "save": "true", "bad": 1}

	if n, err := args.OptInt("slot", 0); err != nil || n != 3 {
		t.Errorf("OptInt(slot) = %d, %v, want 3", n, err)
	}
	if n, err := args.OptInt("fiber", 0); err != nil || n != 0 {
		t.Errorf("OptInt(fiber) = %d, %v, want 0", n, err)
	}
	if s, err := args.OptString("name", ""); err != nil || s != "client" {
		t.Errorf("OptString(name) = %q, %v, want client", s, err)
	}
	if _, err := args.OptString("bad", ""); !errors.Is(err, types.ErrValidation) {
		t.Errorf("OptString(bad) error = %v, want a ValidationError", err)
	}
	if b, err := args.OptBool("save", false); err != nil || !b {
		t.Errorf("OptBool(save) = %v, %v, want true", b, err)
	}
	if b, err := args.OptBool("missing", true); err != nil || !b {
		t.Errorf("OptBool(missing) = %v, %v, want the default", b, err)
	}
	if _, err := args.String("missing"); !errors.Is(err, types.ErrValidation) {
		t.Errorf("String(missing) error = %v, want a ValidationError", err)
	}
	if _, err := (Args{"serial": ""}).String("serial"); !errors.Is(err, types.ErrValidation) {
		t.Errorf("String(empty) error = %v, want a ValidationError", err)
	}
}

func TestArgsVLANs(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    []types.VLAN
		wantErr bool
	}{
		{
			name:  "decoded json",
			value: []interface{}{map[string]interface{}{"vid": float64(501), "native": true, "title": "mgmt"}},
			want:  []types.VLAN{{VID: 501, Native: true, Title: "mgmt"}},
		},
		{
			name:  "bare vids",
			value: []interface{}{float64(10), float64(20)},
			want:  []types.VLAN{{VID: 10}, {VID: 20}},
		},
		{
			name:  "json text",
			value: `[100, {"vid": 200, "native": true}]`,
			want:  []types.VLAN{{VID: 100}, {VID: 200, Native: true}},
		},
		{
			name:  "typed slice",
			value: []types.VLAN{{VID: 7}},
			want:  []types.VLAN{{VID: 7}},
		},
		{name: "scalar", value: float64(3), wantErr: true},
		{name: "bad text", value: "[100,", wantErr: true},
		{name: "bad item", value: []interface{}{"x"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := Args{"vlans": tt.value}.VLANs("vlans")
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: VLANs() error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, types.ErrValidation) {
				t.Errorf("%s: VLANs() error = %v, want a ValidationError", tt.name, err)
			}
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: VLANs() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestArgsVLANConfig(t *testing.T) {
	got, err := Args{"vlan_config": `[{"port": 2, "vids": [{"vid": 143}, {"vid": 100, "native": true}]}]`}.VLANConfig("vlan_config")
	if err != nil {
		t.Fatalf("VLANConfig() error = %v", err)
	}
	want := []types.PortVLANConfig{{Port: 2, VIDs: []types.PortVID{{VID: 143}, {VID: 100, Native: true}}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("VLANConfig() = %+v, want %+v", got, want)
	}

	if _, err := (Args{}).VLANConfig("vlan_config"); !errors.Is(err, types.ErrValidation) {
		t.Errorf("VLANConfig(absent) error = %v, want a ValidationError", err)
	}
}
