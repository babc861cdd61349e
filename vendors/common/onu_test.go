package common

import (
	"context"
	"reflect"
	"testing"

	"github.com/nanoncore/nano-devctl/drivers/mock"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

func TestPortVIDs(t *testing.T) {
	tests := []struct {
		name    string
		access  int64
		trunk   string
		want    []types.PortVID
		wantErr bool
	}{
		{name: "access only", access: 100, want: []types.PortVID{{VID: 100, Native: true}}},
		{name: "trunk only", trunk: "10,20-21", want: []types.PortVID{{VID: 10}, {VID: 20}, {VID: 21}}},
		{name: "access in trunk", access: 20, trunk: "20-21", want: []types.PortVID{{VID: 20, Native: true}, {VID: 21}}},
		{name: "padded trunk", trunk: "5\x00\x00 ", want: []types.PortVID{{VID: 5}}},
		{name: "invalid access skipped", access: 4095, trunk: "7", want: []types.PortVID{{VID: 7}}},
		{name: "nothing", want: nil},
		{name: "bad trunk", trunk: "x-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PortVIDs(tt.access, tt.trunk)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PortVIDs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PortVIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultPortVLANs(t *testing.T) {
	dev := &model.Device{Parent: &model.Device{ExtraData: model.ExtraData{ExtraDefaultVID: "77"}}}
	got := DefaultPortVLANs(dev, 2)
	want := []types.PortVLANConfig{
		{Port: 1, VIDs: []types.PortVID{{VID: 77, Native: true}}},
		{Port: 2, VIDs: []types.PortVID{{VID: 77, Native: true}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultPortVLANs() = %v, want %v", got, want)
	}

	if got := DefaultPortVLANs(&model.Device{}, 1); got[0].VIDs[0].VID != 1 {
		t.Errorf("DefaultPortVLANs() without parent = %v, want vid 1", got)
	}
}

func TestReadONUPortVLANs(t *testing.T) {
	s := mock.NewSNMP(map[string]interface{}{
		"1.3.6.1.9.1.268501504.5.1": int64(200),
		"1.3.6.1.9.2.268501504.5.1": "300-301",
		"1.3.6.1.9.2.268501504.5.2": "bogus",
	})
	got, err := ReadONUPortVLANs(context.Background(), s, "1.3.6.1.9.1", "1.3.6.1.9.2", "268501504.5", 1)
	if err != nil {
		t.Fatalf("ReadONUPortVLANs() error = %v", err)
	}
	want := []types.PortVLANConfig{{Port: 1, VIDs: []types.PortVID{{VID: 200, Native: true}, {VID: 300}, {VID: 301}}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadONUPortVLANs() = %v, want %v", got, want)
	}

	if _, err := ReadONUPortVLANs(context.Background(), s, "1.3.6.1.9.1", "1.3.6.1.9.2", "268501504.5", 2); err == nil {
		t.Error("ReadONUPortVLANs() with a bad trunk list succeeded")
	}
}
