package common

import (
	"context"
	"reflect"
	"testing"

	"github.com/nanoncore/nano-devctl/drivers/mock"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantValue int64
		wantOK    bool
	}{
		{name: "nil", value: nil, wantValue: 0, wantOK: false},
		{name: "int", value: int(42), wantValue: 42, wantOK: true},
		{name: "int64", value: int64(123), wantValue: 123, wantOK: true},
		{name: "uint32", value: uint32(100), wantValue: 100, wantOK: true},
		{name: "uint64", value: uint64(999), wantValue: 999, wantOK: true},
		{name: "decimal string", value: " 1024 ", wantValue: 1024, wantOK: true},
		{name: "string", value: "invalid", wantValue: 0, wantOK: false},
		{name: "negative int", value: int(-5), wantValue: -5, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotOK := Int(tt.value)
			if gotOK != tt.wantOK {
				t.Errorf("Int() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotOK && gotValue != tt.wantValue {
				t.Errorf("Int() value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}

func TestUint(t *testing.T) {
	if _, ok := Uint(int64(-1)); ok {
		t.Errorf("Uint(-1) ok = true, want false")
	}
	if v, ok := Uint(uint64(1 << 63)); !ok || v != 1<<63 {
		t.Errorf("Uint(1<<63) = %v, %v", v, ok)
	}
	if v, ok := Uint(uint64(1000000000)); !ok || v != 1000000000 {
		t.Errorf("Uint(1e9) = %v, %v", v, ok)
	}
}

func TestIsValidSNMPValue(t *testing.T) {
	tests := []struct {
		value int64
		want  bool
	}{
		{SNMPInvalidValue, false},
		{0, false},
		{-2150, true},
		{1, true},
	}
	for _, tt := range tests {
		if got := IsValidSNMPValue(tt.value); got != tt.want {
			t.Errorf("IsValidSNMPValue(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIndexParts(t *testing.T) {
	tests := []struct {
		index   string
		want    []int
		wantErr bool
	}{
		{"3.7", []int{3, 7}, false},
		{".268501504.5", []int{268501504, 5}, false},
		{"12", []int{12}, false},
		{"", nil, true},
		{"3.x", nil, true},
	}
	for _, tt := range tests {
		got, err := IndexParts(tt.index)
		if (err != nil) != tt.wantErr {
			t.Errorf("IndexParts(%q) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("IndexParts(%q) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestLastTwo(t *testing.T) {
	f, o, err := LastTwo("1.268501504.5")
	if err != nil || f != 268501504 || o != 5 {
		t.Errorf("LastTwo() = %d, %d, %v", f, o, err)
	}
	if _, _, err := LastTwo("5"); err == nil {
		t.Errorf("LastTwo(\"5\") error = nil, want error")
	}
}

func TestOID(t *testing.T) {
	if got := OID("1.3.6.1.2.1.2.2.1.7", 3); got != "1.3.6.1.2.1.2.2.1.7.3" {
		t.Errorf("OID() = %q", got)
	}
	if got := OID("1.3.6.1.4.1.3902.1012.3.28.1.1.5.", 268501504, 5); got != "1.3.6.1.4.1.3902.1012.3.28.1.1.5.268501504.5" {
		t.Errorf("OID() = %q", got)
	}
}

func TestSortedIndexes(t *testing.T) {
	rows := map[string]string{"10": "a", "2": "b", "1.5": "c", "1": "d"}
	want := []string{"1", "1.5", "2", "10"}
	if got := SortedIndexes(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedIndexes() = %v, want %v", got, want)
	}
}

func TestWalkHelpers(t *testing.T) {
	ctx := context.Background()
	s := mock.NewSNMP(map[string]interface{}{
		"1.3.6.1.2.1.31.1.1.1.1.1": "Ethernet0/0/1",
		"1.3.6.1.2.1.31.1.1.1.1.2": "Ethernet0/0/2",
		"1.3.6.1.2.1.2.2.1.8.1":    int64(1),
		"1.3.6.1.2.1.2.2.1.8.2":    int64(2),
		"1.3.6.1.2.1.1.5.0":        "sw-core",
	})

	names, err := WalkStrings(ctx, s, "1.3.6.1.2.1.31.1.1.1.1")
	if err != nil {
		t.Fatalf("WalkStrings() error = %v", err)
	}
	if names["2"] != "Ethernet0/0/2" || len(names) != 2 {
		t.Errorf("WalkStrings() = %v", names)
	}

	status, err := WalkInts(ctx, s, "1.3.6.1.2.1.2.2.1.8")
	if err != nil {
		t.Fatalf("WalkInts() error = %v", err)
	}
	if status["1"] != 1 || status["2"] != 2 {
		t.Errorf("WalkInts() = %v", status)
	}

	name, err := GetString(ctx, s, "1.3.6.1.2.1.1.5.0")
	if err != nil || name != "sw-core" {
		t.Errorf("GetString() = %q, %v", name, err)
	}
	_, ok, err := GetInt(ctx, s, "1.3.6.1.2.1.1.3.0")
	if err != nil || ok {
		t.Errorf("GetInt(missing) ok = %v, err = %v", ok, err)
	}
}
