package common

import (
	"reflect"
	"testing"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"no ANSI codes", "gpon-onu_1/2/1:5", "gpon-onu_1/2/1:5"},
		{"red text", "\x1b[31m%Error 20209\x1b[0m", "%Error 20209"},
		{"cursor movement", "\x1b[2J\x1b[HOLT#", "OLT#"},
		{"256 color code", "\x1b[38;5;196mBright Red\x1b[0m", "Bright Red"},
		{"erase line", "\x1b[0mOLT(config)#\x1b[K show run", "OLT(config)# show run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.input); got != tt.want {
				t.Errorf("StripANSI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanLines(t *testing.T) {
	in := []string{
		"OnuIndex                 Sn                  State",
		"---------------------------------------------------",
		"",
		"\x1b[32mgpon-onu_1/1/2:1\x1b[0m         ZTEGC8A1B2C3        unknown   ",
		" --More-- \x08\x08\x08\x08\x08\x08\x08\x08\x08\x08          \x08\x08\x08\x08\x08\x08\x08\x08\x08\x08gpon-onu_1/1/2:2         ZTEGC8A1B2C4        unknown",
		"   ",
	}
	want := []string{
		"OnuIndex                 Sn                  State",
		"---------------------------------------------------",
		"gpon-onu_1/1/2:1         ZTEGC8A1B2C3        unknown",
		"gpon-onu_1/1/2:2         ZTEGC8A1B2C4        unknown",
	}
	if got := CleanLines(in); !reflect.DeepEqual(got, want) {
		t.Errorf("CleanLines() =\n%q\nwant\n%q", got, want)
	}
}
