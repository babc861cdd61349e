package zte

import (
	"errors"
	"testing"

	"github.com/nanoncore/nano-devctl/types"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"%Error 20133: onu is existed", types.ErrConfiguration},
		{"%Code 32310-GPONSRV : SN is existed.", types.ErrConfiguration},
		{"%Error 20140: The number of onu reaches the max.", types.ErrFiberFull},
		{"%Error 20201: The onu type does not exist.", types.ErrConfiguration},
		{"%Code 20209-GPONSRV : No such onu.", types.ErrNotFound},
		{"% Invalid input detected at '^' marker.", types.ErrConsole},
		{"%Error 99999: something new", types.ErrConsole},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if err := TranslateError(tt.line); !errors.Is(err, tt.want) {
				t.Errorf("TranslateError(%q) = %v, want kind of %v", tt.line, err, tt.want)
			}
		})
	}
}

func TestCheckOutput(t *testing.T) {
	if err := CheckOutput([]string{"", "  Building configuration...", "[OK]"}); err != nil {
		t.Errorf("clean output: %v", err)
	}
	err := CheckOutput([]string{"", "%Error 20209: no such onu", "ZXAN(config-if)#"})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if want := "onu does not exist (%Error 20209: no such onu)"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
