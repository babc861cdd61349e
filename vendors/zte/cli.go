package zte

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// CLIProfile is the ZXAN login dialogue. Paging is turned off right after
// login so long tables arrive in one piece.
var CLIProfile = types.CLIProfile{
	UserPrompt: "Username:",
	PassPrompt: "Password:",
	Ready:      []string{"#"},
	Rejected:   []string{"%Error 20200", "Bad Password", "Authentication failed"},
	Setup:      []string{"terminal length 0"},
}

// Prompt literals.
const (
	PromptExec      = "#"
	PromptConfig    = "(config)#"
	PromptInterface = "(config-if)#"
	PromptONUMng    = "(gpon-onu-mng)#"
)

// Shelf is the only shelf of a C320 chassis.
const Shelf = 1

// NoUncfg is what "show gpon onu uncfg" prints when no unit is waiting.
const NoUncfg = "No related information to show"

// OLTInterface names the gpon-olt interface of (rack, fiber).
func OLTInterface(rack, fiber int) string {
	return fmt.Sprintf("gpon-olt_%d/%d/%d", Shelf, rack, fiber)
}

// ONUInterface names the gpon-onu interface of an ONU.
func ONUInterface(l codec.Locator) string {
	return fmt.Sprintf("gpon-onu_%d/%d/%d:%d", Shelf, l.Rack, l.Fiber, l.ONU)
}

// UncfgUnit is a row of "show gpon onu uncfg".
type UncfgUnit struct {
	Shelf  int
	Rack   int
	Fiber  int
	Serial string
}

var uncfgRowRE = regexp.MustCompile(`^gpon-onu_(\d+)/(\d+)/(\d+):\d+\s+(\S+)`)

// ParseUncfg parses the unconfigured-unit table. ok is false when the OLT
// reports that nothing is waiting.
func ParseUncfg(lines []string) (units []UncfgUnit, ok bool) {
	for _, l := range common.CleanLines(lines) {
		if strings.Contains(l, NoUncfg) {
			return nil, false
		}
		m := uncfgRowRE.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		shelf, _ := strconv.Atoi(m[1])
		rack, _ := strconv.Atoi(m[2])
		fiber, _ := strconv.Atoi(m[3])
		units = append(units, UncfgUnit{Shelf: shelf, Rack: rack, Fiber: fiber, Serial: strings.ToUpper(m[4])})
	}
	return units, true
}

var onuLineRE = regexp.MustCompile(`^onu\s+(\d+)\s+type\s+(\S+)\s+sn\s+(\S+)`)

// ParseONUIndexes returns the onu indexes declared in the running config
// of a gpon-olt interface.
func ParseONUIndexes(lines []string) map[int]bool {
	used := make(map[int]bool)
	for _, l := range common.CleanLines(lines) {
		m := onuLineRE.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			used[n] = true
		}
	}
	return used
}

// FreeSlot returns want when it is free, or the lowest free index when
// want is 0.
func FreeSlot(used map[int]bool, want int) (int, error) {
	if want != 0 {
		if want < 1 || want > codec.MaxONUSlot {
			return 0, types.Errorf(types.KindValidation, "slot %d out of range [1, %d]", want, codec.MaxONUSlot)
		}
		if used[want] {
			return 0, types.Errorf(types.KindValidation, "slot %d is taken", want)
		}
		return want, nil
	}
	for n := 1; n <= codec.MaxONUSlot; n++ {
		if !used[n] {
			return n, nil
		}
	}
	return 0, types.Errorf(types.KindFiberFull, "all %d onu indexes are taken", codec.MaxONUSlot)
}
