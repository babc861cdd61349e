package zte

import (
	"strings"

	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// consoleError maps a ZTE CLI error reply to a taxonomy kind.
type consoleError struct {
	Pattern string
	Kind    types.Kind
	Human   string
}

// consoleErrors is checked in order against the lower-cased error line.
// ZTE prints either "%Error NNNNN: text" or "%Code NNNNN-GPONSRV : text".
var consoleErrors = []consoleError{
	{Pattern: "20133", Kind: types.KindConfiguration, Human: "onu index is already in use on this fiber"},
	{Pattern: "onu is existed", Kind: types.KindConfiguration, Human: "onu index is already in use on this fiber"},
	{Pattern: "20137", Kind: types.KindConfiguration, Human: "serial is already bound on this olt"},
	{Pattern: "sn is existed", Kind: types.KindConfiguration, Human: "serial is already bound on this olt"},
	{Pattern: "20140", Kind: types.KindFiberFull, Human: "no free onu index on this fiber"},
	{Pattern: "reaches the max", Kind: types.KindFiberFull, Human: "no free onu index on this fiber"},
	{Pattern: "20201", Kind: types.KindConfiguration, Human: "onu type is not defined on the olt"},
	{Pattern: "onu type does not exist", Kind: types.KindConfiguration, Human: "onu type is not defined on the olt"},
	{Pattern: "20209", Kind: types.KindNotFound, Human: "onu does not exist"},
	{Pattern: "no such onu", Kind: types.KindNotFound, Human: "onu does not exist"},
	{Pattern: "profile does not exist", Kind: types.KindConfiguration, Human: "tcont or traffic profile is missing"},
	{Pattern: "vlan is not exist", Kind: types.KindConfiguration, Human: "vlan is not created on the olt"},
	{Pattern: "invalid input", Kind: types.KindConsole, Human: "command rejected by the olt"},
	{Pattern: "incomplete command", Kind: types.KindConsole, Human: "command is incomplete"},
	{Pattern: "ambiguous command", Kind: types.KindConsole, Human: "command is ambiguous"},
}

// TranslateError converts a ZTE error line into a typed error. Lines with
// no known pattern are ConsoleErrors carrying the raw text.
func TranslateError(line string) error {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)
	for _, e := range consoleErrors {
		if strings.Contains(lower, e.Pattern) {
			return types.Errorf(e.Kind, "%s (%s)", e.Human, line)
		}
	}
	return types.Errorf(types.KindConsole, "%s", line)
}

// CheckOutput reports the first "%Error" or "%Code" line a command printed.
func CheckOutput(lines []string) error {
	for _, l := range common.CleanLines(lines) {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "%Error") || strings.HasPrefix(l, "%Code") || strings.HasPrefix(l, "% Invalid") {
			return TranslateError(l)
		}
	}
	return nil
}
