package bdcom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
	"github.com/nanoncore/nano-devctl/vendors/common"
)

// CLIProfile is the BDCOM login dialogue. The session is raised to the
// privileged level right after login.
var CLIProfile = types.CLIProfile{
	UserPrompt: "Username:",
	PassPrompt: "Password:",
	Ready:      []string{"#", ">"},
	Rejected:   []string{"Authentication failed", "% Bad username or password"},
	Setup:      []string{"enable"},
}

// Prompt literals.
const (
	PromptExec   = "#"
	PromptConfig = "_config#"
)

// InterfacePrompt returns the prompt BDCOM prints inside interface iface,
// e.g. "_config_epon0/1:5#".
func InterfacePrompt(iface string) string {
	return "_config_" + strings.ToLower(iface) + "#"
}

// FiberInterface names the PON port of fiber.
func FiberInterface(fiber int) string {
	return fmt.Sprintf("EPON0/%d", fiber)
}

// ONUInterface names the ONU at slot on fiber.
func ONUInterface(fiber, slot int) string {
	return fmt.Sprintf("EPON0/%d:%d", fiber, slot)
}

var ponIfRE = regexp.MustCompile(`(?i)^EPON(\d+)/(\d+)(?::(\d+))?$`)

// ParseInterface splits "EPON0/1" or "EPON0/1:5". onu is 0 for a PON port.
func ParseInterface(name string) (fiber, onu int, ok bool) {
	m := ponIfRE.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, 0, false
	}
	fiber, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		onu, _ = strconv.Atoi(m[3])
	}
	return fiber, onu, true
}

// CheckOutput reports the first error line a command printed. BDCOM marks
// errors with a leading "%".
func CheckOutput(lines []string) error {
	for _, l := range common.CleanLines(lines) {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "%") {
			return types.Errorf(types.KindConsole, "%s", strings.TrimSpace(strings.TrimPrefix(l, "%")))
		}
	}
	return nil
}
