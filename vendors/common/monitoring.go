package common

import (
	"fmt"
	"strings"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
)

// Monitoring host templates.
const (
	HostTemplateSwitch = "generic-switch"
	HostTemplateOLT    = "generic-olt"
	HostTemplateONU    = "generic-onu"
)

// MonitoringHost renders a Nagios host block for dev. ONUs have no address
// of their own and are reported at their parent's address.
func MonitoringHost(dev *model.Device, use string) string {
	if dev == nil {
		return ""
	}
	address := dev.IP
	if address == "" && dev.Parent != nil {
		address = dev.Parent.IP
	}
	if address == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("define host{\n")
	fmt.Fprintf(&b, "\tuse\t\t\t\t%s\n", use)
	fmt.Fprintf(&b, "\thost_name\t\t%s\n", hostName(dev))
	fmt.Fprintf(&b, "\taddress\t\t\t%s\n", address)
	if dev.Parent != nil {
		fmt.Fprintf(&b, "\tparents\t\t\t%s\n", hostName(dev.Parent))
	}
	b.WriteString("}\n")
	return b.String()
}

func hostName(dev *model.Device) string {
	if name := codec.NormalizeName(dev.Name); name != "" {
		return name
	}
	return fmt.Sprintf("dev%d", dev.ID)
}
