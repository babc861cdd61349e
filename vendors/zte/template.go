package zte

import (
	"fmt"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
)

// TcontProfile is the upstream bandwidth profile every ONU is bound with.
const TcontProfile = "1G"

var (
	promptConfig = []string{PromptConfig}
	promptIf     = []string{PromptInterface}
	promptMng    = []string{PromptONUMng}
)

// onuTop binds the unit on the fiber interface the script starts in, then
// configures its gpon-onu interface. extra lines go last in that interface.
func onuTop(extra ...string) templates.Part {
	return func(p types.TemplateParams) []types.Step {
		steps := []types.Step{
			{Line: fmt.Sprintf("onu %d type %s sn %s", p.Slot, p.ONUType, p.Serial), Expect: promptIf},
			{Line: "exit", Expect: promptConfig},
			{Line: "interface " + p.Interface, Expect: promptIf},
		}
		if p.Name != "" {
			steps = append(steps, types.Step{Line: "name " + p.Name, Expect: promptIf})
		}
		steps = append(steps,
			types.Step{Line: "tcont 1 profile " + TcontProfile, Expect: promptIf},
			types.Step{Line: "gemport 1 tcont 1", Expect: promptIf},
		)
		for i, vid := range p.VIDs {
			steps = append(steps, types.Step{Line: fmt.Sprintf("service-port %d vport 1 user-vlan %d vlan %d", i+1, vid, vid), Expect: promptIf})
		}
		for _, line := range extra {
			steps = append(steps, types.Step{Line: line, Expect: promptIf})
		}
		return append(steps, types.Step{Line: "exit", Expect: promptConfig})
	}
}

// services maps every vid to the single gemport inside pon-onu-mng.
func services(p types.TemplateParams) []types.Step {
	steps := []types.Step{{Line: "pon-onu-mng " + p.Interface, Expect: promptMng}}
	for i, vid := range p.VIDs {
		steps = append(steps, types.Step{Line: fmt.Sprintf("service %d gemport 1 vlan %d", i+1, vid), Expect: promptMng})
	}
	return steps
}

// bridgeBottom sets the VLAN mode of each configured Ethernet port: tag
// mode for a lone native vid, trunk for tagged vids only, hybrid with the
// native vid as default otherwise.
func bridgeBottom(ports int) templates.Part {
	return func(p types.TemplateParams) []types.Step {
		steps := services(p)
		for _, port := range p.Config {
			if port.Port < 1 || port.Port > ports {
				continue
			}
			eth := fmt.Sprintf("vlan port eth_0/%d", port.Port)
			native := 0
			var tagged []int
			for _, v := range port.VIDs {
				switch {
				case v.VID == 0:
				case v.Native:
					native = v.VID
				default:
					tagged = append(tagged, v.VID)
				}
			}
			switch {
			case native != 0 && len(tagged) == 0:
				steps = append(steps, types.Step{Line: fmt.Sprintf("%s mode tag vlan %d", eth, native), Expect: promptMng})
			case native == 0 && len(tagged) > 0:
				steps = append(steps,
					types.Step{Line: eth + " mode trunk", Expect: promptMng},
					types.Step{Line: eth + " vlan " + codec.FormatVIDRange(tagged), Expect: promptMng},
				)
			case native != 0:
				steps = append(steps,
					types.Step{Line: fmt.Sprintf("%s mode hybrid def-vlan %d", eth, native), Expect: promptMng},
					types.Step{Line: eth + " vlan " + codec.FormatVIDRange(tagged), Expect: promptMng},
				)
			}
		}
		return append(steps, types.Step{Line: "exit", Expect: promptConfig})
	}
}

// routerBottom runs a DHCP WAN on the native vid, or on the lowest vid
// when none is native.
func routerBottom(p types.TemplateParams) []types.Step {
	wan := p.NativeVID
	if wan == 0 {
		wan = p.VIDs[0]
	}
	return []types.Step{
		{Line: "pon-onu-mng " + p.Interface, Expect: promptMng},
		{Line: fmt.Sprintf("service 1 gemport 1 vlan %d", wan), Expect: promptMng},
		{Line: fmt.Sprintf("wan-ip 1 mode dhcp vlan-profile vlan%d host 1", wan), Expect: promptMng},
		{Line: "security-mgmt 1 state enable mode forward protocol web", Expect: promptMng},
		{Line: "exit", Expect: promptConfig},
	}
}

func withTop(t *templates.Template, top templates.Part) *templates.Template {
	t.Top = top
	return t
}

// ONU templates.
var (
	F660Bridge = &templates.Template{
		Code:   "zte_f660_bridge",
		Name:   "ZTE F660, bridge",
		VLAN:   true,
		Types:  []model.DeviceType{TypeF660},
		Top:    onuTop(),
		Bottom: bridgeBottom(4),
	}

	F660Router = &templates.Template{
		Code:   "zte_f660_router",
		Name:   "ZTE F660, router with dhcp wan",
		VLAN:   true,
		Types:  []model.DeviceType{TypeF660},
		Top:    onuTop(),
		Bottom: routerBottom,
	}

	// F660Static is the bridge for subscribers with static addresses.
	F660Static = withTop(F660Bridge.Derive("zte_f660_static", "ZTE F660, bridge, static ip"),
		onuTop("ip dhcp snooping disable vport 1"))

	// F660Dynamic is the bridge for DHCP subscribers with option 82.
	F660Dynamic = withTop(F660Bridge.Derive("zte_f660_dynamic", "ZTE F660, bridge, dhcp"),
		onuTop("dhcp-option82 enable vport 1", "ip dhcp snooping enable vport 1"))

	F601Bridge = &templates.Template{
		Code:   "zte_f601_bridge",
		Name:   "ZTE F601, bridge",
		VLAN:   true,
		Types:  []model.DeviceType{TypeF601},
		Top:    onuTop(),
		Bottom: bridgeBottom(1),
	}
)

func init() {
	for _, t := range []*templates.Template{F660Bridge, F660Router, F660Static, F660Dynamic, F601Bridge} {
		templates.Register(t)
	}
}
