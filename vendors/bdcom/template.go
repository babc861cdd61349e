package bdcom

import (
	"strconv"

	"github.com/nanoncore/nano-devctl/codec"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
)

// EPONVLAN sets the CTC VLAN mode of the ONU UNI port: tag mode for a
// single vid, trunk mode with the native (or lowest) vid as default
// otherwise.
var EPONVLAN = &templates.Template{
	Code:  "bdcom_epon_vlan",
	Name:  "BDCOM EPON ONU, vlan on port 1",
	VLAN:  true,
	Types: []model.DeviceType{TypeEPONONU},
	Top: func(p types.TemplateParams) []types.Step {
		prompt := []string{InterfacePrompt(p.Interface)}
		steps := []types.Step{{Line: "interface " + p.Interface, Expect: prompt}}
		if p.Name != "" {
			steps = append(steps, types.Step{Line: "description " + p.Name, Expect: prompt})
		}
		return steps
	},
	Bottom: func(p types.TemplateParams) []types.Step {
		prompt := []string{InterfacePrompt(p.Interface)}
		pvid := p.NativeVID
		if pvid == 0 {
			pvid = p.VIDs[0]
		}
		var line string
		if len(p.VIDs) == 1 {
			line = "epon onu port 1 ctc vlan mode tag " + strconv.Itoa(pvid)
		} else {
			line = "epon onu port 1 ctc vlan mode trunk " + strconv.Itoa(pvid) + " " + codec.FormatVIDRange(p.VIDs)
		}
		return []types.Step{
			{Line: line, Expect: prompt},
			{Line: "exit", Expect: []string{PromptConfig}},
		}
	},
}

func init() {
	templates.Register(EPONVLAN)
}
