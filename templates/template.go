// Package templates holds the ONU configuration templates: named CLI
// scripts rendered from a vlanConfig and replayed on the parent OLT.
package templates

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

// Part renders one half of a script.
type Part func(p types.TemplateParams) []types.Step

// Template is a script made of a top and a bottom half. A derived template
// copies its base and replaces one half.
type Template struct {
	Code  string
	Name  string
	VLAN  bool
	Types []model.DeviceType

	Top    Part
	Bottom Part
}

var _ types.Template = (*Template)(nil)

// ShortCode implements types.Template.
func (t *Template) ShortCode() string { return t.Code }

// Title implements types.Template.
func (t *Template) Title() string { return t.Name }

// AcceptsVLAN implements types.Template.
func (t *Template) AcceptsVLAN() bool { return t.VLAN }

// ValidFor implements types.Template.
func (t *Template) ValidFor(code model.DeviceType) bool {
	for _, c := range t.Types {
		if c == code {
			return true
		}
	}
	return false
}

// Derive returns a copy of t under a new code and title.
func (t *Template) Derive(code, title string) *Template {
	c := *t
	c.Code = code
	c.Name = title
	c.Types = append([]model.DeviceType(nil), t.Types...)
	return &c
}

// Render implements types.Template. VLAN templates validate the config and
// fill in VIDs and NativeVID before rendering.
func (t *Template) Render(p types.TemplateParams) ([]types.Step, error) {
	if t.VLAN {
		vids, native, err := FlatVIDs(p.Config)
		if err != nil {
			return nil, err
		}
		p.VIDs = vids
		p.NativeVID = native
	}
	var steps []types.Step
	if t.Top != nil {
		steps = append(steps, t.Top(p)...)
	}
	if t.Bottom != nil {
		steps = append(steps, t.Bottom(p)...)
	}
	if len(steps) == 0 {
		return nil, types.Errorf(types.KindConfiguration, "template %s renders no steps", t.Code)
	}
	return steps, nil
}

// FlatVIDs validates a vlanConfig and returns its vid set in ascending
// order with duplicates and zero (null) vids dropped. native is the first
// native vid found, 0 when no port has one.
func FlatVIDs(cfg []types.PortVLANConfig) (vids []int, native int, err error) {
	var errs *multierror.Error
	seen := make(map[int]struct{})
	for _, port := range cfg {
		natives := 0
		for _, v := range port.VIDs {
			if v.VID == 0 {
				continue
			}
			if verr := types.ValidateVID(v.VID); verr != nil {
				errs = multierror.Append(errs, fmt.Errorf("port %d: %w", port.Port, verr))
				continue
			}
			if v.Native {
				natives++
				if native == 0 {
					native = v.VID
				}
			}
			if _, dup := seen[v.VID]; !dup {
				seen[v.VID] = struct{}{}
				vids = append(vids, v.VID)
			}
		}
		if natives > 1 {
			errs = multierror.Append(errs, types.Errorf(types.KindValidation, "multiple native vid on one port (port %d)", port.Port))
		}
	}
	if errs.ErrorOrNil() != nil {
		if len(errs.Errors) == 1 {
			return nil, 0, types.Wrap(types.KindValidation, errs.Errors[0], "invalid vlan config")
		}
		return nil, 0, types.Wrap(types.KindValidation, errs, "invalid vlan config")
	}
	if len(vids) == 0 {
		return nil, 0, types.Errorf(types.KindValidation, "empty vid set")
	}
	sort.Ints(vids)
	return vids, native, nil
}

// Descriptor is the listing form of a template.
type Descriptor struct {
	ShortCode   string `json:"short_code" yaml:"short_code"`
	Title       string `json:"title" yaml:"title"`
	AcceptsVLAN bool   `json:"accepts_vlan" yaml:"accepts_vlan"`
}

// Describe returns the listing form of t.
func Describe(t types.Template) Descriptor {
	return Descriptor{ShortCode: t.ShortCode(), Title: t.Title(), AcceptsVLAN: t.AcceptsVLAN()}
}
