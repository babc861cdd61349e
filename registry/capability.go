package registry

import "github.com/nanoncore/nano-devctl/types"

// AsSwitch narrows d to the switch capability set.
func AsSwitch(d types.Driver) (types.SwitchDriver, error) {
	if s, ok := d.(types.SwitchDriver); ok && d.Family() == types.FamilySwitch {
		return s, nil
	}
	return nil, mismatch(d, types.FamilySwitch)
}

// AsOLT narrows d to the OLT capability set.
func AsOLT(d types.Driver) (types.OLTDriver, error) {
	if o, ok := d.(types.OLTDriver); ok && d.Family() == types.FamilyOLT {
		return o, nil
	}
	return nil, mismatch(d, types.FamilyOLT)
}

// AsONU narrows d to the ONU capability set.
func AsONU(d types.Driver) (types.ONUDriver, error) {
	if o, ok := d.(types.ONUDriver); ok && d.Family() == types.FamilyONU {
		return o, nil
	}
	return nil, mismatch(d, types.FamilyONU)
}

func mismatch(d types.Driver, want types.Family) error {
	if d == nil {
		return types.Errorf(types.KindCapabilityMismatch, "no driver, want %s", want)
	}
	return types.Errorf(types.KindCapabilityMismatch, "%s is a %s, want %s", d.Device(), d.Family(), want)
}
