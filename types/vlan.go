package types

import "fmt"

// VID bounds.
const (
	MinVID     = 1
	MaxVID     = 4094
	DefaultVID = 1
)

// VLAN is an 802.1Q VLAN. Equality is by VID.
type VLAN struct {
	// VID is the VLAN ID (1-4094)
	VID int `json:"vid"`

	// Title is the VLAN name
	Title string `json:"title,omitempty"`

	// Native marks the single untagged VLAN of a port
	Native bool `json:"native"`

	// Management marks the management VLAN
	Management bool `json:"management,omitempty"`
}

// PortMode is how a VLAN set is attached to a port.
type PortMode string

const (
	PortModeTrunk  PortMode = "trunk"
	PortModeAccess PortMode = "access"
)

// ParsePortMode validates a mode string.
func ParsePortMode(s string) (PortMode, error) {
	switch PortMode(s) {
	case PortModeTrunk, PortModeAccess:
		return PortMode(s), nil
	case "":
		return PortModeTrunk, nil
	}
	return "", Errorf(KindValidation, "unknown port mode %q", s)
}

// PortVID is one VLAN of a port in a vlanConfig entry.
type PortVID struct {
	VID    int  `json:"vid"`
	Native bool `json:"native"`
}

// PortVLANConfig is the VLAN set of one ONU or switch port.
type PortVLANConfig struct {
	Port int       `json:"port"`
	VIDs []PortVID `json:"vids"`
}

// ValidateVID checks that vid is in [1, 4094].
func ValidateVID(vid int) error {
	if vid < MinVID || vid > MaxVID {
		return Errorf(KindValidation, "vid %d out of range [%d, %d]", vid, MinVID, MaxVID)
	}
	return nil
}

// ValidateOperatorVID checks that vid may be created or destroyed by an operator.
// VID 1 is the reserved default VLAN.
func ValidateOperatorVID(vid int) error {
	if vid == DefaultVID {
		return Errorf(KindValidation, "vid %d is reserved", vid)
	}
	return ValidateVID(vid)
}

// ValidatePort checks 1 <= n <= portsLen.
func ValidatePort(n, portsLen int) error {
	if n < 1 || n > portsLen {
		return Errorf(KindValidation, "port %d out of range [1, %d]", n, portsLen)
	}
	return nil
}

// NormalizeAttach applies mode rules to a VLAN set: access mode takes
// exactly one VLAN and forces it native, trunk mode allows at most one native.
func NormalizeAttach(vlans []VLAN, mode PortMode) ([]VLAN, error) {
	if len(vlans) == 0 {
		return nil, Errorf(KindValidation, "empty vlan set")
	}
	for _, v := range vlans {
		if err := ValidateVID(v.VID); err != nil {
			return nil, err
		}
	}
	if mode == PortModeAccess {
		if len(vlans) != 1 {
			return nil, Errorf(KindValidation, "access mode takes exactly one vlan, got %d", len(vlans))
		}
		v := vlans[0]
		v.Native = true
		return []VLAN{v}, nil
	}
	natives := 0
	for _, v := range vlans {
		if v.Native {
			natives++
		}
	}
	if natives > 1 {
		return nil, Errorf(KindValidation, "multiple native vid on one port")
	}
	return vlans, nil
}

func (v VLAN) String() string {
	if v.Native {
		return fmt.Sprintf("%d(native)", v.VID)
	}
	return fmt.Sprintf("%d", v.VID)
}
