package codec

import (
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
)

// ZTE constants.
const (
	ZTESerialPrefix = "ZTEG"

	// MaxONUSlot is the highest ONU index a ZTE C320 fiber accepts
	MaxONUSlot = 127

	zteFiberMarker = 1 << 28
)

var zteSerialRE = regexp.MustCompile(`^ZTEG[0-9A-Fa-f]{8}$`)

// DecodeZTESignal converts a raw ZTE optical level to dBm, rounded to 0.01.
func DecodeZTESignal(level int) float64 {
	var dbm float64
	switch {
	case level == 65535:
		dbm = 0
	case level > 0 && level < 30000:
		dbm = float64(level)*0.002 - 30
	case level > 60000 && level < 65534:
		dbm = float64(level-65534)*0.002 - 30
	default:
		dbm = 0
	}
	return math.Round(dbm*100) / 100
}

// ValidateZTESerial checks the ZTEGxxxxxxxx form.
func ValidateZTESerial(serial string) error {
	if !zteSerialRE.MatchString(serial) {
		return types.Errorf(types.KindValidation, "serial %q does not match %s", serial, zteSerialRE.String())
	}
	return nil
}

// SerialToMAC maps ZTEGxxxxxxxx to 45:47:xx:xx:xx:xx. The first two bytes
// are the ASCII codes of the "EG" tail of the vendor prefix.
func SerialToMAC(serial string) (string, error) {
	if err := ValidateZTESerial(serial); err != nil {
		return "", err
	}
	suffix, err := hex.DecodeString(serial[4:])
	if err != nil {
		return "", types.Wrap(types.KindValidation, err, "serial %q", serial)
	}
	b := append([]byte{serial[2], serial[3]}, suffix...)
	return MACFromBytes(b)
}

// MACToSerial reconstructs the ZTE serial from the last four bytes of mac.
func MACToSerial(mac string) (string, error) {
	hw, err := ParseMAC(mac)
	if err != nil {
		return "", err
	}
	raw, _ := hex.DecodeString(strings.ReplaceAll(hw, ":", ""))
	return ZTESerialPrefix + strings.ToUpper(hex.EncodeToString(raw[2:])), nil
}

// SerialFromOctets renders the 8-byte serial a ZTE OLT returns over SNMP:
// four ASCII vendor bytes followed by four raw bytes.
func SerialFromOctets(raw string) (string, error) {
	if len(raw) != 8 {
		return "", types.Errorf(types.KindValidation, "serial octet string has %d bytes, want 8", len(raw))
	}
	return raw[:4] + strings.ToUpper(hex.EncodeToString([]byte(raw[4:]))), nil
}

// PackFiber forms the ZTE fiber index: 10000 | rack(8) | fiber(8) | 00000000.
func PackFiber(rack, fiber int) (int, error) {
	if rack < 0 || rack > 255 || fiber < 0 || fiber > 255 {
		return 0, types.Errorf(types.KindValidation, "rack %d / fiber %d out of range [0, 255]", rack, fiber)
	}
	return zteFiberMarker | rack<<16 | fiber<<8, nil
}

// UnpackFiber recovers (rack, fiber) from a packed fiber index.
func UnpackFiber(packed int) (rack, fiber int, err error) {
	if packed>>24 != zteFiberMarker>>24 || packed&0xff != 0 {
		return 0, 0, types.Errorf(types.KindValidation, "%d is not a packed fiber index", packed)
	}
	return (packed >> 16) & 0xff, (packed >> 8) & 0xff, nil
}

// PackLocator renders the snmp_extra of a ZTE ONU: "<packed>.<onu>".
func PackLocator(rack, fiber, onu int) (string, error) {
	packed, err := PackFiber(rack, fiber)
	if err != nil {
		return "", err
	}
	if onu < 1 || onu > MaxONUSlot {
		return "", types.Errorf(types.KindValidation, "onu %d out of range [1, %d]", onu, MaxONUSlot)
	}
	return fmt.Sprintf("%d.%d", packed, onu), nil
}

// Locator is a parsed ZTE snmp_extra.
type Locator struct {
	Rack  int
	Fiber int
	ONU   int
}

// Packed returns the packed fiber index of l.
func (l Locator) Packed() int {
	return zteFiberMarker | l.Rack<<16 | l.Fiber<<8
}

// Index returns the "<packed>.<onu>" OID suffix.
func (l Locator) Index() string {
	return fmt.Sprintf("%d.%d", l.Packed(), l.ONU)
}

// ParseLocator parses "<packed>.<onu>". Anything but exactly one dot
// between two integers is a ValidationError.
func ParseLocator(s string) (Locator, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Locator{}, types.Errorf(types.KindValidation, "locator %q must be <fiber>.<onu>", s)
	}
	packed, err := strconv.Atoi(parts[0])
	if err != nil {
		return Locator{}, types.Errorf(types.KindValidation, "locator %q: bad fiber part", s)
	}
	onu, err := strconv.Atoi(parts[1])
	if err != nil {
		return Locator{}, types.Errorf(types.KindValidation, "locator %q: bad onu part", s)
	}
	rack, fiber, err := UnpackFiber(packed)
	if err != nil {
		return Locator{}, err
	}
	if onu < 1 || onu > MaxONUSlot {
		return Locator{}, types.Errorf(types.KindValidation, "locator %q: onu %d out of range [1, %d]", s, onu, MaxONUSlot)
	}
	return Locator{Rack: rack, Fiber: fiber, ONU: onu}, nil
}

// ParseIfIndexLocator parses the decimal ifIndex locator of EPON ONUs.
func ParseIfIndexLocator(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, types.Errorf(types.KindValidation, "locator %q must be a positive integer", s)
	}
	return n, nil
}
