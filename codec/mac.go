package codec

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
)

// MACFromBytes renders six raw bytes as aa:bb:cc:dd:ee:ff.
func MACFromBytes(b []byte) (string, error) {
	if len(b) != 6 {
		return "", types.Errorf(types.KindValidation, "mac has %d bytes, want 6", len(b))
	}
	return net.HardwareAddr(b).String(), nil
}

// MACFromOctetString renders an SNMP octet string holding a raw MAC.
func MACFromOctetString(s string) (string, error) {
	return MACFromBytes([]byte(s))
}

// MACFromOIDSuffix renders a MAC encoded as six decimal OID components,
// as used by the BRIDGE-MIB forwarding tables.
func MACFromOIDSuffix(suffix string) (string, error) {
	parts := strings.Split(strings.Trim(suffix, "."), ".")
	if len(parts) != 6 {
		return "", types.Errorf(types.KindValidation, "oid suffix %q is not a mac", suffix)
	}
	b := make([]byte, 6)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return "", types.Errorf(types.KindValidation, "oid suffix %q is not a mac", suffix)
		}
		b[i] = byte(n)
	}
	return MACFromBytes(b)
}

// MACToOIDSuffix is the inverse of MACFromOIDSuffix.
func MACToOIDSuffix(mac string) (string, error) {
	norm, err := ParseMAC(mac)
	if err != nil {
		return "", err
	}
	hw, _ := net.ParseMAC(norm)
	parts := make([]string, len(hw))
	for i, b := range hw {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, "."), nil
}

// ParseMAC accepts colon, dash and dotted forms and returns the canonical
// lower-case colon form.
func ParseMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", types.Wrap(types.KindValidation, err, "mac %q", s)
	}
	if len(hw) != 6 {
		return "", types.Errorf(types.KindValidation, "mac %q has %d bytes, want 6", s, len(hw))
	}
	return hw.String(), nil
}

// FormatMACDotted renders a MAC as aabb.ccdd.eeff, the form BDCOM CLI takes.
func FormatMACDotted(mac string) (string, error) {
	norm, err := ParseMAC(mac)
	if err != nil {
		return "", err
	}
	h := strings.ReplaceAll(norm, ":", "")
	return fmt.Sprintf("%s.%s.%s", h[0:4], h[4:8], h[8:12]), nil
}
