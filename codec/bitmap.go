package codec

import (
	"github.com/nanoncore/nano-devctl/types"
)

// Common port bitmap widths in bits.
const (
	BitmapWidth32 = 32
	BitmapWidth64 = 64
)

// PackPorts encodes a set of 1-based port numbers as a big-endian bitmap of
// width bits, MSB = port 1.
func PackPorts(ports []int, width int) ([]byte, error) {
	if width <= 0 || width%8 != 0 {
		return nil, types.Errorf(types.KindValidation, "bitmap width %d is not a positive multiple of 8", width)
	}
	buf := make([]byte, width/8)
	for _, p := range ports {
		if p < 1 || p > width {
			return nil, types.Errorf(types.KindValidation, "port %d does not fit a %d-bit bitmap", p, width)
		}
		buf[(p-1)/8] |= 0x80 >> uint((p-1)%8)
	}
	return buf, nil
}

// UnpackPorts decodes a bitmap into a membership list indexed by port-1.
func UnpackPorts(buf []byte) []bool {
	out := make([]bool, len(buf)*8)
	for i := range out {
		out[i] = buf[i/8]&(0x80>>uint(i%8)) != 0
	}
	return out
}

// PortMembers returns the 1-based port numbers set in buf.
func PortMembers(buf []byte) []int {
	var ports []int
	for i, on := range UnpackPorts(buf) {
		if on {
			ports = append(ports, i+1)
		}
	}
	return ports
}

// HasPort reports whether port is set in buf.
func HasPort(buf []byte, port int) bool {
	if port < 1 || (port-1)/8 >= len(buf) {
		return false
	}
	return buf[(port-1)/8]&(0x80>>uint((port-1)%8)) != 0
}

// SetPort returns a copy of buf with port set or cleared. The copy is at
// least width bits long so that a missing or short value read from the
// device can be written back at the vendor's width.
func SetPort(buf []byte, port int, on bool, width int) ([]byte, error) {
	size := width / 8
	if len(buf) > size {
		size = len(buf)
	}
	if port < 1 || port > size*8 {
		return nil, types.Errorf(types.KindValidation, "port %d does not fit a %d-bit bitmap", port, size*8)
	}
	out := make([]byte, size)
	copy(out, buf)
	mask := byte(0x80 >> uint((port-1)%8))
	if on {
		out[(port-1)/8] |= mask
	} else {
		out[(port-1)/8] &^= mask
	}
	return out, nil
}
