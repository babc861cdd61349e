package codec

import (
	"sort"

	"github.com/nanoncore/nano-devctl/types"
)

// Eltex splits the VLAN space of a port into four tables of 1024 bits.
const (
	EltexTableCount = 4
	EltexTableSize  = 128
	eltexTableBits  = EltexTableSize * 8
)

// EltexTable returns the table index and bit position of vid.
func EltexTable(vid int) (table, bit int) {
	return vid / eltexTableBits, vid % eltexTableBits
}

// EncodeEltexVLANs packs vids into the per-port tables. Only populated
// tables are returned; each buffer is EltexTableSize bytes, MSB first.
func EncodeEltexVLANs(vids []int) (map[int][]byte, error) {
	tables := make(map[int][]byte)
	for _, vid := range vids {
		if err := types.ValidateVID(vid); err != nil {
			return nil, err
		}
		t, bit := EltexTable(vid)
		buf, ok := tables[t]
		if !ok {
			buf = make([]byte, EltexTableSize)
			tables[t] = buf
		}
		buf[bit/8] |= 0x80 >> uint(bit%8)
	}
	return tables, nil
}

// DecodeEltexVLANs translates one table buffer back to vids.
func DecodeEltexVLANs(table int, buf []byte) []int {
	var vids []int
	for i := 0; i < len(buf) && i < EltexTableSize; i++ {
		if buf[i] == 0 {
			continue
		}
		for b := 0; b < 8; b++ {
			if buf[i]&(0x80>>uint(b)) == 0 {
				continue
			}
			vid := table*eltexTableBits + i*8 + b
			if vid >= types.MinVID && vid <= types.MaxVID {
				vids = append(vids, vid)
			}
		}
	}
	return vids
}

// MergeEltexVLANs adds or removes vids in the given tables, returning new
// buffers for every table that was touched. Tables absent from current are
// treated as empty.
func MergeEltexVLANs(current map[int][]byte, vids []int, on bool) (map[int][]byte, error) {
	out := make(map[int][]byte)
	for _, vid := range vids {
		if err := types.ValidateVID(vid); err != nil {
			return nil, err
		}
		t, bit := EltexTable(vid)
		buf, ok := out[t]
		if !ok {
			buf = make([]byte, EltexTableSize)
			copy(buf, current[t])
			out[t] = buf
		}
		mask := byte(0x80 >> uint(bit%8))
		if on {
			buf[bit/8] |= mask
		} else {
			buf[bit/8] &^= mask
		}
	}
	return out, nil
}

// SortedTables returns the table indexes of m in ascending order.
func SortedTables(m map[int][]byte) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
