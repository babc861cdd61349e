package codec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/types"
)

// ParseVIDRange expands a trunk vid list such as "143", "143-150" or
// "10,20-22". The result is sorted and deduplicated.
func ParseVIDRange(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	var result []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, types.Errorf(types.KindValidation, "invalid start value in range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, types.Errorf(types.KindValidation, "invalid end value in range %q", part)
			}
			if start > end {
				return nil, types.Errorf(types.KindValidation, "start %d greater than end %d in range %q", start, end, part)
			}
			if err := types.ValidateVID(start); err != nil {
				return nil, err
			}
			if err := types.ValidateVID(end); err != nil {
				return nil, err
			}
			for v := start; v <= end; v++ {
				result = append(result, v)
			}
			continue
		}

		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, types.Errorf(types.KindValidation, "invalid vid %q", part)
		}
		if err := types.ValidateVID(v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	sort.Ints(result)
	return dedupInts(result), nil
}

// FormatVIDRange is the inverse of ParseVIDRange: consecutive vids are
// collapsed into "a-b" items.
func FormatVIDRange(vids []int) string {
	if len(vids) == 0 {
		return ""
	}
	sorted := append([]int(nil), vids...)
	sort.Ints(sorted)
	sorted = dedupInts(sorted)

	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(prev))
		}
	}
	for _, v := range sorted[1:] {
		if v == prev+1 {
			prev = v
			continue
		}
		flush()
		start, prev = v, v
	}
	flush()
	return strings.Join(parts, ",")
}

func dedupInts(s []int) []int {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
