package chapters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Select narrows jobs to a 1-based index range ("5-12") or list ("1,3,5").
// The range wins when both are given. Selected jobs always come back in
// discovery order, whatever order the list names them in.
func Select(all []Job, rng, list string) ([]Job, error) {
	if rng != "" {
		return SelectRange(all, rng)
	}
	if list != "" {
		return SelectList(all, list)
	}

	return all, nil
}

func SelectRange(all []Job, rng string) ([]Job, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q (want start-end)", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid range %q (want start-end)", rng)
	}
	if start <= 0 || start > end {
		return nil, fmt.Errorf("invalid range %q", rng)
	}

	if start > len(all) {
		return nil, nil
	}

	return all[start-1 : min(end, len(all))], nil
}

func SelectList(all []Job, list string) ([]Job, error) {
	seen := map[int]bool{}
	var idx []int

	for p := range strings.SplitSeq(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		n, err := atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter index %q in list", p)
		}
		if n <= 0 || n > len(all) || seen[n] {
			continue
		}

		seen[n] = true
		idx = append(idx, n)
	}

	sort.Ints(idx)

	out := make([]Job, 0, len(idx))
	for _, n := range idx {
		out = append(out, all[n-1])
	}

	return out, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
