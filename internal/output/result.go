package output

import (
	"sort"

	"github.com/brogergvhs/noveld/internal/chapters"
)

// Result is the settled fetch of one chapter. Err == nil means success.
type Result struct {
	Index int
	Ref   chapters.Ref
	Info  chapters.Info
	Text  string
	Err   error
}

func (r Result) Ok() bool { return r.Err == nil }

// Assemble puts results back into discovery order and drops failures.
// Completion order of the fetches does not matter.
func Assemble(results []Result) []Result {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	out := sorted[:0]
	for _, r := range sorted {
		if r.Ok() {
			out = append(out, r)
		}
	}

	return out
}

// FormatSection renders one chapter block as it appears in text output.
func FormatSection(header, text string) string {
	return "\n" + header + "\n\n" + text + "\n"
}
