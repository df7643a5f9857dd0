package chapters

// Ref is a chapter link discovered on a list page, before any normalization.
type Ref struct {
	URL  string
	Text string
}

// Info is the normalized label of a chapter. Number is empty for unnumbered
// chapters and otherwise always holds Chinese numerals.
type Info struct {
	Number string
	Name   string
}

// Header renders the section heading used in output files.
func (i Info) Header() string {
	if i.Number == "" {
		return i.Name
	}

	return "第" + i.Number + "章 " + i.Name
}

// Job pairs a ref with its extracted info. Index is the position of the ref
// in discovery order and is what output ordering is based on.
type Job struct {
	Index int
	Ref   Ref
	Info  Info
}

// Jobs extracts chapter info for every ref and drops the ones that are not
// chapters. The surviving jobs keep their discovery order and are re-indexed
// densely from zero.
func Jobs(refs []Ref) []Job {
	out := make([]Job, 0, len(refs))
	for _, r := range refs {
		info, ok := Extract(r.Text)
		if !ok {
			continue
		}

		out = append(out, Job{Index: len(out), Ref: r, Info: info})
	}

	return out
}
