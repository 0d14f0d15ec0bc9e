package chunker

import "sort"

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// IntervalList is a sorted list of disjoint, non-empty spans.
type IntervalList []Span

// NewIntervalList normalizes spans into a sorted, disjoint list. Overlapping
// and touching spans are merged and empty spans dropped.
func NewIntervalList(spans ...Span) IntervalList {
	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End > s.Start {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var out IntervalList
	for _, s := range sorted {
		if n := len(out); n > 0 && s.Start <= out[n-1].End {
			if s.End > out[n-1].End {
				out[n-1].End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Subtract returns the parts of l not covered by any of cut.
func (l IntervalList) Subtract(cut ...Span) IntervalList {
	holes := NewIntervalList(cut...)

	var out IntervalList
	j := 0
	for _, r := range l {
		start := r.Start
		for j < len(holes) && holes[j].End <= start {
			j++
		}
		for k := j; k < len(holes) && holes[k].Start < r.End; k++ {
			if holes[k].Start > start {
				out = append(out, Span{Start: start, End: holes[k].Start})
			}
			if holes[k].End > start {
				start = holes[k].End
			}
		}
		if start < r.End {
			out = append(out, Span{Start: start, End: r.End})
		}
	}
	return out
}

// Valid reports whether the list is sorted, disjoint and free of empty spans.
func (l IntervalList) Valid() bool {
	for i, s := range l {
		if s.End <= s.Start {
			return false
		}
		if i > 0 && s.Start <= l[i-1].End {
			return false
		}
	}
	return true
}

// Total returns the number of bytes covered by the list.
func (l IntervalList) Total() int {
	n := 0
	for _, s := range l {
		n += s.Len()
	}
	return n
}
