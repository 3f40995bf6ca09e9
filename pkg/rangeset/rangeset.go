package rangeset

import (
	"sort"
	"strings"
)

// Span is the closed-interval constraint shared by the range kinds.
// Bounds are reported as raw uint64 values so a single Set implementation
// serves every 16-bit id domain.
type Span[R any] interface {
	From() uint64
	To() uint64
	SetTo(uint64) R
	IsValid() bool
	String() string
}

// Set is an ordered collection of ranges. After every exported mutation
// the ranges are sorted by low bound, non-overlapping and maximally
// coalesced, and no empty range is stored.
type Set[R Span[R]] struct {
	ranges []R
}

func New[R Span[R]](rr ...R) *Set[R] {
	s := &Set[R]{ranges: append([]R{}, rr...)}
	s.Merge()
	return s
}

// Add appends ranges and re-normalizes the set.
func (s *Set[R]) Add(rr ...R) {
	s.ranges = append(s.ranges, rr...)
	s.Merge()
}

// Merge rewrites the set into canonical form: invalid ranges are
// discarded, the rest are sorted by low bound and coalesced in a single
// linear pass. Running Merge on an already-canonical set is a no-op.
func (s *Set[R]) Merge() {
	rr := make([]R, 0, len(s.ranges))
	for _, r := range s.ranges {
		if r.IsValid() {
			rr = append(rr, r)
		}
	}
	if len(rr) <= 1 {
		s.ranges = rr
		return
	}

	sort.Slice(rr, func(i, j int) bool { return rr[i].From() < rr[j].From() })
	out := make([]R, 1, len(rr))
	out[0] = rr[0]
	for _, r := range rr[1:] {
		prev := &out[len(out)-1]
		switch {
		case (*prev).To()+1 == r.From():
			// prev and r touch, merge them.
			*prev = (*prev).SetTo(r.To())
		case (*prev).To() < r.From():
			// No overlap and not adjacent, no merging possible.
			out = append(out, r)
		case (*prev).To() < r.To():
			// Partial overlap, extend prev.
			*prev = (*prev).SetTo(r.To())
		default:
			// r entirely contained in prev, nothing to do.
		}
	}
	s.ranges = out
}

// Contains reports whether some range in the set covers v.
func (s *Set[R]) Contains(v uint64) bool {
	for _, r := range s.ranges {
		if r.From() <= v && v <= r.To() {
			return true
		}
	}
	return false
}

// Covers reports whether one single range in the set covers both from
// and to. On a canonical set this equals containment of the whole
// [from, to] interval.
func (s *Set[R]) Covers(from, to uint64) bool {
	for _, r := range s.ranges {
		if r.From() <= from && to <= r.To() {
			return true
		}
	}
	return false
}

// Overlaps reports whether any range in the set intersects any range in
// other.
func (s *Set[R]) Overlaps(other *Set[R]) bool {
	if other == nil {
		return false
	}
	for _, r := range s.ranges {
		for _, o := range other.ranges {
			if r.From() <= o.To() && o.From() <= r.To() {
				return true
			}
		}
	}
	return false
}

// IsValid reports whether the set is non-empty and every range in it is
// valid.
func (s *Set[R]) IsValid() bool {
	if len(s.ranges) == 0 {
		return false
	}
	for _, r := range s.ranges {
		if !r.IsValid() {
			return false
		}
	}
	return true
}

func (s *Set[R]) Len() int { return len(s.ranges) }

// Ranges returns a copy of the ranges, to avoid aliasing slice memory in
// the caller.
func (s *Set[R]) Ranges() []R {
	out := make([]R, len(s.ranges))
	copy(out, s.ranges)
	return out
}

func (s *Set[R]) String() string {
	ss := make([]string, 0, len(s.ranges))
	for _, r := range s.ranges {
		ss = append(ss, r.String())
	}
	return strings.Join(ss, ",")
}
