// Package selection picks the catalog records relevant to a child's age and
// ranks them by urgency.
//
// Every function here is pure: the age, the records and the caller's
// completed set are passed in explicitly and nothing is read from or written
// to shared state.
package selection

import (
	"sort"

	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/types"
)

// Ranged is a catalog record with an age window.
type Ranged interface {
	Range() types.AgeRange
}

// Window is an eligibility policy around a record's [min, max] range.
//
// A record is eligible at age A when min <= A <= max+TrailMonths, or when
// min-LeadMonths <= A < min.
type Window struct {
	LeadMonths  int `json:"lead_months"`
	TrailMonths int `json:"trail_months"`
}

// StrictWindow admits only records whose range contains the age.
var StrictWindow = Window{}

// LookaheadWindow also surfaces records n months before their range opens.
func LookaheadWindow(n int) Window { return Window{LeadMonths: n} }

// TrailingWindow keeps records eligible n months after their range closes.
func TrailingWindow(n int) Window { return Window{TrailMonths: n} }

// WindowFor returns the eligibility window declared by a catalog policy.
func WindowFor(p catalog.Policy) Window {
	return Window{LeadMonths: p.LookaheadMonths, TrailMonths: p.GraceMonths}
}

// Eligible reports whether a record with range r is relevant at age.
func (w Window) Eligible(r types.AgeRange, age int) bool {
	if age >= r.Min && age <= r.Max+w.TrailMonths {
		return true
	}
	return age >= r.Min-w.LeadMonths && age < r.Min
}

// Filter returns the records eligible at age under w, in catalog order.
func Filter[T Ranged](records []T, age int, w Window) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if w.Eligible(r.Range(), age) {
			out = append(out, r)
		}
	}
	return out
}

// Selection is the outcome of an eligibility query. Empty is set when no
// record is due at Age; callers report that state explicitly rather than
// returning a bare empty list.
type Selection[T any] struct {
	Items []T  `json:"items"`
	Age   int  `json:"age_months"`
	Empty bool `json:"empty"`
}

// Select filters records at age and wraps the result.
func Select[T Ranged](records []T, age int, w Window) Selection[T] {
	return newSelection(Filter(records, age, w), age)
}

func newSelection[T any](items []T, age int) Selection[T] {
	if items == nil {
		items = []T{}
	}
	return Selection[T]{Items: items, Age: age, Empty: len(items) == 0}
}

// Where narrows a selection to the items keep accepts, preserving order.
func (s Selection[T]) Where(keep func(T) bool) Selection[T] {
	out := make([]T, 0, len(s.Items))
	for _, it := range s.Items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return newSelection(out, s.Age)
}

// FilterCategory keeps the milestones in category c. Categories are compared
// by domain, so "motor" and "physical" match each other.
func FilterCategory(ms []types.Milestone, c types.Category) []types.Milestone {
	out := make([]types.Milestone, 0, len(ms))
	for _, m := range ms {
		if m.Category.Domain() == c.Domain() {
			out = append(out, m)
		}
	}
	return out
}

// FilterActivityCategory keeps the activities in category c.
func FilterActivityCategory(as []types.Activity, c types.ActivityCategory) []types.Activity {
	out := make([]types.Activity, 0, len(as))
	for _, a := range as {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}

// Upcoming returns the records whose range opens within lead months after
// age, sorted by the month their range opens.
func Upcoming[T Ranged](records []T, age, lead int) []T {
	out := make([]T, 0)
	for _, r := range records {
		rng := r.Range()
		if age < rng.Min && age >= rng.Min-lead {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range().Min < out[j].Range().Min
	})
	return out
}
