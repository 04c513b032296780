package selection

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hyperengineering/nurture/internal/types"
)

// Tier is a milestone urgency bucket. Lower values sort first.
type Tier int

const (
	TierCompleted Tier = iota
	TierOverdue
	TierCritical
	TierHigh
	TierNormal
)

// Tiers lists every tier in rank order.
var Tiers = []Tier{TierCompleted, TierOverdue, TierCritical, TierHigh, TierNormal}

var tierNames = [...]string{"completed", "overdue", "critical", "high", "normal"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalJSON writes the tier name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads a tier name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tier, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParseTier resolves a tier name.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if name == s {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// CompletedSet is a read-only set of completed record identifiers.
// The zero value is an empty set.
type CompletedSet struct {
	ids map[string]struct{}
}

// NewCompletedSet builds a set from ids. Duplicates and empty ids are ignored.
func NewCompletedSet(ids ...string) CompletedSet {
	set := CompletedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			set.ids[id] = struct{}{}
		}
	}
	return set
}

// Has reports whether id is completed.
func (s CompletedSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of completed ids.
func (s CompletedSet) Len() int { return len(s.ids) }

// With returns a copy of the set that also contains id.
func (s CompletedSet) With(id string) CompletedSet {
	out := CompletedSet{ids: make(map[string]struct{}, len(s.ids)+1)}
	for k := range s.ids {
		out.ids[k] = struct{}{}
	}
	if id != "" {
		out.ids[id] = struct{}{}
	}
	return out
}

// IsOverdue reports whether age lies more than grace months past r.Max.
func IsOverdue(r types.AgeRange, age, grace int) bool {
	return age > r.Max+grace
}

// TierOf assigns m its urgency tier. The first matching rule wins:
// completed, overdue, critical, high, otherwise normal.
func TierOf(m types.Milestone, completed CompletedSet, age, overdueGrace int) Tier {
	switch {
	case completed.Has(m.ID):
		return TierCompleted
	case IsOverdue(m.AgeRange, age, overdueGrace):
		return TierOverdue
	case m.Importance == types.ImportanceCritical:
		return TierCritical
	case m.Importance == types.ImportanceHigh:
		return TierHigh
	default:
		return TierNormal
	}
}

// ClassifiedMilestone is a milestone with its assigned tier.
type ClassifiedMilestone struct {
	types.Milestone
	Tier Tier `json:"tier"`
}

// Classify tiers each milestone and returns them sorted by tier rank, then
// by the month their range opens. Ties keep input order. The input slice is
// not modified.
func Classify(ms []types.Milestone, completed CompletedSet, age, overdueGrace int) []ClassifiedMilestone {
	out := make([]ClassifiedMilestone, len(ms))
	for i, m := range ms {
		out[i] = ClassifiedMilestone{Milestone: m, Tier: TierOf(m, completed, age, overdueGrace)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].AgeRange.Min < out[j].AgeRange.Min
	})
	return out
}

// Overdue returns every milestone in ms more than grace months past its
// range, whether or not it is currently eligible. Completed milestones are
// left out.
func Overdue(ms []types.Milestone, completed CompletedSet, age, grace int) []types.Milestone {
	out := make([]types.Milestone, 0)
	for _, m := range ms {
		if !completed.Has(m.ID) && IsOverdue(m.AgeRange, age, grace) {
			out = append(out, m)
		}
	}
	return out
}

// Progress summarises a classified list.
type Progress struct {
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Percent   int          `json:"percent"`
	ByTier    map[Tier]int `json:"-"`
}

// MarshalJSON writes ByTier keyed by tier name.
func (p Progress) MarshalJSON() ([]byte, error) {
	byTier := make(map[string]int, len(Tiers))
	for _, t := range Tiers {
		byTier[t.String()] = p.ByTier[t]
	}
	type alias Progress
	return json.Marshal(struct {
		alias
		ByTier map[string]int `json:"by_tier"`
	}{alias(p), byTier})
}

// Summarize counts classified milestones per tier. Percent is the share of
// completed milestones, rounded down; it is 0 for an empty list.
func Summarize(cs []ClassifiedMilestone) Progress {
	p := Progress{Total: len(cs), ByTier: make(map[Tier]int, len(Tiers))}
	for _, c := range cs {
		p.ByTier[c.Tier]++
	}
	p.Completed = p.ByTier[TierCompleted]
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	return p
}
