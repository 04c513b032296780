// Package catalog loads the static reference catalogs: milestones,
// activities and the medical schedule. Catalogs are YAML documents, either
// embedded in the binary or read from an override directory, and are
// immutable once a Set has been published.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperengineering/nurture/internal/types"
)

// Built-in catalog names.
const (
	EnhancedMilestones = "milestones/enhanced"
	OfficialMilestones = "milestones/official"
	DefaultActivities  = "activities/developmental"
	DefaultMedical     = "medical/schedule"
)

// ErrUnknownCatalog indicates a catalog name that is not loaded.
var ErrUnknownCatalog = errors.New("unknown catalog")

// Kind is the record type a catalog document holds.
type Kind string

const (
	KindMilestones Kind = "milestones"
	KindActivities Kind = "activities"
	KindMedical    Kind = "medical"
)

// Policy holds the per-catalog window constants.
// The two milestone schemas disagree on all three, so each catalog
// carries its own values instead of sharing globals.
type Policy struct {
	// LookaheadMonths surfaces a record this many months before its window opens.
	LookaheadMonths int `yaml:"lookahead_months" json:"lookahead_months"`
	// GraceMonths keeps a record eligible this many months after its window closes.
	GraceMonths int `yaml:"grace_months" json:"grace_months"`
	// OverdueGraceMonths is how far past max a record may be before it is overdue.
	OverdueGraceMonths int `yaml:"overdue_grace_months" json:"overdue_grace_months"`
}

// Validate rejects negative month counts.
func (p Policy) Validate() error {
	if p.LookaheadMonths < 0 || p.GraceMonths < 0 || p.OverdueGraceMonths < 0 {
		return fmt.Errorf("policy months must be non-negative: %+v", p)
	}
	return nil
}

// MilestoneCatalog is one named milestone table with its window policy.
type MilestoneCatalog struct {
	Name        string
	Description string
	Policy      Policy
	Milestones  []types.Milestone
	index       map[string]int
}

// Find returns the milestone with the given id.
func (c *MilestoneCatalog) Find(id string) (types.Milestone, bool) {
	i, ok := c.index[id]
	if !ok {
		return types.Milestone{}, false
	}
	return c.Milestones[i], true
}

// ActivityCatalog is one named activity table.
type ActivityCatalog struct {
	Name        string
	Description string
	Activities  []types.Activity
}

// MedicalSchedule is one named, ordered medical event schedule.
type MedicalSchedule struct {
	Name        string
	Description string
	Events      []types.MedicalEvent
	index       map[string]int
}

// Find returns the event with the given id.
func (s *MedicalSchedule) Find(id string) (types.MedicalEvent, bool) {
	i, ok := s.index[id]
	if !ok {
		return types.MedicalEvent{}, false
	}
	return s.Events[i], true
}

// Info summarises one loaded catalog for listings.
type Info struct {
	Name        string  `json:"name"`
	Kind        Kind    `json:"kind"`
	Description string  `json:"description"`
	Records     int     `json:"records"`
	Policy      *Policy `json:"policy,omitempty"`
}

// Set is a complete collection of loaded catalogs.
// A Set must not be modified after it has been handed to a Registry.
type Set struct {
	milestones map[string]*MilestoneCatalog
	activities map[string]*ActivityCatalog
	medical    map[string]*MedicalSchedule
}

func newSet() *Set {
	return &Set{
		milestones: make(map[string]*MilestoneCatalog),
		activities: make(map[string]*ActivityCatalog),
		medical:    make(map[string]*MedicalSchedule),
	}
}

// Milestones returns the named milestone catalog.
func (s *Set) Milestones(name string) (*MilestoneCatalog, error) {
	c, ok := s.milestones[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	return c, nil
}

// Activities returns the named activity catalog.
func (s *Set) Activities(name string) (*ActivityCatalog, error) {
	c, ok := s.activities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	return c, nil
}

// Medical returns the named medical schedule.
func (s *Set) Medical(name string) (*MedicalSchedule, error) {
	c, ok := s.medical[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	return c, nil
}

// MilestoneNames returns the loaded milestone catalog names, sorted.
func (s *Set) MilestoneNames() []string {
	names := make([]string, 0, len(s.milestones))
	for n := range s.milestones {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Names returns every loaded catalog name, sorted.
func (s *Set) Names() []string {
	var names []string
	for _, info := range s.List() {
		names = append(names, info.Name)
	}
	return names
}

// List describes every loaded catalog, sorted by name.
func (s *Set) List() []Info {
	infos := make([]Info, 0, len(s.milestones)+len(s.activities)+len(s.medical))
	for _, c := range s.milestones {
		p := c.Policy
		infos = append(infos, Info{Name: c.Name, Kind: KindMilestones, Description: c.Description, Records: len(c.Milestones), Policy: &p})
	}
	for _, c := range s.activities {
		infos = append(infos, Info{Name: c.Name, Kind: KindActivities, Description: c.Description, Records: len(c.Activities)})
	}
	for _, c := range s.medical {
		infos = append(infos, Info{Name: c.Name, Kind: KindMedical, Description: c.Description, Records: len(c.Events)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// OverridePolicy replaces the policy of a milestone catalog.
// Call only before the Set is published.
func (s *Set) OverridePolicy(name string, p Policy) error {
	c, ok := s.milestones[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c.Policy = p
	return nil
}
