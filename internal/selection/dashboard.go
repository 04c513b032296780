package selection

import (
	"fmt"
	"time"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/observability"
	"github.com/hyperengineering/nurture/internal/types"
)

// MaxSuggestions caps the number of activity suggestions on a dashboard.
const MaxSuggestions = 4

// MilestoneView is the milestone section for one age.
type MilestoneView struct {
	Catalog  string                         `json:"catalog"`
	Window   Window                         `json:"window"`
	Current  Selection[ClassifiedMilestone] `json:"current"`
	Overdue  []types.Milestone              `json:"overdue"`
	Upcoming []types.Milestone              `json:"upcoming"`
	Progress Progress                       `json:"progress"`
}

// SelectMilestones filters c at age using its policy, classifies the eligible
// milestones and collects the overdue and upcoming lists. A non-empty
// category narrows every list.
func SelectMilestones(c *catalog.MilestoneCatalog, ageMonths int, completed CompletedSet, category types.Category) MilestoneView {
	records := c.Milestones
	if category != "" {
		records = FilterCategory(records, category)
	}
	w := WindowFor(c.Policy)
	classified := Classify(Filter(records, ageMonths, w), completed, ageMonths, c.Policy.OverdueGraceMonths)
	for _, cm := range classified {
		observability.RecordClassification(cm.Tier.String())
	}
	return MilestoneView{
		Catalog:  c.Name,
		Window:   w,
		Current:  newSelection(classified, ageMonths),
		Overdue:  Overdue(records, completed, ageMonths, c.Policy.OverdueGraceMonths),
		Upcoming: Upcoming(records, ageMonths, w.LeadMonths),
		Progress: Summarize(classified),
	}
}

// Suggestion pairs an activity with the open milestone it practises.
type Suggestion struct {
	Activity        types.Activity `json:"activity"`
	TargetMilestone string         `json:"target_milestone"`
	TargetTitle     string         `json:"target_title"`
}

// activityCategoryFor maps a milestone domain onto the activity category
// that exercises it.
func activityCategoryFor(c types.Category) types.ActivityCategory {
	switch c.Domain() {
	case types.CategoryPhysical:
		return types.ActivityPhysical
	case types.CategoryCognitive, types.CategoryLanguage:
		return types.ActivityCognitive
	default:
		return types.ActivitySocial
	}
}

// Suggest matches each open milestone, in classified order, with the first
// unused eligible activity of the related category. At most limit
// suggestions are returned.
func Suggest(milestones []ClassifiedMilestone, activities []types.Activity, limit int) []Suggestion {
	out := make([]Suggestion, 0, limit)
	used := make(map[string]bool)
	for _, m := range milestones {
		if len(out) >= limit {
			break
		}
		if m.Tier == TierCompleted {
			continue
		}
		want := activityCategoryFor(m.Category)
		for _, a := range activities {
			if a.Category != want || used[a.ID] {
				continue
			}
			used[a.ID] = true
			out = append(out, Suggestion{Activity: a, TargetMilestone: m.ID, TargetTitle: m.Title})
			break
		}
	}
	return out
}

// DashboardOptions names the catalogs a dashboard draws from.
type DashboardOptions struct {
	MilestoneCatalog  string
	ActivityCatalog   string
	MedicalSchedule   string
	MedicalVisibility int
}

// DefaultDashboardOptions uses the built-in catalogs.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		MilestoneCatalog:  catalog.EnhancedMilestones,
		ActivityCatalog:   catalog.DefaultActivities,
		MedicalSchedule:   catalog.DefaultMedical,
		MedicalVisibility: DefaultMedicalVisibility,
	}
}

// Dashboard is the composed home view for one child.
type Dashboard struct {
	ChildName   string                    `json:"child_name"`
	Stage       types.Stage               `json:"stage"`
	Age         age.Age                   `json:"age"`
	AgeLabel    string                    `json:"age_label"`
	Milestones  MilestoneView             `json:"milestones"`
	Activities  Selection[types.Activity] `json:"activities"`
	Suggestions []Suggestion              `json:"suggestions"`
	Medical     MedicalSchedule           `json:"medical"`
}

// BuildDashboard composes the home view for user at now. The user's
// completion sets drive classification; an absent child profile resolves to
// the fallback age.
func BuildDashboard(user types.User, set *catalog.Set, now time.Time, opts DashboardOptions) (Dashboard, error) {
	mc, err := set.Milestones(opts.MilestoneCatalog)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard milestones: %w", err)
	}
	ac, err := set.Activities(opts.ActivityCatalog)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard activities: %w", err)
	}
	sched, err := set.Medical(opts.MedicalSchedule)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard medical: %w", err)
	}

	var child types.Child
	if user.Child != nil {
		child = *user.Child
	}
	a := age.ResolveString(child.BirthDate, now)
	stage := child.Stage
	if stage == "" {
		stage = age.StageFor(a.Months)
	}

	milestones := SelectMilestones(mc, a.Months, NewCompletedSet(user.CompletedMilestones...), "")
	activities := Select(ac.Activities, a.Months, StrictWindow)

	return Dashboard{
		ChildName:   child.Name,
		Stage:       stage,
		Age:         a,
		AgeLabel:    age.Describe(a.Days),
		Milestones:  milestones,
		Activities:  activities,
		Suggestions: Suggest(milestones.Current.Items, activities.Items, MaxSuggestions),
		Medical:     SelectMedical(sched.Events, a.Months, NewCompletedSet(user.CompletedEvents...), opts.MedicalVisibility),
	}, nil
}
