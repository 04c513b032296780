package catalog

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/nurture/internal/types"
)

// validateDocument checks every record of doc and returns ValidationErrors
// listing all failures, not just the first.
func validateDocument(doc document) error {
	v := &recordValidator{catalog: doc.Name}

	switch doc.Kind {
	case KindMilestones:
		if len(doc.Activities) > 0 || len(doc.Events) > 0 {
			v.fail("", "kind", "milestone catalogs may only contain milestones")
		}
		if doc.Policy != nil {
			if err := doc.Policy.Validate(); err != nil {
				v.fail("", "policy", err.Error())
			}
		}
		for _, m := range doc.Milestones {
			v.milestone(m)
		}
	case KindActivities:
		if len(doc.Milestones) > 0 || len(doc.Events) > 0 || doc.Policy != nil {
			v.fail("", "kind", "activity catalogs may only contain activities")
		}
		for _, a := range doc.Activities {
			v.activity(a)
		}
	case KindMedical:
		if len(doc.Milestones) > 0 || len(doc.Activities) > 0 || doc.Policy != nil {
			v.fail("", "kind", "medical schedules may only contain events")
		}
		for _, e := range doc.Events {
			v.event(e)
		}
	default:
		v.fail("", "kind", fmt.Sprintf("must be one of: %s, %s, %s", KindMilestones, KindActivities, KindMedical))
	}

	if len(v.errs) > 0 {
		return ValidationErrors{Errors: v.errs}
	}
	return nil
}

type recordValidator struct {
	catalog string
	seen    map[string]bool
	errs    []ValidationError
}

func (v *recordValidator) fail(id, field, msg string) {
	v.errs = append(v.errs, ValidationError{Catalog: v.catalog, RecordID: id, Field: field, Message: msg})
}

func (v *recordValidator) identity(id, title string) {
	if strings.TrimSpace(id) == "" {
		v.fail(id, "id", "is required")
		return
	}
	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	if v.seen[id] {
		v.fail(id, "id", "is duplicated")
	}
	v.seen[id] = true
	if strings.TrimSpace(title) == "" {
		v.fail(id, "title", "is required")
	}
}

func (v *recordValidator) ageRange(id string, r types.AgeRange) {
	if err := r.Validate(); err != nil {
		v.fail(id, "age_range", err.Error())
	}
}

func (v *recordValidator) milestone(m types.Milestone) {
	v.identity(m.ID, m.Title)
	v.ageRange(m.ID, m.AgeRange)
	if !oneOf(m.Category, types.MilestoneCategories) {
		v.fail(m.ID, "category", fmt.Sprintf("unknown category %q", m.Category))
	}
	if !oneOf(m.Importance, types.Importances) {
		v.fail(m.ID, "importance", fmt.Sprintf("unknown importance %q", m.Importance))
	}
	if !oneOf(m.Source, types.Sources) {
		v.fail(m.ID, "source", fmt.Sprintf("unknown source %q", m.Source))
	}
	if s := m.SocialSupport; s != nil && (s.ParentsReportRate < 0 || s.ParentsReportRate > 100) {
		v.fail(m.ID, "social_support.parents_report_rate", "must be between 0 and 100")
	}
}

func (v *recordValidator) activity(a types.Activity) {
	v.identity(a.ID, a.Title)
	v.ageRange(a.ID, a.AgeRange)
	if a.Participants < 1 {
		v.fail(a.ID, "participants", "must be at least 1")
	}
	if !oneOf(a.Category, types.ActivityCategories) {
		v.fail(a.ID, "category", fmt.Sprintf("unknown category %q", a.Category))
	}
	if !oneOf(a.Difficulty, types.Difficulties) {
		v.fail(a.ID, "difficulty", fmt.Sprintf("unknown difficulty %q", a.Difficulty))
	}
}

func (v *recordValidator) event(e types.MedicalEvent) {
	v.identity(e.ID, e.Title)
	if e.TriggerMonths < 0 {
		v.fail(e.ID, "trigger_months", "must be non-negative")
	}
	if e.UrgentFromMonths != nil && *e.UrgentFromMonths < 0 {
		v.fail(e.ID, "urgent_from_months", "must be non-negative")
	}
	if !oneOf(e.Type, types.MedicalEventTypes) {
		v.fail(e.ID, "type", fmt.Sprintf("unknown event type %q", e.Type))
	}
}

func oneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
