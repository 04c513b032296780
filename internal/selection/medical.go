package selection

import "github.com/hyperengineering/nurture/internal/types"

// DefaultMedicalVisibility is how many months ahead scheduled events are shown.
const DefaultMedicalVisibility = 3

// MedicalItem is a scheduled event with its per-query state.
type MedicalItem struct {
	types.MedicalEvent
	Urgent    bool `json:"urgent"`
	Completed bool `json:"completed"`
}

// MedicalSchedule is the medical view at one age.
type MedicalSchedule struct {
	Age int `json:"age_months"`
	// Upcoming holds visible events not yet completed, in schedule order.
	Upcoming []MedicalItem `json:"upcoming"`
	// Urgent is the subset of Upcoming that is due now.
	Urgent []MedicalItem `json:"urgent"`
	// Completed holds visible events the caller has completed.
	Completed   []MedicalItem `json:"completed"`
	AllCaughtUp bool          `json:"all_caught_up"`
}

// SelectMedical returns the events triggering at or before age+visibility.
// Urgency is computed here, against this age, for every call; an event is
// urgent once age reaches its urgent-from month.
func SelectMedical(events []types.MedicalEvent, age int, completed CompletedSet, visibility int) MedicalSchedule {
	if visibility < 0 {
		visibility = 0
	}
	out := MedicalSchedule{
		Age:       age,
		Upcoming:  []MedicalItem{},
		Urgent:    []MedicalItem{},
		Completed: []MedicalItem{},
	}
	for _, e := range events {
		if e.TriggerMonths < 0 || e.TriggerMonths > age+visibility {
			continue
		}
		item := MedicalItem{
			MedicalEvent: e,
			Urgent:       age >= e.UrgentFrom(),
			Completed:    completed.Has(e.ID),
		}
		if item.Completed {
			out.Completed = append(out.Completed, item)
			continue
		}
		out.Upcoming = append(out.Upcoming, item)
		if item.Urgent {
			out.Urgent = append(out.Urgent, item)
		}
	}
	out.AllCaughtUp = len(out.Upcoming) == 0
	return out
}
