package types

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Category classifies a milestone by developmental domain.
// The set is the union of the older five-value schema (which uses "motor")
// and the newer six-value schema (which uses "physical").
type Category string

const (
	CategoryPhysical   Category = "physical"
	CategoryMotor      Category = "motor"
	CategoryCognitive  Category = "cognitive"
	CategoryLanguage   Category = "language"
	CategorySocial     Category = "social"
	CategoryEmotional  Category = "emotional"
	CategoryBehavioral Category = "behavioral"
)

// MilestoneCategories lists every accepted milestone category.
var MilestoneCategories = []Category{
	CategoryPhysical,
	CategoryMotor,
	CategoryCognitive,
	CategoryLanguage,
	CategorySocial,
	CategoryEmotional,
	CategoryBehavioral,
}

// Domain folds schema-specific categories onto a shared grouping key.
// "motor" and "physical" describe the same domain across the two schemas.
func (c Category) Domain() Category {
	if c == CategoryMotor {
		return CategoryPhysical
	}
	return c
}

// Importance is the static priority of a milestone.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Importances lists accepted importance levels, most important first.
var Importances = []Importance{ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow}

// Source is the standards body a catalog record was taken from.
type Source string

const (
	SourceAAP      Source = "AAP"
	SourceWHO      Source = "WHO"
	SourceCDC      Source = "CDC"
	SourceCombined Source = "Combined"
)

// Sources lists accepted provenance tags.
var Sources = []Source{SourceAAP, SourceWHO, SourceCDC, SourceCombined}

// AgeRange is an inclusive window of ages in whole months.
// It is written as a two-element sequence, [min, max], in YAML and JSON.
type AgeRange struct {
	Min int
	Max int
}

// Contains reports whether age lies within [Min, Max].
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Validate checks the range invariants.
func (r AgeRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("age range min %d is negative", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("age range min %d exceeds max %d", r.Min, r.Max)
	}
	return nil
}

func (r AgeRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

// UnmarshalYAML implements yaml.Unmarshaler for AgeRange.
func (r *AgeRange) UnmarshalYAML(value *yaml.Node) error {
	var pair []int
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("age range: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("age range must have exactly 2 elements, got %d", len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// MarshalYAML implements yaml.Marshaler for AgeRange.
func (r AgeRange) MarshalYAML() (interface{}, error) {
	return []int{r.Min, r.Max}, nil
}

// MarshalJSON implements json.Marshaler for AgeRange.
func (r AgeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Min, r.Max})
}

// UnmarshalJSON implements json.Unmarshaler for AgeRange.
func (r *AgeRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("age range must have exactly 2 elements, got %d", len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// SocialSupport carries peer statistics attached to some milestones.
type SocialSupport struct {
	ParentsReportRate int      `yaml:"parents_report_rate" json:"parents_report_rate"`
	CommonChallenges  []string `yaml:"common_challenges" json:"common_challenges"`
	SupportTips       []string `yaml:"support_tips" json:"support_tips"`
}

// Milestone is one developmental milestone in a reference catalog.
// Records are immutable after catalog load; completion is tracked
// by identifier outside the record.
type Milestone struct {
	ID            string         `yaml:"id" json:"id"`
	Title         string         `yaml:"title" json:"title"`
	Description   string         `yaml:"description" json:"description"`
	AgeRange      AgeRange       `yaml:"age_range" json:"age_range"`
	Category      Category       `yaml:"category" json:"category"`
	Subcategory   string         `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
	Importance    Importance     `yaml:"importance" json:"importance"`
	Source        Source         `yaml:"source" json:"source"`
	Tips          []string       `yaml:"tips" json:"tips"`
	Activities    []string       `yaml:"activities,omitempty" json:"activities,omitempty"`
	RedFlags      []string       `yaml:"red_flags" json:"red_flags"`
	SocialSupport *SocialSupport `yaml:"social_support,omitempty" json:"social_support,omitempty"`
}

// Range returns the milestone's eligibility window.
func (m Milestone) Range() AgeRange { return m.AgeRange }

// Key returns the milestone identifier.
func (m Milestone) Key() string { return m.ID }

// ActivityCategory classifies a play activity.
type ActivityCategory string

const (
	ActivityPhysical  ActivityCategory = "physical"
	ActivityCognitive ActivityCategory = "cognitive"
	ActivitySocial    ActivityCategory = "social"
	ActivityCreative  ActivityCategory = "creative"
	ActivitySensory   ActivityCategory = "sensory"
)

// ActivityCategories lists accepted activity categories.
var ActivityCategories = []ActivityCategory{
	ActivityPhysical, ActivityCognitive, ActivitySocial, ActivityCreative, ActivitySensory,
}

// Difficulty grades how demanding an activity is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists accepted difficulty levels.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Activity is an age-appropriate play activity.
type Activity struct {
	ID           string           `yaml:"id" json:"id"`
	Title        string           `yaml:"title" json:"title"`
	Description  string           `yaml:"description" json:"description"`
	Instructions []string         `yaml:"instructions" json:"instructions"`
	AgeRange     AgeRange         `yaml:"age_range" json:"age_range"`
	Duration     string           `yaml:"duration" json:"duration"`
	Participants int              `yaml:"participants" json:"participants"`
	Category     ActivityCategory `yaml:"category" json:"category"`
	Difficulty   Difficulty       `yaml:"difficulty" json:"difficulty"`
	Materials    []string         `yaml:"materials" json:"materials"`
	Benefits     []string         `yaml:"benefits" json:"benefits"`
}

// Range returns the activity's eligibility window.
func (a Activity) Range() AgeRange { return a.AgeRange }

// Key returns the activity identifier.
func (a Activity) Key() string { return a.ID }

// MedicalEventType classifies a scheduled medical event.
type MedicalEventType string

const (
	EventVaccine   MedicalEventType = "vaccine"
	EventCheckup   MedicalEventType = "checkup"
	EventScreening MedicalEventType = "screening"
)

// MedicalEventTypes lists accepted medical event types.
var MedicalEventTypes = []MedicalEventType{EventVaccine, EventCheckup, EventScreening}

// MedicalEvent is one entry of the vaccination and checkup schedule.
// It stores no urgency or completion state; both depend on the query.
type MedicalEvent struct {
	ID            string           `yaml:"id" json:"id"`
	Type          MedicalEventType `yaml:"type" json:"type"`
	Title         string           `yaml:"title" json:"title"`
	Description   string           `yaml:"description" json:"description"`
	DueLabel      string           `yaml:"due" json:"due"`
	TriggerMonths int              `yaml:"trigger_months" json:"trigger_months"`
	// UrgentFromMonths overrides the age at which the event turns urgent.
	// Some vaccines are due from 12 months but only urgent from 15.
	UrgentFromMonths *int `yaml:"urgent_from_months,omitempty" json:"urgent_from_months,omitempty"`
}

// UrgentFrom returns the age in months at which the event becomes urgent.
func (e MedicalEvent) UrgentFrom() int {
	if e.UrgentFromMonths != nil {
		return *e.UrgentFromMonths
	}
	return e.TriggerMonths
}

// Stage is the coarse life stage a caregiver picks during onboarding.
type Stage string

const (
	StageExpecting Stage = "expecting"
	StageNewborn   Stage = "newborn"
	StageInfant    Stage = "infant"
	StageToddler   Stage = "toddler"
)

// Stages lists accepted child stages.
var Stages = []Stage{StageExpecting, StageNewborn, StageInfant, StageToddler}

// ParentType is the caregiver's self-description.
type ParentType string

const (
	ParentMom   ParentType = "mom"
	ParentDad   ParentType = "dad"
	ParentOther ParentType = "other"
)

// ParentTypes lists accepted parent types.
var ParentTypes = []ParentType{ParentMom, ParentDad, ParentOther}

// Child is the profile of the tracked child.
// Measurements are optional and stored in metric units.
type Child struct {
	Name              string     `json:"name"`
	Stage             Stage      `json:"stage,omitempty"`
	BirthDate         string     `json:"birth_date,omitempty"`
	Weight            *float64   `json:"weight,omitempty"`
	Height            *float64   `json:"height,omitempty"`
	HeadCircumference *float64   `json:"head_circumference,omitempty"`
	Temperature       *float64   `json:"temperature,omitempty"`
	ParentType        ParentType `json:"parent_type,omitempty"`
}

// User is the session-owned aggregate persisted as one blob.
type User struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Phone               string   `json:"phone"`
	Email               string   `json:"email,omitempty"`
	Avatar              string   `json:"avatar,omitempty"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	Child               *Child   `json:"child,omitempty"`
	CompletedMilestones []string `json:"completed_milestones"`
	CompletedEvents     []string `json:"completed_events"`
}

// MarshalJSON ensures nil completion sets marshal as [] not null.
func (u User) MarshalJSON() ([]byte, error) {
	if u.CompletedMilestones == nil {
		u.CompletedMilestones = []string{}
	}
	if u.CompletedEvents == nil {
		u.CompletedEvents = []string{}
	}
	type Alias User
	return json.Marshal(Alias(u))
}

// MomentType classifies a captured memory.
type MomentType string

const (
	MomentMilestone   MomentType = "milestone"
	MomentPhoto       MomentType = "photo"
	MomentAchievement MomentType = "achievement"
	MomentFirst       MomentType = "first"
)

// MomentTypes lists accepted moment types.
var MomentTypes = []MomentType{MomentMilestone, MomentPhoto, MomentAchievement, MomentFirst}

// Moment is a memory captured by the caregiver.
type Moment struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        MomentType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        time.Time  `json:"date"`
	Tags        []string   `json:"tags"`
	Loved       bool       `json:"loved"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MarshalJSON ensures nil tags marshal as [] not null.
func (m Moment) MarshalJSON() ([]byte, error) {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	type Alias Moment
	return json.Marshal(Alias(m))
}

// Mood is the child's overall mood for a day.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodFussy   Mood = "fussy"
)

// Moods lists accepted moods.
var Moods = []Mood{MoodHappy, MoodNeutral, MoodFussy}

// SleepQuality grades the previous night's sleep.
type SleepQuality string

const (
	SleepExcellent SleepQuality = "excellent"
	SleepGood      SleepQuality = "good"
	SleepFair      SleepQuality = "fair"
	SleepPoor      SleepQuality = "poor"
)

// SleepQualities lists accepted sleep grades.
var SleepQualities = []SleepQuality{SleepExcellent, SleepGood, SleepFair, SleepPoor}

// CheckInActivities lists the activity tags a daily check-in may carry.
var CheckInActivities = []string{"outdoor", "reading", "creative", "social", "physical", "music"}

// CheckIn is one daily check-in. There is at most one per user per date.
type CheckIn struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	Date       string       `json:"date"`
	Mood       Mood         `json:"mood"`
	Sleep      SleepQuality `json:"sleep"`
	Activities []string     `json:"activities"`
	CreatedAt  time.Time    `json:"created_at"`
}

// MarshalJSON ensures nil activities marshal as [] not null.
func (c CheckIn) MarshalJSON() ([]byte, error) {
	if c.Activities == nil {
		c.Activities = []string{}
	}
	type Alias CheckIn
	return json.Marshal(Alias(c))
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	UserCount int64    `json:"user_count"`
	Catalogs  []string `json:"catalogs"`
	DevMode   bool     `json:"dev_mode,omitempty"`
}

// StoreStats holds aggregate store statistics.
type StoreStats struct {
	UserCount    int64 `json:"user_count"`
	MomentCount  int64 `json:"moment_count"`
	CheckInCount int64 `json:"check_in_count"`
	PendingCodes int64 `json:"pending_codes"`
}
