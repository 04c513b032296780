package session

import (
	"github.com/hyperengineering/nurture/internal/types"
	"github.com/hyperengineering/nurture/internal/validation"
)

// ProfilePatch is a partial update of a user. Nil fields are left as they are.
type ProfilePatch struct {
	Name                *string     `json:"name,omitempty"`
	Email               *string     `json:"email,omitempty"`
	Avatar              *string     `json:"avatar,omitempty"`
	OnboardingCompleted *bool       `json:"onboarding_completed,omitempty"`
	Child               *ChildPatch `json:"child,omitempty"`
}

// ChildPatch is a partial update of the child profile, merged field by field.
type ChildPatch struct {
	Name              *string           `json:"name,omitempty"`
	Stage             *types.Stage      `json:"stage,omitempty"`
	BirthDate         *string           `json:"birth_date,omitempty"`
	Weight            *float64          `json:"weight,omitempty"`
	Height            *float64          `json:"height,omitempty"`
	HeadCircumference *float64          `json:"head_circumference,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	ParentType        *types.ParentType `json:"parent_type,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil &&
		p.OnboardingCompleted == nil && p.Child == nil
}

// Apply merges the patch into u. A child is created when the patch
// carries one and u has none.
func (p ProfilePatch) Apply(u *types.User) {
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Avatar, p.Avatar)
	set(&u.OnboardingCompleted, p.OnboardingCompleted)
	if p.Child != nil {
		if u.Child == nil {
			u.Child = &types.Child{}
		}
		p.Child.Apply(u.Child)
	}
}

// Apply merges the patch into c.
func (p ChildPatch) Apply(c *types.Child) {
	set(&c.Name, p.Name)
	set(&c.Stage, p.Stage)
	set(&c.BirthDate, p.BirthDate)
	setPtr(&c.Weight, p.Weight)
	setPtr(&c.Height, p.Height)
	setPtr(&c.HeadCircumference, p.HeadCircumference)
	setPtr(&c.Temperature, p.Temperature)
	set(&c.ParentType, p.ParentType)
}

// Validate checks the fields the patch sets.
func (p ProfilePatch) Validate() []validation.ValidationError {
	var c validation.Collector
	if p.Name != nil {
		c.Text("name", *p.Name, validation.MaxNameLength)
	}
	if p.Email != nil {
		c.Text("email", *p.Email, validation.MaxTitleLength)
	}
	if p.Avatar != nil {
		c.Text("avatar", *p.Avatar, validation.MaxDescriptionLength)
	}
	errs := c.Errors()
	if p.Child != nil {
		var child types.Child
		p.Child.Apply(&child)
		errs = append(errs, validation.ValidateChild(child)...)
	}
	return errs
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		val := *v
		*dst = &val
	}
}
