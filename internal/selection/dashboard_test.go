package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSelectMilestones_Category(t *testing.T) {
	c := milestoneCatalog(t, catalog.EnhancedMilestones)

	view := SelectMilestones(c, 6, CompletedSet{}, types.CategoryLanguage)

	require.False(t, view.Current.Empty)
	for _, m := range view.Current.Items {
		assert.Equal(t, types.CategoryLanguage, m.Category)
	}
	assert.Equal(t, c.Name, view.Catalog)
	assert.Equal(t, LookaheadWindow(3), view.Window)
}

func TestSelectMilestones_EmptyAtAdvancedAge(t *testing.T) {
	c := milestoneCatalog(t, catalog.EnhancedMilestones)

	view := SelectMilestones(c, 70, CompletedSet{}, "")

	assert.True(t, view.Current.Empty)
	assert.Len(t, view.Overdue, len(c.Milestones))
}

func TestSuggest(t *testing.T) {
	milestones := []ClassifiedMilestone{
		{Milestone: types.Milestone{ID: "done", Category: types.CategoryPhysical}, Tier: TierCompleted},
		{Milestone: types.Milestone{ID: "walk", Category: types.CategoryMotor}, Tier: TierCritical},
		{Milestone: types.Milestone{ID: "talk", Category: types.CategoryLanguage}, Tier: TierHigh},
		{Milestone: types.Milestone{ID: "run", Category: types.CategoryPhysical}, Tier: TierNormal},
		{Milestone: types.Milestone{ID: "share", Category: types.CategoryEmotional}, Tier: TierNormal},
	}
	activities := []types.Activity{
		{ID: "dance", Category: types.ActivityPhysical},
		{ID: "puzzle", Category: types.ActivityCognitive},
		{ID: "tea-party", Category: types.ActivitySocial},
	}

	got := Suggest(milestones, activities, 4)

	require.Len(t, got, 3)
	assert.Equal(t, "dance", got[0].Activity.ID)
	assert.Equal(t, "walk", got[0].TargetMilestone)
	assert.Equal(t, "puzzle", got[1].Activity.ID)
	assert.Equal(t, "tea-party", got[2].Activity.ID)
	assert.Equal(t, "share", got[2].TargetMilestone)

	assert.Len(t, Suggest(milestones, activities, 1), 1)
}

func TestBuildDashboard(t *testing.T) {
	set := loadCatalogs(t)
	birth := refNow.AddDate(0, 0, -200)
	user := types.User{
		ID:                  "user_1",
		Child:               &types.Child{Name: "Ada", BirthDate: birth.Format(time.RFC3339)},
		CompletedMilestones: []string{"rolls_over"},
		CompletedEvents:     []string{"birth_checkup", "hep_b_1"},
	}

	d, err := BuildDashboard(user, set, refNow, DefaultDashboardOptions())
	require.NoError(t, err)

	assert.Equal(t, "Ada", d.ChildName)
	assert.Equal(t, 200, d.Age.Days)
	assert.Equal(t, 6, d.Age.Months)
	assert.Equal(t, types.StageInfant, d.Stage)
	assert.Equal(t, "6 months old", d.AgeLabel)

	require.NotEmpty(t, d.Milestones.Current.Items)
	assert.Equal(t, TierCompleted, d.Milestones.Current.Items[0].Tier)
	assert.Equal(t, "rolls_over", d.Milestones.Current.Items[0].ID)

	for _, a := range d.Activities.Items {
		assert.True(t, a.AgeRange.Contains(6), a.ID)
	}
	assert.LessOrEqual(t, len(d.Suggestions), MaxSuggestions)
	assert.Contains(t, itemIDs(d.Medical.Completed), "birth_checkup")
	assert.Contains(t, itemIDs(d.Medical.Urgent), "6m_checkup")
}

func TestBuildDashboard_NoChildUsesFallbackAge(t *testing.T) {
	d, err := BuildDashboard(types.User{ID: "user_2"}, loadCatalogs(t), refNow, DefaultDashboardOptions())
	require.NoError(t, err)

	assert.Equal(t, age.FallbackMonths, d.Age.Months)
	assert.Equal(t, []string{age.WarnBirthDateMissing}, d.Age.Warnings)
}

func TestBuildDashboard_FallbackLabelMatchesClassificationAge(t *testing.T) {
	d, err := BuildDashboard(types.User{ID: "user_2"}, loadCatalogs(t), refNow, DefaultDashboardOptions())
	require.NoError(t, err)

	assert.Equal(t, age.Months(d.Age.Days), d.Age.Months)
	assert.Equal(t, "2 years old", d.AgeLabel)
	assert.Equal(t, types.StageToddler, d.Stage)
	assert.Equal(t, d.Age.Months, d.Milestones.Current.Age)
}

func TestBuildDashboard_UnknownCatalog(t *testing.T) {
	opts := DefaultDashboardOptions()
	opts.MilestoneCatalog = "milestones/nope"

	_, err := BuildDashboard(types.User{}, loadCatalogs(t), refNow, opts)

	assert.True(t, errors.Is(err, catalog.ErrUnknownCatalog))
}
