package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	want := []string{DefaultActivities, DefaultMedical, EnhancedMilestones, OfficialMilestones}
	if diff := cmp.Diff(want, set.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{EnhancedMilestones, OfficialMilestones}, set.MilestoneNames())
}

func TestLoadEmbedded_RecordCounts(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, info := range set.List() {
		counts[info.Name] = info.Records
	}
	assert.Equal(t, map[string]int{
		EnhancedMilestones: 21,
		OfficialMilestones: 14,
		DefaultActivities:  12,
		DefaultMedical:     26,
	}, counts)
}

func TestLoadEmbedded_Policies(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	enhanced, err := set.Milestones(EnhancedMilestones)
	require.NoError(t, err)
	assert.Equal(t, Policy{LookaheadMonths: 3, GraceMonths: 0, OverdueGraceMonths: 2}, enhanced.Policy)

	official, err := set.Milestones(OfficialMilestones)
	require.NoError(t, err)
	assert.Equal(t, Policy{LookaheadMonths: 0, GraceMonths: 6, OverdueGraceMonths: 3}, official.Policy)
}

func TestSet_UnknownCatalog(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	_, err = set.Milestones(DefaultActivities)
	assert.ErrorIs(t, err, ErrUnknownCatalog, "lookup is per kind")
	_, err = set.Activities("activities/none")
	assert.ErrorIs(t, err, ErrUnknownCatalog)
	_, err = set.Medical("medical/none")
	assert.ErrorIs(t, err, ErrUnknownCatalog)
}

func TestFind(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	mc, err := set.Milestones(EnhancedMilestones)
	require.NoError(t, err)
	m, ok := mc.Find("first_smile")
	require.True(t, ok)
	assert.Equal(t, 1, m.AgeRange.Min)
	assert.Equal(t, 3, m.AgeRange.Max)
	_, ok = mc.Find("moon_landing")
	assert.False(t, ok)

	sched, err := set.Medical(DefaultMedical)
	require.NoError(t, err)
	e, ok := sched.Find("mmr_1")
	require.True(t, ok)
	assert.Equal(t, 15, e.UrgentFrom())
	_, ok = sched.Find("birth_checkup")
	assert.True(t, ok)
}

func TestOverridePolicy(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	p := Policy{LookaheadMonths: 1, GraceMonths: 2, OverdueGraceMonths: 5}
	require.NoError(t, set.OverridePolicy(OfficialMilestones, p))

	mc, err := set.Milestones(OfficialMilestones)
	require.NoError(t, err)
	assert.Equal(t, p, mc.Policy)

	assert.ErrorIs(t, set.OverridePolicy(DefaultActivities, p), ErrUnknownCatalog)
	assert.Error(t, set.OverridePolicy(OfficialMilestones, Policy{GraceMonths: -1}))
}

func TestList_PolicyOnlyOnMilestones(t *testing.T) {
	set, err := LoadEmbedded()
	require.NoError(t, err)

	for _, info := range set.List() {
		if info.Kind == KindMilestones {
			assert.NotNil(t, info.Policy, info.Name)
		} else {
			assert.Nil(t, info.Policy, info.Name)
		}
	}
}
