package settlement_test

import (
	"strings"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID() string { return "generated" }

// applyPlan mimics the group repository: delete rows whose normalized name is
// in Remove, then insert Insert.
func applyPlan(rows []domain.GroupMember, plan *settlement.GroupPlan) []domain.GroupMember {
	drop := make(map[string]bool, len(plan.Remove))
	for _, n := range plan.Remove {
		drop[n] = true
	}
	var out []domain.GroupMember
	for _, r := range rows {
		if !drop[domain.NormalizeName(r.BettorName)] {
			out = append(out, r)
		}
	}
	return append(out, plan.Insert...)
}

func TestGroupSlug(t *testing.T) {
	assert.Equal(t, "ana-maria__jose", settlement.GroupSlug([]string{"José", "Ana  Maria"}))
	assert.Equal(t, "a__b", settlement.GroupSlug([]string{"b", "A"}))
	assert.Equal(t, "", settlement.GroupSlug([]string{"!!!", "  "}))
	assert.Len(t, settlement.GroupSlug([]string{strings.Repeat("x", 80), strings.Repeat("y", 80)}), 100)
}

func TestPlanDefinitionIdentifierPrecedence(t *testing.T) {
	existing := []domain.GroupMember{
		{GroupIdentifier: "old", BettorName: "ana"},
		{GroupIdentifier: "old", BettorName: "bruno"},
	}

	plan, err := settlement.PlanDefinition(existing, []settlement.GroupSpec{{GroupIdentifier: "mine", Names: []string{"Carla"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "mine", plan.Groups[0].GroupIdentifier)

	plan, err = settlement.PlanDefinition(existing, []settlement.GroupSpec{{Names: []string{" ANA ", "Dora"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "ana__dora", plan.Groups[0].GroupIdentifier, "slug wins over a member's current group")
	assert.Equal(t, []string{"ana", "bruno", "dora"}, plan.Remove, "ana's old group is detached")
	assert.Equal(t, []string{"ANA", "Dora"}, plan.Groups[0].Members)

	ab := []domain.GroupMember{
		{GroupIdentifier: "a__b", BettorName: "a"},
		{GroupIdentifier: "a__b", BettorName: "b"},
	}
	plan, err = settlement.PlanDefinition(ab, []settlement.GroupSpec{{Names: []string{"A", "C"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "a__c", plan.Groups[0].GroupIdentifier)

	plan, err = settlement.PlanDefinition(nil, []settlement.GroupSpec{{Names: []string{"Éva", "Zé"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "eva__ze", plan.Groups[0].GroupIdentifier)

	plan, err = settlement.PlanDefinition(nil, []settlement.GroupSpec{{Names: []string{"???"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "generated", plan.Groups[0].GroupIdentifier)
}

func TestPlanDefinitionRejects(t *testing.T) {
	cases := map[string][]settlement.GroupSpec{
		"no groups":       nil,
		"empty names":     {{Names: []string{" ", ""}}},
		"name twice":      {{Names: []string{"Ana", "Bruno"}}, {Names: []string{"ana", "Carla"}}},
		"same identifier": {{GroupIdentifier: "g", Names: []string{"Ana"}}, {GroupIdentifier: "g", Names: []string{"Bruno"}}},
	}
	for name, specs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := settlement.PlanDefinition(nil, specs, fixedID)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestPlanDefinitionDuplicateWithinGroupIsFolded(t *testing.T) {
	plan, err := settlement.PlanDefinition(nil, []settlement.GroupSpec{{Names: []string{"Ana", "ana", "ANA "}}}, fixedID)
	require.NoError(t, err)
	require.Len(t, plan.Insert, 1)
	assert.Equal(t, "Ana", plan.Insert[0].BettorName, "first spelling is kept")
}

// TestPlanDefinitionMoveDetachesOldGroup: moving Ana out of g1 into g2 must
// not leave Bruno alone in g1.
func TestPlanDefinitionMoveDetachesOldGroup(t *testing.T) {
	existing := []domain.GroupMember{
		{GroupIdentifier: "g1", BettorName: "Ana"},
		{GroupIdentifier: "g1", BettorName: "Bruno"},
		{GroupIdentifier: "g3", BettorName: "Dora"},
	}

	plan, err := settlement.PlanDefinition(existing, []settlement.GroupSpec{{GroupIdentifier: "g2", Names: []string{"Ana", "Carla"}}}, fixedID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bruno", "carla"}, plan.Remove)

	rows := applyPlan(existing, plan)
	gi := settlement.NewGroupIndex(rows)
	_, grouped := gi.GroupOf("Bruno")
	assert.False(t, grouped, "Bruno is ungrouped")
	id, _ := gi.GroupOf("ana")
	assert.Equal(t, "g2", id)
	id, _ = gi.GroupOf("dora")
	assert.Equal(t, "g3", id, "untouched groups stay")
	assert.Equal(t, []string{"Ana", "Carla"}, gi.Members("g2"))
}

func TestPlanDissolve(t *testing.T) {
	existing := []domain.GroupMember{
		{GroupIdentifier: "g1", BettorName: "ana"},
		{GroupIdentifier: "g1", BettorName: "Bruno"},
		{GroupIdentifier: "g2", BettorName: "carla"},
	}

	plan, err := settlement.PlanDissolve(existing, settlement.DissolveSelector{GroupIdentifier: "g1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bruno"}, plan.Remove)
	assert.Equal(t, []string{"ana", "Bruno"}, plan.Released)

	plan, err = settlement.PlanDissolve(existing, settlement.DissolveSelector{Names: []string{"Carla", "Bruno"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"bruno", "carla"}, plan.Remove)

	plan, err = settlement.PlanDissolve(existing, settlement.DissolveSelector{GroupIdentifier: "g1", Names: []string{"carla", "ana"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, plan.Remove)

	_, err = settlement.PlanDissolve(existing, settlement.DissolveSelector{})
	assert.True(t, domain.IsValidation(err))

	_, err = settlement.PlanDissolve(existing, settlement.DissolveSelector{GroupIdentifier: "nope"})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)

	_, err = settlement.PlanDissolve(nil, settlement.DissolveSelector{Names: []string{"ana"}})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestGroupIndexList(t *testing.T) {
	gi := settlement.NewGroupIndex([]domain.GroupMember{
		{GroupIdentifier: "z", BettorName: "Bruno"},
		{GroupIdentifier: "a", BettorName: "carla"},
		{GroupIdentifier: "z", BettorName: "ana"},
	})
	list := gi.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].GroupIdentifier)
	assert.Equal(t, []string{"ana", "Bruno"}, list[1].Members)
	assert.Equal(t, "ana/Bruno", gi.DisplayName("z"))

	id, ok := gi.GroupOf("  BRUNO ")
	assert.True(t, ok)
	assert.Equal(t, "z", id)
}
