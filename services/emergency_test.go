package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/relief-api/models"
)

func TestEmergencyQueries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	fire := env.report("victim", fireReport())
	flood := env.report("victim", models.EmergencyRequest{
		Type: models.TypeFlood, Description: "Water rising", Location: "Patna",
		EmergencyNeeds: models.EmergencyNeeds{Food: true},
	})
	other := env.report("someone-else", models.EmergencyRequest{
		Type: models.TypeAccident, Description: "Bus overturned", Location: "Lat: 19.07, Lng: 72.87",
	})

	_, _ = env.service.Volunteer(ctx, fire.ID.Hex(), "a")
	_, _ = env.service.MarkCompleted(ctx, fire.ID.Hex(), "a")
	_, err := env.service.Approve(ctx, fire.ID.Hex(), "victim")
	require.NoError(t, err)
	_, _ = env.service.Volunteer(ctx, flood.ID.Hex(), "a")
	_, _ = env.service.Volunteer(ctx, flood.ID.Hex(), "b")

	all, err := env.service.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := env.service.ListActive(ctx, models.ActiveFilter{})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, flood.ID, active[0].ID)
	assert.Equal(t, other.ID, active[1].ID)

	active, err = env.service.ListActive(ctx, models.ActiveFilter{Resources: []string{"food"}})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, flood.ID, active[0].ID)

	mine, err := env.service.ListByReporter(ctx, "victim")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := env.service.ListByReporter(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	stats, err := env.service.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{ActiveEmergencies: 2, ResolvedEmergencies: 1, TotalContributors: 2}, stats)

	history, err := env.service.VolunteerHistory(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 2)
	byID := map[string]models.VolunteerHistoryEntry{}
	for _, h := range history {
		byID[h.EmergencyID] = h
	}
	assert.Equal(t, int64(500), byID[fire.ID.Hex()].IncentivesEarned)
	assert.Equal(t, models.AssignmentCompleted, byID[fire.ID.Hex()].Status)
	assert.Equal(t, models.StatusCompleted, byID[fire.ID.Hex()].EmergencyStatus)
	assert.Equal(t, int64(0), byID[flood.ID.Hex()].IncentivesEarned)
	assert.Equal(t, models.AssignmentPending, byID[flood.ID.Hex()].Status)
}

func TestAwaitingApproval(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	waiting := env.report("victim", fireReport())
	idle := env.report("victim", fireReport())

	_, _ = env.service.Volunteer(ctx, waiting.ID.Hex(), "a")
	_, _ = env.service.MarkCompleted(ctx, waiting.ID.Hex(), "a")
	_, _ = env.service.Volunteer(ctx, idle.ID.Hex(), "b")

	found, err := env.service.AwaitingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, waiting.ID, found[0].ID)
}
