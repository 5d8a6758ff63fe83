package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/models"
)

func TestCanTransition_Table(t *testing.T) {
	allowed := map[models.SessionState][]models.SessionState{
		models.StateCreated:          {models.StatePlanning, models.StateFailed},
		models.StatePlanning:         {models.StatePreviewReady, models.StateFailed},
		models.StatePreviewReady:     {models.StateAwaitingApproval, models.StatePlanning, models.StateFailed},
		models.StateAwaitingApproval: {models.StateApplying, models.StatePreviewReady, models.StateFailed},
		models.StateApplying:         {models.StateApplied, models.StateFailed},
		models.StateApplied:          {},
		models.StateFailed:           {models.StatePlanning},
	}

	for _, from := range models.SessionStates {
		want := map[models.SessionState]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range models.SessionStates {
			assert.Equal(t, want[to], CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestCheckTransition_NamesBothStates(t *testing.T) {
	err := CheckTransition(models.StateApplied, models.StatePlanning)
	require.Error(t, err)

	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StateApplied, te.From)
	assert.Equal(t, models.StatePlanning, te.To)
	assert.Contains(t, err.Error(), "applied")
	assert.Contains(t, err.Error(), "planning")
}

func TestAppliedIsTerminal(t *testing.T) {
	for _, to := range models.SessionStates {
		assert.False(t, CanTransition(models.StateApplied, to),
			"applied must have no outgoing transition, got applied -> %s", to)
	}
}

func TestFailedRetriesIntoPlanningOnly(t *testing.T) {
	for _, to := range models.SessionStates {
		want := to == models.StatePlanning
		assert.Equal(t, want, CanTransition(models.StateFailed, to))
	}
}

func TestKnownState(t *testing.T) {
	for _, s := range models.SessionStates {
		assert.True(t, KnownState(s))
	}
	assert.False(t, KnownState("bogus"))
	assert.False(t, KnownState(""))
}
