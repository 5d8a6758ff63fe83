package services

import "patchbay/models"

// sessionTransitions is the full lifecycle table. "applied" is terminal;
// "failed" is re-enterable into planning (retry) but otherwise terminal.
var sessionTransitions = map[models.SessionState][]models.SessionState{
	models.StateCreated:          {models.StatePlanning, models.StateFailed},
	models.StatePlanning:         {models.StatePreviewReady, models.StateFailed},
	models.StatePreviewReady:     {models.StateAwaitingApproval, models.StatePlanning, models.StateFailed},
	models.StateAwaitingApproval: {models.StateApplying, models.StatePreviewReady, models.StateFailed},
	models.StateApplying:         {models.StateApplied, models.StateFailed},
	models.StateApplied:          {},
	models.StateFailed:           {models.StatePlanning},
}

// KnownState reports whether s is one of the defined session states.
func KnownState(s models.SessionState) bool {
	_, ok := sessionTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is present in the lifecycle table.
func CanTransition(from, to models.SessionState) bool {
	for _, t := range sessionTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError naming both states when
// from -> to is not a legal lifecycle transition.
func CheckTransition(from, to models.SessionState) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
