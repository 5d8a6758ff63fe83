package services

import "patchbay/models"

// CalculateStatistics folds a change set into aggregate counts. Character
// deltas are a length-difference approximation (missing before/after treated
// as empty): callers that need exact added/removed character counts must
// derive them from the unified diffs instead.
func CalculateStatistics(changes []models.ProposedFileChange) models.ChangeStatistics {
	stats := models.ChangeStatistics{Files: len(changes)}
	for _, c := range changes {
		switch c.Action {
		case models.ActionCreate:
			stats.Created++
		case models.ActionUpdate:
			stats.Updated++
		case models.ActionDelete:
			stats.Deleted++
		}
		delta := len(c.AfterText()) - len(c.BeforeText())
		if delta > 0 {
			stats.AddedChars += delta
		} else {
			stats.RemovedChars += -delta
		}
	}
	return stats
}
