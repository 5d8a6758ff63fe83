package services

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"patchbay/models"
)

// BuildFileDiff renders a unified diff for one proposed change. Creates
// yield addition-only diffs, deletes removal-only diffs. The text is
// human-readable output for the approval UI; counts come from the +/-
// marker lines.
func BuildFileDiff(change models.ProposedFileChange) models.FileDiff {
	before := change.BeforeText()
	after := change.AfterText()

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + change.Path,
		ToFile:   "b/" + change.Path,
		Context:  3,
	})
	if err != nil {
		// difflib only errors on writer failures, which a string builder
		// never produces. Fall back to an empty diff.
		unified = ""
	}

	added, removed := countDiffLines(unified)
	return models.FileDiff{
		Path:         change.Path,
		Unified:      unified,
		AddedLines:   added,
		RemovedLines: removed,
	}
}

// BuildFileDiffs renders one diff per change, preserving order.
func BuildFileDiffs(changes []models.ProposedFileChange) []models.FileDiff {
	diffs := make([]models.FileDiff, len(changes))
	for i, c := range changes {
		diffs[i] = BuildFileDiff(c)
	}
	return diffs
}

// splitLines splits s into newline-terminated lines for difflib. Unlike
// difflib.SplitLines it maps the empty string to no lines at all, so a
// create diff contains no phantom removed line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

func countDiffLines(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
