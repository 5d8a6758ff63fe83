package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"patchbay/models"
)

func TestBuildFileDiff_CreateHasOnlyAdditions(t *testing.T) {
	diff := BuildFileDiff(models.NewCreateChange("docs/x.md", "hello\nworld\n"))

	assert.Equal(t, "docs/x.md", diff.Path)
	assert.Equal(t, 2, diff.AddedLines)
	assert.Equal(t, 0, diff.RemovedLines)
	assert.Contains(t, diff.Unified, "+++ b/docs/x.md")
	assert.Contains(t, diff.Unified, "+hello")
	assert.NotContains(t, diff.Unified, "\n-")
}

func TestBuildFileDiff_DeleteHasOnlyRemovals(t *testing.T) {
	diff := BuildFileDiff(models.NewDeleteChange("docs/x.md", "hello\nworld\n"))

	assert.Equal(t, 0, diff.AddedLines)
	assert.Equal(t, 2, diff.RemovedLines)
	assert.Contains(t, diff.Unified, "-hello")
}

func TestBuildFileDiff_UpdateIsTwoSided(t *testing.T) {
	diff := BuildFileDiff(models.NewUpdateChange("docs/x.md", "one\ntwo\nthree\n", "one\n2\nthree\n"))

	assert.Equal(t, 1, diff.AddedLines)
	assert.Equal(t, 1, diff.RemovedLines)
	assert.Contains(t, diff.Unified, "-two")
	assert.Contains(t, diff.Unified, "+2")
	assert.Contains(t, diff.Unified, "--- a/docs/x.md")
}

func TestBuildFileDiff_NoTrailingNewline(t *testing.T) {
	diff := BuildFileDiff(models.NewCreateChange("docs/x.md", "hello"))
	assert.Equal(t, 1, diff.AddedLines)
	assert.Equal(t, 0, diff.RemovedLines)
}

func TestBuildFileDiffs_PreservesOrder(t *testing.T) {
	changes := []models.ProposedFileChange{
		models.NewCreateChange("docs/a.md", "a"),
		models.NewDeleteChange("docs/b.md", "b"),
		models.NewUpdateChange("docs/c.md", "c", "cc"),
	}
	diffs := BuildFileDiffs(changes)
	assert.Len(t, diffs, len(changes))
	for i, d := range diffs {
		assert.Equal(t, changes[i].Path, d.Path)
	}
}

func TestCountDiffLines_IgnoresHeaders(t *testing.T) {
	unified := strings.Join([]string{
		"--- a/docs/x.md",
		"+++ b/docs/x.md",
		"@@ -1,1 +1,1 @@",
		"-old",
		"+new",
		"",
	}, "\n")
	added, removed := countDiffLines(unified)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}
