package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/models"
)

func newTestPipeline(t *testing.T) (*PreviewService, *SessionStore, *PreviewStore) {
	t.Helper()
	db := newTestDB(t)
	status := NewStatus(false)
	sessions := NewSessionStore(db, status)
	previews := NewPreviewStore(db, status)
	svc := NewPreviewService(sessions, previews, NewChangeValidator(DefaultPathPolicy()))
	return svc, sessions, previews
}

// Full walk of the workflow: create, plan, preview one file creation,
// approve, apply, and verify the terminal state rejects further moves.
func TestBuildPreview_Lifecycle(t *testing.T) {
	svc, sessions, _ := newTestPipeline(t)
	owner := uuid.New()

	sess, err := sessions.Create(owner, CreateSessionInput{Goal: "G"})
	require.NoError(t, err)
	assert.Equal(t, models.StateCreated, sess.State)

	planning := models.StatePlanning
	sess, err = sessions.Update(owner, sess.ID, SessionPatch{State: &planning})
	require.NoError(t, err)

	preview, err := svc.BuildPreview(owner, sess.ID, []string{"create docs/x.md"},
		[]models.ProposedFileChange{models.NewCreateChange("docs/x.md", "hello")}, PolicyOptions{})
	require.NoError(t, err)
	require.NotNil(t, preview)

	assert.Equal(t, models.ChangeStatistics{
		Files:      1,
		Created:    1,
		AddedChars: 5,
	}, preview.Stats)
	require.Len(t, preview.Diffs, 1)
	assert.Equal(t, 1, preview.Diffs[0].AddedLines)
	assert.Equal(t, 0, preview.Diffs[0].RemovedLines)

	sess, err = sessions.GetByID(owner, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePreviewReady, sess.State)
	assert.Equal(t, preview.ID, sess.PreviewID)

	// Timeline recorded the diff phase start and completion.
	var diffStatuses []models.StepStatus
	for _, step := range sess.Steps {
		if step.Type == models.StepDiff {
			diffStatuses = append(diffStatuses, step.Status)
		}
	}
	assert.Equal(t, []models.StepStatus{models.StepStarted, models.StepSucceeded}, diffStatuses)

	for _, target := range []models.SessionState{
		models.StateAwaitingApproval,
		models.StateApplying,
		models.StateApplied,
	} {
		target := target
		sess, err = sessions.Update(owner, sess.ID, SessionPatch{State: &target})
		require.NoError(t, err)
	}

	state := models.StatePlanning
	_, err = sessions.Update(owner, sess.ID, SessionPatch{State: &state})
	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
}

func TestBuildPreview_UnknownSession(t *testing.T) {
	svc, _, _ := newTestPipeline(t)

	preview, err := svc.BuildPreview(uuid.New(), "missing", nil, nil, PolicyOptions{})
	require.NoError(t, err)
	assert.Nil(t, preview)
}

func TestBuildPreview_PathViolationsAggregatedAndRecorded(t *testing.T) {
	svc, sessions, previews := newTestPipeline(t)
	owner := uuid.New()

	sess, err := sessions.Create(owner, CreateSessionInput{Goal: "G"})
	require.NoError(t, err)

	_, err = svc.BuildPreview(owner, sess.ID, nil, []models.ProposedFileChange{
		models.NewCreateChange("package.json", "{}"),
		models.NewCreateChange("lib/x.js", "x"),
		models.NewCreateChange("docs/ok.md", "ok"),
	}, PolicyOptions{})
	require.Error(t, err)

	var pe *PathPolicyError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Violations, 2)

	// Nothing was persisted and the failure is on the timeline.
	stored, err := previews.ListBySession(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	sess, err = sessions.GetByID(owner, sess.ID)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Steps)
	last := sess.Steps[len(sess.Steps)-1]
	assert.Equal(t, models.StepDiff, last.Type)
	assert.Equal(t, models.StepFailed, last.Status)
	require.NotNil(t, last.EndedAt)
}

func TestBuildPreview_SupersedesRatherThanDeletes(t *testing.T) {
	svc, sessions, previews := newTestPipeline(t)
	owner := uuid.New()

	sess, err := sessions.Create(owner, CreateSessionInput{Goal: "G"})
	require.NoError(t, err)
	planning := models.StatePlanning
	_, err = sessions.Update(owner, sess.ID, SessionPatch{State: &planning})
	require.NoError(t, err)

	first, err := svc.BuildPreview(owner, sess.ID, nil,
		[]models.ProposedFileChange{models.NewCreateChange("docs/a.md", "a")}, PolicyOptions{})
	require.NoError(t, err)

	// Revise: preview_ready -> planning, then build again.
	time.Sleep(5 * time.Millisecond)
	_, err = sessions.Update(owner, sess.ID, SessionPatch{State: &planning})
	require.NoError(t, err)
	second, err := svc.BuildPreview(owner, sess.ID, nil,
		[]models.ProposedFileChange{models.NewCreateChange("docs/b.md", "b")}, PolicyOptions{})
	require.NoError(t, err)

	sess, err = sessions.GetByID(owner, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, sess.PreviewID)

	all, err := previews.ListBySession(sess.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[1].ID, "older preview is superseded, not deleted")
}
