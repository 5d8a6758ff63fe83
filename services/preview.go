package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"patchbay/models"
)

// PreviewService runs the proposed-change pipeline: validate the batch
// against the path policy and per-action rules, render diffs, aggregate
// statistics, persist the preview and link it to the session. Session and
// preview writes are two independently queued operations; a crash between
// them can leave a stale preview reference, which readers treat as "no
// preview yet".
type PreviewService struct {
	sessions  *SessionStore
	previews  *PreviewStore
	validator *ChangeValidator
}

func NewPreviewService(sessions *SessionStore, previews *PreviewStore, validator *ChangeValidator) *PreviewService {
	return &PreviewService{sessions: sessions, previews: previews, validator: validator}
}

// BuildPreview produces and persists a preview for the session's proposed
// changes. It returns nil, nil when the session does not exist for this
// user. The session timeline records the diff phase start and outcome.
func (ps *PreviewService) BuildPreview(userID uuid.UUID, sessionID string, plan []string, changes []models.ProposedFileChange, opts PolicyOptions) (*models.Preview, error) {
	sess, err := ps.sessions.GetByID(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if _, err := ps.sessions.Update(userID, sessionID, SessionPatch{
		AddStep: &models.AgentSessionStep{Type: models.StepDiff, Status: models.StepStarted},
	}); err != nil {
		return nil, err
	}

	preview := models.Preview{
		SessionID: sessionID,
		Plan:      datatypes.NewJSONSlice(plan),
		Changes:   datatypes.NewJSONSlice(changes),
		Diffs:     datatypes.NewJSONSlice(BuildFileDiffs(changes)),
		Stats:     CalculateStatistics(changes),
	}
	if err := ps.validator.ValidatePreview(&preview, opts); err != nil {
		ps.recordDiffOutcome(userID, sessionID, models.StepFailed, err.Error())
		return nil, err
	}

	stored, err := ps.previews.Create(preview)
	if err != nil {
		ps.recordDiffOutcome(userID, sessionID, models.StepFailed, err.Error())
		return nil, err
	}

	patch := SessionPatch{PreviewID: &stored.ID}
	if CanTransition(sess.State, models.StatePreviewReady) {
		state := models.StatePreviewReady
		patch.State = &state
	}
	if _, err := ps.sessions.Update(userID, sessionID, patch); err != nil {
		return nil, err
	}

	ps.recordDiffOutcome(userID, sessionID, models.StepSucceeded, "")
	return stored, nil
}

// recordDiffOutcome appends the completion step for the diff phase. The
// timeline is best-effort audit data, so append failures are swallowed.
func (ps *PreviewService) recordDiffOutcome(userID uuid.UUID, sessionID string, status models.StepStatus, details string) {
	now := time.Now().UTC()
	_, _ = ps.sessions.Update(userID, sessionID, SessionPatch{
		AddStep: &models.AgentSessionStep{
			Type:    models.StepDiff,
			Status:  status,
			EndedAt: &now,
			Details: details,
		},
	})
}
