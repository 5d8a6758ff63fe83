package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionState is the lifecycle state of an agent session. Transitions
// between states are enforced by the session store against a fixed table;
// see services.CheckTransition.
type SessionState string

const (
	StateCreated          SessionState = "created"
	StatePlanning         SessionState = "planning"
	StatePreviewReady     SessionState = "preview_ready"
	StateAwaitingApproval SessionState = "awaiting_approval"
	StateApplying         SessionState = "applying"
	StateApplied          SessionState = "applied"
	StateFailed           SessionState = "failed"
)

// SessionStates lists every valid state, used for exhaustiveness checks.
var SessionStates = []SessionState{
	StateCreated,
	StatePlanning,
	StatePreviewReady,
	StateAwaitingApproval,
	StateApplying,
	StateApplied,
	StateFailed,
}

type StepType string

const (
	StepPlan    StepType = "plan"
	StepContext StepType = "context"
	StepModel   StepType = "model"
	StepDiff    StepType = "diff"
	StepApply   StepType = "apply"
)

type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// Message is one chat turn in a session.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentSessionStep is one entry in a session's step timeline. The timeline
// is an event log: a step is written once and never mutated, and completion
// of a phase is recorded by appending a second step of the same type with a
// terminal status and ended_at set.
type AgentSessionStep struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Type      StepType       `json:"type"`
	Name      StepType       `json:"name,omitempty"` // deprecated spelling of Type, read-only
	Status    StepStatus     `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	Details   string         `json:"details,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// RepoRef binds a session to a repository and base branch.
type RepoRef struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	BaseBranch string `json:"base_branch"`
}

// AgentSession is one AI-assisted editing engagement. Messages and the step
// timeline are embedded; previews are stored separately and referenced by
// PreviewID.
type AgentSession struct {
	ID     string    `gorm:"size:64;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"size:255;default:'New Session'" json:"name"`
	Model  string    `gorm:"size:100" json:"model"`
	Goal   string    `gorm:"not null" json:"goal"`

	// Repository is the deprecated free-text "owner/name" binding, retained
	// for reading old records only. New records use Repo.
	Repository string   `gorm:"size:500" json:"repository,omitempty"`
	Repo       *RepoRef `gorm:"serializer:json" json:"repo,omitempty"`

	State     SessionState                          `gorm:"size:32;not null;default:'created';index" json:"state"`
	Messages  datatypes.JSONSlice[Message]          `json:"messages"`
	Steps     datatypes.JSONSlice[AgentSessionStep] `json:"steps,omitempty"`
	PreviewID string                                `gorm:"size:64" json:"preview_id,omitempty"`
	CreatedAt time.Time                             `json:"created_at"`
	UpdatedAt time.Time                             `json:"updated_at"`
}

func (s *AgentSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Clone returns a copy that shares no mutable state with the receiver, so
// cached records can be handed to callers safely.
func (s *AgentSession) Clone() *AgentSession {
	cp := *s
	cp.Messages = slices.Clone(s.Messages)
	cp.Steps = slices.Clone(s.Steps)
	if s.Repo != nil {
		r := *s.Repo
		cp.Repo = &r
	}
	return &cp
}
