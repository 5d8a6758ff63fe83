package models

// ChangeAction is the kind of file mutation an agent proposes.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// ChangeActions lists every valid action, used for exhaustiveness checks.
var ChangeActions = []ChangeAction{ActionCreate, ActionUpdate, ActionDelete}

// ProposedFileChange is one file-level edit the agent wants to make.
// Field requirements depend on Action: create requires After and forbids
// Before, update requires After, delete forbids After.
type ProposedFileChange struct {
	Path   string       `json:"path"`
	Action ChangeAction `json:"action"`
	Before *string      `json:"before,omitempty"`
	After  *string      `json:"after,omitempty"`
}

// BeforeText returns the before content, treating a missing value as empty.
func (c ProposedFileChange) BeforeText() string {
	if c.Before == nil {
		return ""
	}
	return *c.Before
}

// AfterText returns the after content, treating a missing value as empty.
func (c ProposedFileChange) AfterText() string {
	if c.After == nil {
		return ""
	}
	return *c.After
}

// NewCreateChange proposes creating path with the given content.
func NewCreateChange(path, after string) ProposedFileChange {
	return ProposedFileChange{Path: path, Action: ActionCreate, After: &after}
}

// NewUpdateChange proposes replacing the content of path.
func NewUpdateChange(path, before, after string) ProposedFileChange {
	return ProposedFileChange{Path: path, Action: ActionUpdate, Before: &before, After: &after}
}

// NewDeleteChange proposes deleting path.
func NewDeleteChange(path, before string) ProposedFileChange {
	return ProposedFileChange{Path: path, Action: ActionDelete, Before: &before}
}

// FileDiff is the rendered unified diff for one proposed change. The text is
// advisory output for human review; nothing re-parses it to decide validity.
type FileDiff struct {
	Path         string `json:"path"`
	Unified      string `json:"unified"`
	AddedLines   int    `json:"added_lines"`
	RemovedLines int    `json:"removed_lines"`
}

// ChangeStatistics aggregates a change set. AddedChars/RemovedChars are a
// length-delta approximation, not a character-level diff count.
type ChangeStatistics struct {
	Files        int `json:"files"`
	AddedChars   int `json:"added_chars"`
	RemovedChars int `json:"removed_chars"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Deleted      int `json:"deleted"`
}
