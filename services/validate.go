package services

import (
	"strings"

	"patchbay/models"
)

// ChangeValidator gates proposed file changes: structural checks on the
// path, per-action field requirements, and the path policy.
type ChangeValidator struct {
	policy *PathPolicy
}

func NewChangeValidator(policy *PathPolicy) *ChangeValidator {
	return &ChangeValidator{policy: policy}
}

func (v *ChangeValidator) Policy() *PathPolicy { return v.policy }

// ValidateChange checks a single proposed change. The returned error names
// the rule that failed.
func (v *ChangeValidator) ValidateChange(change models.ProposedFileChange, opts PolicyOptions) error {
	path := change.Path
	if strings.TrimSpace(path) == "" {
		return validationErrorf("path", "must not be empty")
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return validationErrorf("path", "must be repository-relative, got absolute path %q", path)
	}
	for _, seg := range strings.Split(NormalizePath(path), "/") {
		if seg == ".." {
			return validationErrorf("path", "must not contain parent-directory segments: %q", path)
		}
	}
	if reason := v.policy.Check(path, opts); reason != "" {
		return &PathPolicyError{Violations: []PathViolation{{Path: path, Reason: reason}}}
	}

	switch change.Action {
	case models.ActionCreate:
		if change.After == nil {
			return validationErrorf("after", "required for create of %q", path)
		}
		if change.Before != nil {
			return validationErrorf("before", "must not be set for create of %q", path)
		}
	case models.ActionUpdate:
		if change.After == nil {
			return validationErrorf("after", "required for update of %q", path)
		}
	case models.ActionDelete:
		if change.After != nil {
			return validationErrorf("after", "must not be set for delete of %q", path)
		}
	default:
		return validationErrorf("action", "unknown action %q", change.Action)
	}
	return nil
}

// ValidateChanges runs the path policy over the whole batch first, so every
// path violation is reported in one error, then checks each change.
func (v *ChangeValidator) ValidateChanges(changes []models.ProposedFileChange, opts PolicyOptions) error {
	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}
	if err := v.policy.ValidatePaths(paths, opts); err != nil {
		return err
	}
	for _, c := range changes {
		if err := v.ValidateChange(c, opts); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePreview cross-checks a preview before it is persisted: every
// change must validate, and the diff and stats counts must agree with the
// change count.
func (v *ChangeValidator) ValidatePreview(p *models.Preview, opts PolicyOptions) error {
	if strings.TrimSpace(p.SessionID) == "" {
		return validationErrorf("session_id", "must not be empty")
	}
	if err := v.ValidateChanges(p.Changes, opts); err != nil {
		return err
	}
	if len(p.Diffs) != len(p.Changes) {
		return validationErrorf("diffs", "count %d does not match change count %d",
			len(p.Diffs), len(p.Changes))
	}
	if p.Stats.Files != len(p.Changes) {
		return validationErrorf("stats", "file count %d does not match change count %d",
			p.Stats.Files, len(p.Changes))
	}
	return nil
}
