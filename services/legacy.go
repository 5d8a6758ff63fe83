package services

import (
	"strings"

	"patchbay/models"
)

// normalizeSession upgrades records written by earlier builds to the
// canonical shape. It runs exactly once per record, when the record is
// loaded into the cache; nothing downstream branches on which legacy field
// is present.
//
// Two legacy shapes exist: the free-text "repository" string that predates
// the structured repo binding, and timeline steps that spelled the type
// field "name".
func normalizeSession(s *models.AgentSession) {
	if s.Repo == nil && s.Repository != "" {
		ref := models.RepoRef{Name: s.Repository, BaseBranch: "main"}
		if owner, name, ok := strings.Cut(s.Repository, "/"); ok {
			ref.Owner, ref.Name = owner, name
		}
		s.Repo = &ref
	}
	for i := range s.Steps {
		if s.Steps[i].Type == "" && s.Steps[i].Name != "" {
			s.Steps[i].Type = s.Steps[i].Name
		}
	}
}
