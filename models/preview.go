package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Preview is the bundle a human reviews before changes are applied: the
// plan, the proposed changes, their diffs, and aggregate statistics.
// Diffs is index-aligned with Changes, and Stats.Files equals len(Changes).
// A newer preview supersedes an older one; previews are only deleted when a
// session is discarded.
type Preview struct {
	ID        string                                  `gorm:"size:64;primaryKey" json:"id"`
	SessionID string                                  `gorm:"size:64;not null;index" json:"session_id"`
	Plan      datatypes.JSONSlice[string]             `json:"plan"`
	Changes   datatypes.JSONSlice[ProposedFileChange] `json:"changes"`
	Diffs     datatypes.JSONSlice[FileDiff]           `json:"diffs"`
	Stats     ChangeStatistics                        `gorm:"serializer:json" json:"stats"`
	CreatedAt time.Time                               `json:"created_at"`
}

func (p *Preview) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Clone returns a copy that shares no mutable state with the receiver.
func (p *Preview) Clone() *Preview {
	cp := *p
	cp.Plan = slices.Clone(p.Plan)
	cp.Changes = slices.Clone(p.Changes)
	cp.Diffs = slices.Clone(p.Diffs)
	return &cp
}
