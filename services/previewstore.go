package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"patchbay/models"
)

// PreviewStore persists previews independently of sessions, so a preview
// can outlive or be queried apart from the session that produced it. Same
// discipline as the session store: one serialized write queue, kill-switch
// gate on mutations, lazily-loaded read cache swapped only after a durable
// write.
type PreviewStore struct {
	db     *gorm.DB
	status *Status
	queue  *writeQueue

	mu       sync.RWMutex
	loaded   bool
	previews map[string]*models.Preview
}

func NewPreviewStore(db *gorm.DB, status *Status) *PreviewStore {
	return &PreviewStore{
		db:       db,
		status:   status,
		queue:    newWriteQueue(),
		previews: map[string]*models.Preview{},
	}
}

func (s *PreviewStore) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	var all []models.Preview
	if err := s.db.Find(&all).Error; err != nil {
		return err
	}
	for i := range all {
		p := all[i]
		s.previews[p.ID] = &p
	}
	s.loaded = true
	return nil
}

// Create persists a preview, generating an id and defaulting created_at to
// now when absent, and returns the stored record.
func (s *PreviewStore) Create(input models.Preview) (*models.Preview, error) {
	if s.status.ReadOnly() {
		return nil, ErrReadOnly
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, validationErrorf("session_id", "must not be empty")
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	var result *models.Preview
	err := s.queue.Do(func() error {
		p := input.Clone()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		if err := s.db.Create(p).Error; err != nil {
			return err
		}
		s.mu.Lock()
		s.previews[p.ID] = p
		s.mu.Unlock()
		result = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the preview, or nil, nil when it does not exist.
func (s *PreviewStore) GetByID(id string) (*models.Preview, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.previews[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// GetBySession returns the most recent preview for a session, or nil, nil
// when the session has none.
func (s *PreviewStore) GetBySession(sessionID string) (*models.Preview, error) {
	all, err := s.ListBySession(sessionID)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

// ListBySession returns every preview for a session, newest first.
func (s *PreviewStore) ListBySession(sessionID string) ([]models.Preview, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []models.Preview
	for _, p := range s.previews {
		if p.SessionID == sessionID {
			out = append(out, *p.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes one preview, reporting whether it existed.
func (s *PreviewStore) Delete(id string) (bool, error) {
	if s.status.ReadOnly() {
		return false, ErrReadOnly
	}
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}

	deleted := false
	err := s.queue.Do(func() error {
		s.mu.RLock()
		_, ok := s.previews[id]
		s.mu.RUnlock()
		if !ok {
			return nil
		}
		if err := s.db.Delete(&models.Preview{}, "id = ?", id).Error; err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.previews, id)
		s.mu.Unlock()
		deleted = true
		return nil
	})
	return deleted, err
}

// DeleteBySession removes every preview for a session and returns how many
// were deleted. Used when a session is discarded.
func (s *PreviewStore) DeleteBySession(sessionID string) (int, error) {
	if s.status.ReadOnly() {
		return 0, ErrReadOnly
	}
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}

	count := 0
	err := s.queue.Do(func() error {
		s.mu.RLock()
		var ids []string
		for id, p := range s.previews {
			if p.SessionID == sessionID {
				ids = append(ids, id)
			}
		}
		s.mu.RUnlock()
		if len(ids) == 0 {
			return nil
		}
		if err := s.db.Delete(&models.Preview{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		s.mu.Lock()
		for _, id := range ids {
			delete(s.previews, id)
		}
		s.mu.Unlock()
		count = len(ids)
		return nil
	})
	return count, err
}
