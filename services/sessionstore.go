package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"patchbay/models"
)

// SessionStore owns agent session records. Every mutation goes through a
// single write queue and is gated by the kill-switch; reads are served from
// an in-memory cache that is lazily populated from the database and only
// swapped after a write durably completes, so a read never observes a
// partially-written record. All operations are scoped to the calling user;
// a session owned by someone else behaves exactly like one that does not
// exist.
type SessionStore struct {
	db     *gorm.DB
	status *Status
	queue  *writeQueue

	mu       sync.RWMutex
	loaded   bool
	sessions map[string]*models.AgentSession
}

func NewSessionStore(db *gorm.DB, status *Status) *SessionStore {
	return &SessionStore{
		db:       db,
		status:   status,
		queue:    newWriteQueue(),
		sessions: map[string]*models.AgentSession{},
	}
}

func (s *SessionStore) ensureLoaded() error {
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
	var all []models.AgentSession
	if err := s.db.Find(&all).Error; err != nil {
		return err
	}
	for i := range all {
		sess := all[i]
		normalizeSession(&sess)
		s.sessions[sess.ID] = &sess
	}
	s.loaded = true
	return nil
}

func (s *SessionStore) lookup(id string) (*models.AgentSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) put(sess *models.AgentSession) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// CreateSessionInput carries the caller-supplied fields for a new session.
// ID is optional; a UUID is generated when absent.
type CreateSessionInput struct {
	ID    string
	Name  string
	Model string
	Goal  string
	Repo  *models.RepoRef
}

// Create builds a new session in state "created". Creating with an id that
// already exists for the same user returns the existing record unchanged
// rather than erroring, so concurrent creates with a caller-supplied id
// resolve to one record.
func (s *SessionStore) Create(userID uuid.UUID, input CreateSessionInput) (*models.AgentSession, error) {
	if s.status.ReadOnly() {
		return nil, ErrReadOnly
	}
	if strings.TrimSpace(input.Goal) == "" {
		return nil, validationErrorf("goal", "must not be empty")
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	var result *models.AgentSession
	err := s.queue.Do(func() error {
		if input.ID != "" {
			if existing, ok := s.lookup(input.ID); ok {
				if existing.UserID != userID {
					return validationErrorf("id", "session id %q is already in use", input.ID)
				}
				result = existing.Clone()
				return nil
			}
		}

		now := time.Now().UTC()
		sess := &models.AgentSession{
			ID:        input.ID,
			UserID:    userID,
			Name:      input.Name,
			Model:     input.Model,
			Goal:      input.Goal,
			State:     models.StateCreated,
			Messages:  datatypes.JSONSlice[models.Message]{},
			Steps:     datatypes.JSONSlice[models.AgentSessionStep]{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if sess.Name == "" {
			sess.Name = "New Session"
		}
		if input.Repo != nil {
			r := *input.Repo
			sess.Repo = &r
		}
		if err := s.db.Create(sess).Error; err != nil {
			return err
		}
		s.put(sess)
		result = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the session only when it is owned by userID; otherwise it
// returns nil, nil, indistinguishable from a missing record.
func (s *SessionStore) GetByID(userID uuid.UUID, id string) (*models.AgentSession, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	sess, ok := s.lookup(id)
	if !ok || sess.UserID != userID {
		return nil, nil
	}
	return sess.Clone(), nil
}

// List returns the user's sessions, most recently touched first.
func (s *SessionStore) List(userID uuid.UUID) ([]models.AgentSession, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]models.AgentSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, *sess.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// SessionPatch is a partial update. Nil fields are left untouched. AddStep
// and AddMessage append; nothing ever rewrites or removes existing timeline
// entries or messages.
type SessionPatch struct {
	Name       *string
	Model      *string
	Goal       *string
	Repo       *models.RepoRef
	State      *models.SessionState
	PreviewID  *string
	AddStep    *models.AgentSessionStep
	AddMessage *models.Message
}

// Update applies patch to the session. A state change is checked against
// the lifecycle table inside the serialized write, so two concurrent
// transition attempts cannot both succeed from the same source state; on
// any validation failure the stored record is left untouched. A session
// that does not exist or belongs to another user yields nil, nil.
func (s *SessionStore) Update(userID uuid.UUID, id string, patch SessionPatch) (*models.AgentSession, error) {
	if s.status.ReadOnly() {
		return nil, ErrReadOnly
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	var result *models.AgentSession
	err := s.queue.Do(func() error {
		cur, ok := s.lookup(id)
		if !ok || cur.UserID != userID {
			return nil
		}

		next := cur.Clone()
		if patch.State != nil {
			if !KnownState(*patch.State) {
				return validationErrorf("state", "unknown state %q", *patch.State)
			}
			if err := CheckTransition(next.State, *patch.State); err != nil {
				return err
			}
			next.State = *patch.State
		}
		if patch.Goal != nil {
			if strings.TrimSpace(*patch.Goal) == "" {
				return validationErrorf("goal", "must not be empty")
			}
			next.Goal = *patch.Goal
		}
		if patch.Name != nil {
			next.Name = *patch.Name
		}
		if patch.Model != nil {
			next.Model = *patch.Model
		}
		if patch.Repo != nil {
			r := *patch.Repo
			next.Repo = &r
		}
		if patch.PreviewID != nil {
			next.PreviewID = *patch.PreviewID
		}
		if patch.AddStep != nil {
			step := *patch.AddStep
			if step.ID == "" {
				step.ID = uuid.NewString()
			}
			if step.SessionID == "" {
				step.SessionID = id
			}
			if step.Timestamp.IsZero() {
				step.Timestamp = time.Now().UTC()
			}
			if step.StartedAt.IsZero() {
				step.StartedAt = step.Timestamp
			}
			next.Steps = append(next.Steps, step)
		}
		if patch.AddMessage != nil {
			msg := *patch.AddMessage
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now().UTC()
			}
			next.Messages = append(next.Messages, msg)
		}

		next.UpdatedAt = time.Now().UTC()
		if err := s.db.Save(next).Error; err != nil {
			return err
		}
		s.put(next)
		result = next.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a session the user owns. It reports whether a record was
// deleted; previews referencing the session are cleaned up by the caller.
func (s *SessionStore) Delete(userID uuid.UUID, id string) (bool, error) {
	if s.status.ReadOnly() {
		return false, ErrReadOnly
	}
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}

	deleted := false
	err := s.queue.Do(func() error {
		cur, ok := s.lookup(id)
		if !ok || cur.UserID != userID {
			return nil
		}
		if err := s.db.Delete(&models.AgentSession{}, "id = ?", id).Error; err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		deleted = true
		return nil
	})
	return deleted, err
}
