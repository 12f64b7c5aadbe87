package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/google/uuid"

	"go.uber.org/zap"
)

// MemoryStore keeps teams in process memory. It follows the same contract
// as the postgres repositories and is used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	teams map[string]model.Team
	log   *zap.Logger
	now   func() time.Time
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		teams: make(map[string]model.Team),
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) GetTeams(_ context.Context, eventID string) ([]model.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Team{}
	for _, t := range m.teams {
		if t.EventID == eventID {
			out = append(out, model.Clone(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].PerformanceOrder, out[j].PerformanceOrder
		switch {
		case oi != nil && oj != nil && *oi != *oj:
			return *oi < *oj
		case oi != nil && oj == nil:
			return true
		case oi == nil && oj != nil:
			return false
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	m.log.Debug("MemoryStore.GetTeams: success", zap.String("event_id", eventID), zap.Int("count", len(out)))
	return out, nil
}

func (m *MemoryStore) GetTeam(_ context.Context, teamID string) (model.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.teams[teamID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	return model.Clone(t), nil
}

func (m *MemoryStore) CreateTeam(_ context.Context, t model.Team) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t = model.Normalize(model.Clone(t))
	t.ID = uuid.New().String()
	t.Status = model.StatusDraft
	t.CreatedAt = now
	t.UpdatedAt = now
	t.SubmittedAt, t.ApprovedAt, t.RejectedAt = nil, nil, nil
	t.Scoring, t.TechRehearsalRating = nil, nil
	m.teams[t.ID] = t

	m.log.Info("MemoryStore.CreateTeam: success", zap.String("team_id", t.ID))
	return model.Clone(t), nil
}

func (m *MemoryStore) UpdateTeam(_ context.Context, t model.Team) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.teams[t.ID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	t = model.Normalize(model.Clone(t))
	// fields owned by transitions and audit stay server-side
	t.EventID = cur.EventID
	t.Status = cur.Status
	t.RejectionReason = cur.RejectionReason
	t.Scoring = cur.Scoring
	t.TechRehearsalRating = cur.TechRehearsalRating
	t.CreatedBy = cur.CreatedBy
	t.CreatedAt = cur.CreatedAt
	t.SubmittedAt, t.ApprovedAt, t.RejectedAt = cur.SubmittedAt, cur.ApprovedAt, cur.RejectedAt
	t.UpdatedAt = m.now()
	m.teams[t.ID] = t

	m.log.Info("MemoryStore.UpdateTeam: success", zap.String("team_id", t.ID))
	return model.Clone(t), nil
}

func (m *MemoryStore) AttachMedia(_ context.Context, teamID string, p model.MediaPatch) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.teams[teamID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	cur = p.Apply(cur)
	cur.UpdatedAt = m.now()
	m.teams[teamID] = cur

	m.log.Info("MemoryStore.AttachMedia: success", zap.String("team_id", teamID))
	return model.Clone(cur), nil
}

func (m *MemoryStore) DeleteTeam(_ context.Context, teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.teams[teamID]; !ok {
		return model.ErrNotFound
	}
	delete(m.teams, teamID)
	m.log.Info("MemoryStore.DeleteTeam: success", zap.String("team_id", teamID))
	return nil
}

func (m *MemoryStore) SubmitTeam(_ context.Context, teamID string) (model.Team, error) {
	return m.transition(teamID, model.StatusDraft, model.StatusSubmitted, "")
}

func (m *MemoryStore) ApproveTeam(_ context.Context, teamID string) (model.Team, error) {
	return m.transition(teamID, model.StatusSubmitted, model.StatusApproved, "")
}

func (m *MemoryStore) RejectTeam(_ context.Context, teamID, reason string) (model.Team, error) {
	return m.transition(teamID, model.StatusSubmitted, model.StatusRejected, reason)
}

func (m *MemoryStore) MarkAsCompleted(_ context.Context, teamID string) (model.Team, error) {
	return m.transition(teamID, model.StatusApproved, model.StatusCompleted, "")
}

func (m *MemoryStore) transition(teamID string, from, to model.Status, reason string) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	if t.Status != from {
		return model.Team{}, model.ErrInvalidTransition
	}

	now := m.now()
	t.Status = to
	t.UpdatedAt = now
	switch to {
	case model.StatusSubmitted:
		t.SubmittedAt = &now
	case model.StatusApproved:
		t.ApprovedAt = &now
	case model.StatusRejected:
		t.RejectedAt = &now
		t.RejectionReason = reason
	}
	m.teams[teamID] = t

	m.log.Info("MemoryStore.transition: success", zap.String("team_id", teamID), zap.String("status", string(to)))
	return model.Clone(t), nil
}

func (m *MemoryStore) UpdateTechRehearsalRating(_ context.Context, teamID string, r model.TechRehearsalRating) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	t.TechRehearsalRating = &r
	t.UpdatedAt = m.now()
	m.teams[teamID] = t
	return model.Clone(t), nil
}

func (m *MemoryStore) UpdateScoring(_ context.Context, teamID string, s model.Scoring) (model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return model.Team{}, model.ErrNotFound
	}
	t.Scoring = &s
	t.UpdatedAt = m.now()
	m.teams[teamID] = t
	return model.Clone(t), nil
}

func (m *MemoryStore) GetStatusCounts(_ context.Context, eventID string) (map[model.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[model.Status]int)
	for _, t := range m.teams {
		if t.EventID == eventID {
			out[t.Status]++
		}
	}
	return out, nil
}

func (m *MemoryStore) GetLevelCounts(_ context.Context, eventID string) (map[model.PerformanceLevel]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[model.PerformanceLevel]int)
	for _, t := range m.teams {
		if t.EventID == eventID && t.PerformanceLevel != "" {
			out[t.PerformanceLevel]++
		}
	}
	return out, nil
}
