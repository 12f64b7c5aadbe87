package service

import (
	"context"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/rules"
)

type EventStats struct {
	EventID       string                         `json:"event_id"`
	Total         int                            `json:"total"`
	ByStatus      map[model.Status]int           `json:"by_status"`
	ByLevel       map[model.PerformanceLevel]int `json:"by_level"`
	RatedTeams    int                            `json:"rated_teams"`
	AverageRating float64                        `json:"average_rating"`
	ScoredTeams   int                            `json:"scored_teams"`
	AverageScore  float64                        `json:"average_score"`
}

// EventStats summarises an event for the organizer dashboard.
func (s *Service) EventStats(ctx context.Context, u model.User, eventID string) (EventStats, error) {
	if !u.IsOrganizer() {
		return EventStats{}, s.fail(ctx, "EventStats", s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied))
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	byStatus, err := s.repo.GetStatusCounts(sctx, eventID)
	if err != nil {
		return EventStats{}, s.fail(ctx, "EventStats", err)
	}
	byLevel, err := s.repo.GetLevelCounts(sctx, eventID)
	if err != nil {
		return EventStats{}, s.fail(ctx, "EventStats", err)
	}
	teams, err := s.repo.GetTeams(sctx, eventID)
	if err != nil {
		return EventStats{}, s.fail(ctx, "EventStats", err)
	}

	st := EventStats{EventID: eventID, ByStatus: byStatus, ByLevel: byLevel}
	for _, n := range byStatus {
		st.Total += n
	}

	var ratingSum, scoreSum float64
	for _, t := range teams {
		if avg := rules.AverageRating(t); avg > 0 {
			st.RatedTeams++
			ratingSum += avg
		}
		if t.Scoring != nil {
			st.ScoredTeams++
			scoreSum += t.Scoring.TotalScore
		}
	}
	if st.RatedTeams > 0 {
		st.AverageRating = ratingSum / float64(st.RatedTeams)
	}
	if st.ScoredTeams > 0 {
		st.AverageScore = scoreSum / float64(st.ScoredTeams)
	}
	return st, nil
}
