package service

import (
	"context"
	"strconv"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/rules"

	"go.uber.org/zap"
)

// TeamView is a team together with everything derived from it for one user.
type TeamView struct {
	Team              model.Team             `json:"team"`
	Permissions       rules.Permissions      `json:"permissions"`
	Completion        rules.Completion       `json:"completion"`
	CompletionPercent int                    `json:"completion_percent"`
	Validation        rules.ValidationResult `json:"validation"`
	AverageRating     float64                `json:"average_rating"`
	Loading           LoadingState           `json:"loading"`
}

// Preview is the rule engine's verdict on an unsaved team.
type Preview struct {
	Validation        rules.ValidationResult `json:"validation"`
	DraftErrors       []string               `json:"draft_errors"`
	Completion        rules.Completion       `json:"completion"`
	CompletionPercent int                    `json:"completion_percent"`
}

func (s *Service) view(t model.Team, u model.User) TeamView {
	c := rules.CheckCompletion(t)
	return TeamView{
		Team:              t,
		Permissions:       rules.DerivePermissions(t, u, s.now()),
		Completion:        c,
		CompletionPercent: c.Percent(),
		Validation:        rules.ValidateTeam(t),
		AverageRating:     rules.AverageRating(t),
		Loading:           s.inflight.state(t.ID),
	}
}

func PreviewTeam(t model.Team) Preview {
	t = model.Normalize(t)
	c := rules.CheckCompletion(t)
	return Preview{
		Validation:        rules.ValidateTeam(t),
		DraftErrors:       rules.ValidateDraft(t),
		Completion:        c,
		CompletionPercent: c.Percent(),
	}
}

// ListTeams refreshes the event from the store and returns it as seen by u.
// Concurrent refreshes of the same event share one store call.
func (s *Service) ListTeams(ctx context.Context, u model.User, eventID string) ([]TeamView, error) {
	s.log.Debug("ListTeams: start", zap.String("event_id", eventID))

	_, err, _ := s.sf.Do(eventID, func() (any, error) {
		sctx, cancel := s.storeCtx(context.WithoutCancel(ctx))
		defer cancel()

		teams, err := s.repo.GetTeams(sctx, eventID)
		if err != nil {
			return nil, err
		}
		s.teams.Replace(eventID, teams)
		return nil, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "ListTeams", err)
	}

	teams, _ := s.teams.List(eventID)
	out := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		out = append(out, s.view(t, u))
	}
	return out, nil
}

func (s *Service) GetTeam(ctx context.Context, u model.User, teamID string) (TeamView, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	t, err := s.repo.GetTeam(sctx, teamID)
	if err != nil {
		return TeamView{}, s.fail(ctx, "GetTeam", err)
	}
	s.teams.Apply(t)
	return s.view(t, u), nil
}

func createKey(eventID, userID string) string {
	return "create:" + eventID + ":" + userID
}

// IsCreating reports whether u has a create in flight for the event.
func (s *Service) IsCreating(eventID string, u model.User) bool {
	return s.inflight.state(createKey(eventID, u.ID)).IsCreating
}

// CreateTeam stores a new draft owned by u. Only the draft checks must pass;
// the full validation is enforced on submission.
func (s *Service) CreateTeam(ctx context.Context, u model.User, eventID string, t model.Team) (model.Team, error) {
	a := action{op: "CreateTeam", key: createKey(eventID, u.ID), flag: FlagCreating, msg: i18n.MsgTeamCreated}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		if !u.IsOrganizer() && u.Role != model.RoleTeamDirector {
			return model.Team{}, s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
		}

		t = model.Normalize(t)
		t.EventID = eventID
		t.CreatedBy = u.ID
		t.Status = model.StatusDraft
		t.PerformanceOrder = nil
		if !u.IsOrganizer() {
			t.OrganizerNotes = ""
			t.BackupTeam = false
			t.CanEditUntil = nil
		}
		if errs := rules.ValidateDraft(t); len(errs) > 0 {
			return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, errs...)
		}
		return s.repo.CreateTeam(sctx, t)
	})
}

// UpdateTeam applies a partial update. Drafts need only pass the draft
// checks; a team past draft must stay fully valid.
func (s *Service) UpdateTeam(ctx context.Context, u model.User, teamID string, patch model.TeamPatch) (model.Team, error) {
	a := action{op: "UpdateTeam", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamUpdated}
	var cur model.Team
	updated, err := s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		unlock := s.locks.lock(teamID)
		defer unlock()

		var err error
		cur, err = s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if !rules.DerivePermissions(cur, u, s.now()).CanEdit {
			return model.Team{}, s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
		}
		if patch.OrganizerOnly() && !u.IsOrganizer() {
			return model.Team{}, s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
		}
		if patch.PerformanceOrder != nil {
			if !rules.PerformanceOrderAllowed(cur.Status) {
				return model.Team{}, s.apiErr(ctx, apiErrors.InvalidStatus, i18n.MsgStatusChangeDenied)
			}
			if *patch.PerformanceOrder <= 0 {
				return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid,
					"performance_order must be positive, got "+strconv.Itoa(*patch.PerformanceOrder))
			}
		}

		next := patch.Apply(model.Clone(cur))
		if next.Status == model.StatusDraft {
			if errs := rules.ValidateDraft(next); len(errs) > 0 {
				return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, errs...)
			}
		} else if res := rules.ValidateTeam(next); !res.IsValid {
			return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, res.Errors...)
		}
		return s.repo.UpdateTeam(sctx, next)
	})
	if err != nil {
		return model.Team{}, err
	}
	s.dropReplacedMedia(ctx, cur, updated)
	return updated, nil
}

func (s *Service) DeleteTeam(ctx context.Context, u model.User, teamID string) error {
	a := action{op: "DeleteTeam", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamDeleted, remove: true}
	deleted, err := s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		unlock := s.locks.lock(teamID)
		defer unlock()

		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if !rules.DerivePermissions(cur, u, s.now()).CanDelete {
			if u.Role == model.RoleTeamDirector && u.Owns(cur) {
				return model.Team{}, s.apiErr(ctx, apiErrors.InvalidStatus, i18n.MsgStatusChangeDenied)
			}
			return model.Team{}, s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
		}
		if err := s.repo.DeleteTeam(sctx, teamID); err != nil {
			return model.Team{}, err
		}
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.dropReplacedMedia(ctx, deleted, model.Team{})
	return nil
}
