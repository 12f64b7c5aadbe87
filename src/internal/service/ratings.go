package service

import (
	"context"
	"strings"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/rules"
)

func (s *Service) rateGuard(ctx context.Context, t model.Team, u model.User) error {
	if !rules.DerivePermissions(t, u, s.now()).CanRate {
		return s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
	}
	return nil
}

// UpdateTechRehearsalRating stores the three star ratings in any status. The
// first rater is kept; later saves record who changed it and when.
func (s *Service) UpdateTechRehearsalRating(ctx context.Context, u model.User, teamID string, r model.TechRehearsalRating) (model.Team, error) {
	a := action{op: "UpdateTechRehearsalRating", key: teamID, flag: FlagUpdating, msg: i18n.MsgRatingSaved}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.rateGuard(ctx, cur, u); err != nil {
			return model.Team{}, err
		}
		if errs := rules.ValidateRating(r); len(errs) > 0 {
			return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, errs...)
		}

		now := s.now()
		r.Comment = strings.TrimSpace(r.Comment)
		if prev := cur.TechRehearsalRating; prev != nil && prev.RatedBy != "" {
			r.RatedBy, r.RatedAt = prev.RatedBy, prev.RatedAt
			r.UpdatedBy, r.UpdatedAt = u.ID, &now
		} else {
			r.RatedBy, r.RatedAt = u.ID, &now
			r.UpdatedBy, r.UpdatedAt = "", nil
		}
		return s.repo.UpdateTechRehearsalRating(sctx, teamID, r)
	})
}

// UpdateScoring stores the judges' scoring for teams past review; the total
// is always recomputed.
func (s *Service) UpdateScoring(ctx context.Context, u model.User, teamID string, sc model.Scoring) (model.Team, error) {
	a := action{op: "UpdateScoring", key: teamID, flag: FlagUpdating, msg: i18n.MsgScoringSaved}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.rateGuard(ctx, cur, u); err != nil {
			return model.Team{}, err
		}
		if !rules.Scorable(cur.Status) {
			return model.Team{}, s.apiErr(ctx, apiErrors.InvalidStatus, i18n.MsgStatusChangeDenied)
		}
		scored, errs := rules.ValidateScoring(sc)
		if len(errs) > 0 {
			return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, errs...)
		}
		return s.repo.UpdateScoring(sctx, teamID, scored)
	})
}
