package service

import (
	"context"
	"strings"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/rules"
)

// guard checks the role and status guard of tr. A user who would be allowed
// on a team in the transition's source status gets INVALID_STATUS; anyone
// else gets FORBIDDEN.
func (s *Service) guard(ctx context.Context, tr rules.Transition, t model.Team, u model.User) error {
	now := s.now()
	if rules.Allowed(tr, rules.DerivePermissions(t, u, now)) {
		return nil
	}
	atSource := t
	atSource.Status = tr.Source()
	if t.Status != tr.Source() && rules.Allowed(tr, rules.DerivePermissions(atSource, u, now)) {
		return s.apiErr(ctx, apiErrors.InvalidStatus, i18n.MsgStatusChangeDenied)
	}
	return s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied)
}

// SubmitTeam moves a draft to submitted once it is valid and complete.
// Neither gate reaches the store when it fails.
func (s *Service) SubmitTeam(ctx context.Context, u model.User, teamID string) (model.Team, error) {
	a := action{op: "SubmitTeam", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamSubmitted}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.guard(ctx, rules.TransitionSubmit, cur, u); err != nil {
			return model.Team{}, err
		}
		if res := rules.ValidateTeam(cur); !res.IsValid {
			return model.Team{}, s.apiErr(ctx, apiErrors.ValidationFailed, i18n.MsgTeamInvalid, res.Errors...)
		}
		if c := rules.CheckCompletion(cur); !c.IsComplete {
			return model.Team{}, s.apiErr(ctx, apiErrors.Incomplete, i18n.MsgTeamIncomplete, c.Missing...)
		}
		return s.repo.SubmitTeam(sctx, teamID)
	})
}

func (s *Service) ApproveTeam(ctx context.Context, u model.User, teamID string) (model.Team, error) {
	a := action{op: "ApproveTeam", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamApproved}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.guard(ctx, rules.TransitionApprove, cur, u); err != nil {
			return model.Team{}, err
		}
		return s.repo.ApproveTeam(sctx, teamID)
	})
}

// RejectTeam rejects a submitted team. An empty reason is allowed.
func (s *Service) RejectTeam(ctx context.Context, u model.User, teamID, reason string) (model.Team, error) {
	a := action{op: "RejectTeam", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamRejected}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.guard(ctx, rules.TransitionReject, cur, u); err != nil {
			return model.Team{}, err
		}
		return s.repo.RejectTeam(sctx, teamID, strings.TrimSpace(reason))
	})
}

// MarkAsCompleted closes an approved team. The completion gate applies
// again since organizers may have edited the team after approval.
func (s *Service) MarkAsCompleted(ctx context.Context, u model.User, teamID string) (model.Team, error) {
	a := action{op: "MarkAsCompleted", key: teamID, flag: FlagUpdating, msg: i18n.MsgTeamCompleted}
	return s.do(ctx, a, func(sctx context.Context) (model.Team, error) {
		cur, err := s.repo.GetTeam(sctx, teamID)
		if err != nil {
			return model.Team{}, err
		}
		if err := s.guard(ctx, rules.TransitionComplete, cur, u); err != nil {
			return model.Team{}, err
		}
		if c := rules.CheckCompletion(cur); !c.IsComplete {
			return model.Team{}, s.apiErr(ctx, apiErrors.Incomplete, i18n.MsgTeamIncomplete, c.Missing...)
		}
		return s.repo.MarkAsCompleted(sctx, teamID)
	})
}
