package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ce-fello/festival-teams-service/src/internal/model"

	"go.uber.org/zap"
)

// stampColumn is the audit timestamp written when a team enters a status.
var stampColumn = map[model.Status]string{
	model.StatusSubmitted: "submitted_at",
	model.StatusApproved:  "approved_at",
	model.StatusRejected:  "rejected_at",
}

func (r *Repositories) SubmitTeam(ctx context.Context, teamID string) (model.Team, error) {
	return r.transition(ctx, teamID, model.StatusDraft, model.StatusSubmitted, "")
}

func (r *Repositories) ApproveTeam(ctx context.Context, teamID string) (model.Team, error) {
	return r.transition(ctx, teamID, model.StatusSubmitted, model.StatusApproved, "")
}

func (r *Repositories) RejectTeam(ctx context.Context, teamID, reason string) (model.Team, error) {
	return r.transition(ctx, teamID, model.StatusSubmitted, model.StatusRejected, reason)
}

func (r *Repositories) MarkAsCompleted(ctx context.Context, teamID string) (model.Team, error) {
	return r.transition(ctx, teamID, model.StatusApproved, model.StatusCompleted, "")
}

// transition locks the row, re-checks the source status and moves the team
// to the target status in one transaction.
func (r *Repositories) transition(ctx context.Context, teamID string, from, to model.Status, reason string) (model.Team, error) {
	r.Log.Debug("transition: start", zap.String("team_id", teamID), zap.String("from", string(from)), zap.String("to", string(to)))

	tx, err := r.BeginTx(ctx)
	if err != nil {
		r.Log.Error("transition: begin tx failed", zap.Error(err))
		return model.Team{}, err
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.Log.Warn("transition: rollback failed", zap.Error(err))
		}
	}()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM teams WHERE id=$1 FOR UPDATE`, teamID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("transition: not found", zap.String("team_id", teamID))
			return model.Team{}, model.ErrNotFound
		}
		r.Log.Error("transition: select for update failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}
	if model.Status(current) != from {
		r.Log.Debug("transition: status mismatch", zap.String("team_id", teamID), zap.String("status", current))
		return model.Team{}, model.ErrInvalidTransition
	}

	query := `UPDATE teams SET status=$2, updated_at=now()`
	if col, ok := stampColumn[to]; ok {
		query += `, ` + col + `=now()`
	}
	args := []any{teamID, string(to)}
	if to == model.StatusRejected {
		query += `, rejection_reason=$3`
		args = append(args, reason)
	}
	query += ` WHERE id=$1 RETURNING ` + teamColumns

	updated, err := scanTeam(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		r.Log.Error("transition: update failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}

	if err := tx.Commit(); err != nil {
		r.Log.Error("transition: commit failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}

	r.Log.Info("transition: success", zap.String("team_id", teamID), zap.String("status", string(updated.Status)))
	return updated, nil
}
