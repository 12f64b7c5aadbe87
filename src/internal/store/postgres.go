package store

import (
	"context"
	"database/sql"

	"github.com/ce-fello/festival-teams-service/src/internal/model"

	"go.uber.org/zap"
)

// Repository is the external data store for teams. Every method returns the
// server-authoritative record after the write.
type Repository interface {
	GetTeams(ctx context.Context, eventID string) ([]model.Team, error)
	GetTeam(ctx context.Context, teamID string) (model.Team, error)
	CreateTeam(ctx context.Context, t model.Team) (model.Team, error)
	UpdateTeam(ctx context.Context, t model.Team) (model.Team, error)
	AttachMedia(ctx context.Context, teamID string, p model.MediaPatch) (model.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
	SubmitTeam(ctx context.Context, teamID string) (model.Team, error)
	ApproveTeam(ctx context.Context, teamID string) (model.Team, error)
	RejectTeam(ctx context.Context, teamID, reason string) (model.Team, error)
	MarkAsCompleted(ctx context.Context, teamID string) (model.Team, error)
	UpdateTechRehearsalRating(ctx context.Context, teamID string, r model.TechRehearsalRating) (model.Team, error)
	UpdateScoring(ctx context.Context, teamID string, s model.Scoring) (model.Team, error)
	GetStatusCounts(ctx context.Context, eventID string) (map[model.Status]int, error)
	GetLevelCounts(ctx context.Context, eventID string) (map[model.PerformanceLevel]int, error)
}

type Repositories struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewRepositories(db *sql.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		DB:  db,
		Log: logger,
	}
}

func (r *Repositories) BeginTx(ctx context.Context) (*sql.Tx, error) {
	r.Log.Debug("BeginTx called")
	return r.DB.BeginTx(ctx, &sql.TxOptions{})
}

var (
	_ Repository = (*Repositories)(nil)
	_ Repository = (*MemoryStore)(nil)
)
