package store

import (
	"context"
	"database/sql"

	"github.com/ce-fello/festival-teams-service/src/internal/model"

	"go.uber.org/zap"
)

func (r *Repositories) queryCountMap(ctx context.Context, query, eventID string, logPrefix string) (map[string]int, error) {
	r.Log.Debug(logPrefix+": start", zap.String("event_id", eventID))
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		r.Log.Error(logPrefix+": query failed", zap.Error(err))
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.Log.Info(logPrefix+": close rows failed", zap.Error(err))
		}
	}(rows)

	result := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			r.Log.Error(logPrefix+": scan failed", zap.Error(err))
			return nil, err
		}
		result[key] = count
	}
	if err := rows.Err(); err != nil {
		r.Log.Error(logPrefix+": rows error", zap.Error(err))
		return nil, err
	}

	r.Log.Debug(logPrefix+": success", zap.Int("items", len(result)))
	return result, nil
}

func (r *Repositories) GetStatusCounts(ctx context.Context, eventID string) (map[model.Status]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM teams
		WHERE event_id = $1
		GROUP BY status
	`
	raw, err := r.queryCountMap(ctx, query, eventID, "GetStatusCounts")
	if err != nil {
		return nil, err
	}
	out := make(map[model.Status]int, len(raw))
	for k, v := range raw {
		out[model.Status(k)] = v
	}
	return out, nil
}

func (r *Repositories) GetLevelCounts(ctx context.Context, eventID string) (map[model.PerformanceLevel]int, error) {
	query := `
		SELECT performance_level, COUNT(*)
		FROM teams
		WHERE event_id = $1 AND performance_level <> ''
		GROUP BY performance_level
	`
	raw, err := r.queryCountMap(ctx, query, eventID, "GetLevelCounts")
	if err != nil {
		return nil, err
	}
	out := make(map[model.PerformanceLevel]int, len(raw))
	for k, v := range raw {
		out[model.PerformanceLevel(k)] = v
	}
	return out, nil
}
