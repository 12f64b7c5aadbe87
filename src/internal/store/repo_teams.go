package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"go.uber.org/zap"
)

const teamColumns = `id, event_id, team_name, director_name, director_email, director_phone,
	studio_name, city, state, country, group_size, dance_styles, performance_level,
	performance_video_url, music_file_url, music_file_name, song_title, song_artist,
	team_photo_url, instagram, website_url, status, organizer_notes, rejection_reason,
	performance_order, scoring, tech_rehearsal_rating, created_by, created_at, updated_at,
	submitted_at, approved_at, rejected_at, can_edit_until, backup_team`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (model.Team, error) {
	var (
		t        model.Team
		order    sql.NullInt64
		scoring  []byte
		rating   []byte
		level    string
		status   string
		styles   []string
		subAt    sql.NullTime
		apprAt   sql.NullTime
		rejAt    sql.NullTime
		editTill sql.NullTime
	)
	err := row.Scan(&t.ID, &t.EventID, &t.TeamName, &t.DirectorName, &t.DirectorEmail, &t.DirectorPhone,
		&t.StudioName, &t.City, &t.State, &t.Country, &t.GroupSize, pq.Array(&styles), &level,
		&t.PerformanceVideoURL, &t.MusicFileURL, &t.MusicFileName, &t.SongTitle, &t.SongArtist,
		&t.TeamPhotoURL, &t.Instagram, &t.WebsiteURL, &status, &t.OrganizerNotes, &t.RejectionReason,
		&order, &scoring, &rating, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&subAt, &apprAt, &rejAt, &editTill, &t.BackupTeam)
	if err != nil {
		return model.Team{}, err
	}

	t.DanceStyles = styles
	t.PerformanceLevel = model.PerformanceLevel(level)
	t.Status = model.Status(status)
	if order.Valid {
		o := int(order.Int64)
		t.PerformanceOrder = &o
	}
	if len(scoring) > 0 {
		var s model.Scoring
		if err := json.Unmarshal(scoring, &s); err != nil {
			return model.Team{}, fmt.Errorf("decode scoring: %w", err)
		}
		t.Scoring = &s
	}
	if len(rating) > 0 {
		var tr model.TechRehearsalRating
		if err := json.Unmarshal(rating, &tr); err != nil {
			return model.Team{}, fmt.Errorf("decode tech rehearsal rating: %w", err)
		}
		t.TechRehearsalRating = &tr
	}
	t.SubmittedAt = nullTimePtr(subAt)
	t.ApprovedAt = nullTimePtr(apprAt)
	t.RejectedAt = nullTimePtr(rejAt)
	t.CanEditUntil = nullTimePtr(editTill)

	return model.Normalize(t), nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (r *Repositories) GetTeams(ctx context.Context, eventID string) ([]model.Team, error) {
	r.Log.Debug("GetTeams: start", zap.String("event_id", eventID))
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE event_id=$1 ORDER BY performance_order NULLS LAST, created_at`, eventID)
	if err != nil {
		r.Log.Error("GetTeams: query failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			r.Log.Error("GetTeams: close rows failed", zap.Error(err))
		}
	}(rows)

	out := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			r.Log.Error("GetTeams: scan failed", zap.String("event_id", eventID), zap.Error(err))
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		r.Log.Error("GetTeams: rows error", zap.Error(err))
		return nil, err
	}

	r.Log.Debug("GetTeams: success", zap.String("event_id", eventID), zap.Int("count", len(out)))
	return out, nil
}

func (r *Repositories) GetTeam(ctx context.Context, teamID string) (model.Team, error) {
	r.Log.Debug("GetTeam: start", zap.String("team_id", teamID))
	t, err := scanTeam(r.DB.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id=$1`, teamID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("GetTeam: not found", zap.String("team_id", teamID))
			return model.Team{}, model.ErrNotFound
		}
		r.Log.Error("GetTeam: query failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}
	r.Log.Debug("GetTeam: success", zap.String("team_id", teamID))
	return t, nil
}

func (r *Repositories) CreateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	t.ID = uuid.New().String()
	r.Log.Debug("CreateTeam: start", zap.String("team_id", t.ID), zap.String("event_id", t.EventID))

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO teams(id, event_id, team_name, director_name, director_email, director_phone,
			studio_name, city, state, country, group_size, dance_styles, performance_level,
			performance_video_url, music_file_url, music_file_name, song_title, song_artist,
			team_photo_url, instagram, website_url, status, created_by, can_edit_until, backup_team,
			organizer_notes, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,'draft',$22,$23,$24,$25,now(),now())
		RETURNING `+teamColumns,
		t.ID, t.EventID, t.TeamName, t.DirectorName, t.DirectorEmail, t.DirectorPhone,
		t.StudioName, t.City, t.State, t.Country, t.GroupSize, pq.Array(t.DanceStyles), string(t.PerformanceLevel),
		t.PerformanceVideoURL, t.MusicFileURL, t.MusicFileName, t.SongTitle, t.SongArtist,
		t.TeamPhotoURL, t.Instagram, t.WebsiteURL, t.CreatedBy, t.CanEditUntil, t.BackupTeam,
		t.OrganizerNotes)

	created, err := scanTeam(row)
	if err != nil {
		r.Log.Error("CreateTeam: insert failed", zap.String("team_id", t.ID), zap.Error(err))
		return model.Team{}, err
	}
	r.Log.Info("CreateTeam: success", zap.String("team_id", created.ID), zap.String("event_id", created.EventID))
	return created, nil
}

// UpdateTeam writes the editable columns. Status, ownership and audit
// timestamps are only changed through transitions.
func (r *Repositories) UpdateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	r.Log.Debug("UpdateTeam: start", zap.String("team_id", t.ID))
	row := r.DB.QueryRowContext(ctx, `
		UPDATE teams SET team_name=$2, director_name=$3, director_email=$4, director_phone=$5,
			studio_name=$6, city=$7, state=$8, country=$9, group_size=$10, dance_styles=$11,
			performance_level=$12, performance_video_url=$13, music_file_url=$14, music_file_name=$15,
			song_title=$16, song_artist=$17, team_photo_url=$18, instagram=$19, website_url=$20,
			organizer_notes=$21, performance_order=$22, can_edit_until=$23, backup_team=$24,
			updated_at=now()
		WHERE id=$1
		RETURNING `+teamColumns,
		t.ID, t.TeamName, t.DirectorName, t.DirectorEmail, t.DirectorPhone,
		t.StudioName, t.City, t.State, t.Country, t.GroupSize, pq.Array(t.DanceStyles),
		string(t.PerformanceLevel), t.PerformanceVideoURL, t.MusicFileURL, t.MusicFileName,
		t.SongTitle, t.SongArtist, t.TeamPhotoURL, t.Instagram, t.WebsiteURL,
		t.OrganizerNotes, nullInt(t.PerformanceOrder), t.CanEditUntil, t.BackupTeam)

	updated, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("UpdateTeam: not found", zap.String("team_id", t.ID))
			return model.Team{}, model.ErrNotFound
		}
		r.Log.Error("UpdateTeam: update failed", zap.String("team_id", t.ID), zap.Error(err))
		return model.Team{}, err
	}
	r.Log.Info("UpdateTeam: success", zap.String("team_id", t.ID))
	return updated, nil
}

// AttachMedia writes only the file columns set in p.
func (r *Repositories) AttachMedia(ctx context.Context, teamID string, p model.MediaPatch) (model.Team, error) {
	r.Log.Debug("AttachMedia: start", zap.String("team_id", teamID))
	row := r.DB.QueryRowContext(ctx, `
		UPDATE teams SET music_file_url=COALESCE($2::text, music_file_url),
			music_file_name=COALESCE($3::text, music_file_name),
			team_photo_url=COALESCE($4::text, team_photo_url),
			updated_at=now()
		WHERE id=$1
		RETURNING `+teamColumns,
		teamID, p.MusicFileURL, p.MusicFileName, p.TeamPhotoURL)

	updated, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("AttachMedia: not found", zap.String("team_id", teamID))
			return model.Team{}, model.ErrNotFound
		}
		r.Log.Error("AttachMedia: update failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}
	r.Log.Info("AttachMedia: success", zap.String("team_id", teamID))
	return updated, nil
}

func (r *Repositories) DeleteTeam(ctx context.Context, teamID string) error {
	r.Log.Debug("DeleteTeam: start", zap.String("team_id", teamID))
	res, err := r.DB.ExecContext(ctx, `DELETE FROM teams WHERE id=$1`, teamID)
	if err != nil {
		r.Log.Error("DeleteTeam: delete failed", zap.String("team_id", teamID), zap.Error(err))
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		r.Log.Debug("DeleteTeam: not found", zap.String("team_id", teamID))
		return model.ErrNotFound
	}
	r.Log.Info("DeleteTeam: success", zap.String("team_id", teamID))
	return nil
}

func (r *Repositories) UpdateTechRehearsalRating(ctx context.Context, teamID string, rating model.TechRehearsalRating) (model.Team, error) {
	return r.updateJSONColumn(ctx, "tech_rehearsal_rating", teamID, rating, "UpdateTechRehearsalRating")
}

func (r *Repositories) UpdateScoring(ctx context.Context, teamID string, s model.Scoring) (model.Team, error) {
	return r.updateJSONColumn(ctx, "scoring", teamID, s, "UpdateScoring")
}

func (r *Repositories) updateJSONColumn(ctx context.Context, column, teamID string, v any, logPrefix string) (model.Team, error) {
	r.Log.Debug(logPrefix+": start", zap.String("team_id", teamID))
	payload, err := json.Marshal(v)
	if err != nil {
		return model.Team{}, fmt.Errorf("encode %s: %w", column, err)
	}

	row := r.DB.QueryRowContext(ctx,
		`UPDATE teams SET `+column+`=$2, updated_at=now() WHERE id=$1 RETURNING `+teamColumns, teamID, payload)
	updated, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug(logPrefix+": not found", zap.String("team_id", teamID))
			return model.Team{}, model.ErrNotFound
		}
		r.Log.Error(logPrefix+": update failed", zap.String("team_id", teamID), zap.Error(err))
		return model.Team{}, err
	}
	r.Log.Info(logPrefix+": success", zap.String("team_id", teamID))
	return updated, nil
}
