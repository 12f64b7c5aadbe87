package store

import (
	"context"
	"testing"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMemoryStore() *MemoryStore {
	return NewMemoryStore(zap.NewNop())
}

func TestMemoryStore_CreateAssignsServerFields(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	created, err := s.CreateTeam(ctx, model.Team{
		EventID:   "e1",
		TeamName:  " Fire ",
		Status:    model.StatusApproved,
		CreatedBy: "u1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.Equal(t, "Fire", created.TeamName)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NotNil(t, created.DanceStyles)
}

func TestMemoryStore_TransitionGuards(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	created, err := s.CreateTeam(ctx, model.Team{EventID: "e1", CreatedBy: "u1"})
	require.NoError(t, err)

	_, err = s.ApproveTeam(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	submitted, err := s.SubmitTeam(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	_, err = s.SubmitTeam(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	rejected, err := s.RejectTeam(ctx, created.ID, "video missing")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, "video missing", rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)

	_, err = s.MarkAsCompleted(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestMemoryStore_UpdateKeepsOwnershipAndStatus(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	created, err := s.CreateTeam(ctx, model.Team{EventID: "e1", CreatedBy: "u1"})
	require.NoError(t, err)

	edit := created
	edit.TeamName = "Ice"
	edit.CreatedBy = "intruder"
	edit.Status = model.StatusCompleted

	updated, err := s.UpdateTeam(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "Ice", updated.TeamName)
	assert.Equal(t, "u1", updated.CreatedBy)
	assert.Equal(t, model.StatusDraft, updated.Status)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	created, err := s.CreateTeam(ctx, model.Team{EventID: "e1", CreatedBy: "u1", DanceStyles: []string{"hip-hop"}})
	require.NoError(t, err)

	created.DanceStyles[0] = "ballet"

	got, err := s.GetTeam(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hip-hop"}, got.DanceStyles)
}

func TestMemoryStore_DeleteAndCounts(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	a, _ := s.CreateTeam(ctx, model.Team{EventID: "e1", CreatedBy: "u1", PerformanceLevel: model.LevelPro})
	_, _ = s.CreateTeam(ctx, model.Team{EventID: "e1", CreatedBy: "u2"})
	_, _ = s.CreateTeam(ctx, model.Team{EventID: "e2", CreatedBy: "u3"})
	_, err := s.SubmitTeam(ctx, a.ID)
	require.NoError(t, err)

	counts, err := s.GetStatusCounts(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, map[model.Status]int{model.StatusDraft: 1, model.StatusSubmitted: 1}, counts)

	levels, err := s.GetLevelCounts(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, map[model.PerformanceLevel]int{model.LevelPro: 1}, levels)

	require.NoError(t, s.DeleteTeam(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteTeam(ctx, a.ID), model.ErrNotFound)

	teams, err := s.GetTeams(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestMemoryStore_AttachMediaWritesOnlyFileFields(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	created, err := s.CreateTeam(ctx, model.Team{EventID: "e1", TeamName: "Fire", CreatedBy: "u1", TeamPhotoURL: "https://cdn/p.png"})
	require.NoError(t, err)

	url, name := "https://cdn/m.mp3", "m.mp3"
	updated, err := s.AttachMedia(ctx, created.ID, model.MediaPatch{MusicFileURL: &url, MusicFileName: &name})

	require.NoError(t, err)
	assert.Equal(t, url, updated.MusicFileURL)
	assert.Equal(t, name, updated.MusicFileName)
	assert.Equal(t, "https://cdn/p.png", updated.TeamPhotoURL)
	assert.Equal(t, "Fire", updated.TeamName)

	_, err = s.AttachMedia(ctx, "missing", model.MediaPatch{TeamPhotoURL: &url})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
