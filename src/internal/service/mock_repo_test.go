package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockRepositories struct {
	mock.Mock
}

func (m *MockRepositories) GetTeams(ctx context.Context, eventID string) ([]model.Team, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]model.Team), args.Error(1)
}

func (m *MockRepositories) GetTeam(ctx context.Context, teamID string) (model.Team, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) CreateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) UpdateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) AttachMedia(ctx context.Context, teamID string, p model.MediaPatch) (model.Team, error) {
	args := m.Called(ctx, teamID, p)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) DeleteTeam(ctx context.Context, teamID string) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

func (m *MockRepositories) SubmitTeam(ctx context.Context, teamID string) (model.Team, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) ApproveTeam(ctx context.Context, teamID string) (model.Team, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) RejectTeam(ctx context.Context, teamID, reason string) (model.Team, error) {
	args := m.Called(ctx, teamID, reason)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) MarkAsCompleted(ctx context.Context, teamID string) (model.Team, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) UpdateTechRehearsalRating(ctx context.Context, teamID string, r model.TechRehearsalRating) (model.Team, error) {
	args := m.Called(ctx, teamID, r)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) UpdateScoring(ctx context.Context, teamID string, s model.Scoring) (model.Team, error) {
	args := m.Called(ctx, teamID, s)
	return args.Get(0).(model.Team), args.Error(1)
}

func (m *MockRepositories) GetStatusCounts(ctx context.Context, eventID string) (map[model.Status]int, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(map[model.Status]int), args.Error(1)
}

func (m *MockRepositories) GetLevelCounts(ctx context.Context, eventID string) (map[model.PerformanceLevel]int, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(map[model.PerformanceLevel]int), args.Error(1)
}

// fakeUploader keeps uploaded objects in memory.
type fakeUploader struct {
	mu        sync.Mutex
	objects   map[string][]byte
	err       error
	deleteErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ string, r io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeUploader) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// gatedUploader parks every upload until its kind is released, so tests can
// line up concurrent uploads that have all read the team already.
type gatedUploader struct {
	*fakeUploader
	started chan string
	release map[storage.MediaKind]chan struct{}
}

func newGatedUploader() *gatedUploader {
	return &gatedUploader{
		fakeUploader: newFakeUploader(),
		started:      make(chan string, 4),
		release: map[storage.MediaKind]chan struct{}{
			storage.MediaMusic: make(chan struct{}),
			storage.MediaPhoto: make(chan struct{}),
		},
	}
}

func (g *gatedUploader) Upload(ctx context.Context, key string, contentType string, r io.Reader) (*storage.UploadResult, error) {
	kind := storage.MediaMusic
	if strings.Contains(key, "/"+string(storage.MediaPhoto)+"/") {
		kind = storage.MediaPhoto
	}
	g.started <- key
	<-g.release[kind]
	return g.fakeUploader.Upload(ctx, key, contentType, r)
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}
