package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/service"
	"github.com/ce-fello/festival-teams-service/src/internal/storage"
	"github.com/ce-fello/festival-teams-service/src/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

type memUploader struct{}

func (memUploader) Upload(_ context.Context, key string, _ string, r io.Reader) (*storage.UploadResult, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return &storage.UploadResult{Key: key}, nil
}

func (memUploader) Delete(context.Context, string) error { return nil }

func (memUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://media.example.com", key)
}

type apiError struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

type teamResponse struct {
	Team    model.Team `json:"team"`
	Message string     `json:"message"`
}

type HandlerTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (suite *HandlerTestSuite) SetupTest() {
	logger := zap.NewNop()
	svc := service.NewService(store.NewMemoryStore(logger), memUploader{}, logger)
	h := NewHandler(svc, logger, 5*time.Second)
	router := NewRouter(h, RouterConfig{
		JWTSecret:   testSecret,
		CORSOrigins: []string{"https://festival.example.com"},
		Catalog:     i18n.Default("en"),
	})
	suite.server = httptest.NewServer(router)
	suite.client = suite.server.Client()
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.server.Close()
}

func token(t *testing.T, id string, role model.Role, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func (suite *HandlerTestSuite) do(method, path, tok string, body any, headers ...string) *http.Response {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (suite *HandlerTestSuite) upload(path, tok, field, fileName, contentType string, content []byte) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	req, err := http.NewRequest(http.MethodPost, suite.server.URL+path, &buf)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (suite *HandlerTestSuite) TestHealth() {
	resp := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.NotEmpty(resp.Header.Get("X-Request-Id"))
}

func (suite *HandlerTestSuite) TestAuthentication() {
	t := suite.T()

	resp := suite.do(http.MethodGet, "/events/ev1/teams", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = suite.do(http.MethodGet, "/events/ev1/teams", token(t, "u1", model.RoleTeamDirector, -time.Minute), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token expired", decode[apiError](t, resp).Error.Message)

	resp = suite.do(http.MethodGet, "/events/ev1/teams", token(t, "u1", "wizard", time.Hour), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             model.RoleOrganizer,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)
	resp = suite.do(http.MethodGet, "/events/ev1/teams", other, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = suite.do(http.MethodGet, "/events/ev1/teams", token(t, "u1", model.RoleTeamDirector, time.Hour), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestFullFlow() {
	t := suite.T()
	dir := token(t, "u1", model.RoleTeamDirector, time.Hour)
	org := token(t, "org1", model.RoleOrganizer, time.Hour)

	resp := suite.do(http.MethodPost, "/events/ev1/teams", dir, map[string]any{
		"team_name":      "Fire",
		"director_name":  "Ana",
		"director_email": "ana@x.com",
		"city":           "Boston",
		"country":        "USA",
		"group_size":     6,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[teamResponse](t, resp)
	assert.Equal(t, model.StatusDraft, created.Team.Status)
	assert.Equal(t, "u1", created.Team.CreatedBy)
	assert.Equal(t, "Team created", created.Message)
	teamPath := "/teams/" + created.Team.ID

	resp = suite.do(http.MethodPost, teamPath+"/submit", dir, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	incomplete := decode[apiError](t, resp)
	assert.Equal(t, "INCOMPLETE", incomplete.Error.Code)
	assert.Contains(t, incomplete.Error.Details, "Team photo")

	resp = suite.upload(teamPath+"/music", dir, "file", "track.mp3", "audio/mpeg", []byte("ID3"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	music := decode[struct {
		Data service.UploadOutcome `json:"data"`
	}](t, resp)
	assert.Contains(t, music.Data.URL, "https://media.example.com/teams/"+created.Team.ID+"/music/")
	require.NotNil(t, music.Data.Team)
	assert.Equal(t, "track.mp3", music.Data.Team.MusicFileName)

	resp = suite.upload(teamPath+"/photo", dir, "file", "team.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = suite.do(http.MethodGet, teamPath, dir, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[service.TeamView](t, resp)
	assert.True(t, view.Completion.IsComplete)
	assert.True(t, view.Permissions.CanSubmit)

	resp = suite.do(http.MethodPost, teamPath+"/submit", dir, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	submitted := decode[teamResponse](t, resp)
	assert.Equal(t, model.StatusSubmitted, submitted.Team.Status)
	assert.NotNil(t, submitted.Team.SubmittedAt)

	resp = suite.do(http.MethodPost, teamPath+"/approve", dir, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = suite.do(http.MethodPost, teamPath+"/reject", org, map[string]string{"reason": "video missing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rejected := decode[teamResponse](t, resp)
	assert.Equal(t, model.StatusRejected, rejected.Team.Status)
	assert.Equal(t, "video missing", rejected.Team.RejectionReason)

	resp = suite.do(http.MethodPost, teamPath+"/approve", org, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decode[apiError](t, resp).Error.Code)
}

func (suite *HandlerTestSuite) TestApproveRateAndStats() {
	t := suite.T()
	dir := token(t, "u1", model.RoleTeamDirector, time.Hour)
	org := token(t, "org1", model.RoleOrganizer, time.Hour)

	resp := suite.do(http.MethodPost, "/events/ev2/teams", dir, map[string]any{
		"team_name":      "Wave",
		"director_name":  "Luis",
		"director_email": "luis@x.com",
		"city":           "Austin",
		"group_size":     4,
		"song_title":     "Tide",
		"team_photo_url": "https://media.example.com/wave.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	teamPath := "/teams/" + decode[teamResponse](t, resp).Team.ID

	require.Equal(t, http.StatusOK, suite.do(http.MethodPost, teamPath+"/submit", dir, nil).StatusCode)
	require.Equal(t, http.StatusOK, suite.do(http.MethodPost, teamPath+"/approve", org, nil).StatusCode)

	resp = suite.do(http.MethodPut, teamPath+"/rating", org, map[string]any{"rating_1": 4, "rating_2": 0, "rating_3": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = suite.do(http.MethodPut, teamPath+"/rating", org, map[string]any{"rating_1": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = suite.do(http.MethodPut, teamPath+"/scoring", org, map[string]any{"group_size_score": 6, "wow_factor_score": 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 13.0, decode[teamResponse](t, resp).Team.Scoring.TotalScore)

	resp = suite.do(http.MethodPatch, teamPath, org, map[string]any{"performance_order": 2, "backup_team": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decode[teamResponse](t, resp).Team
	require.NotNil(t, patched.PerformanceOrder)
	assert.Equal(t, 2, *patched.PerformanceOrder)
	assert.True(t, patched.BackupTeam)

	resp = suite.do(http.MethodGet, teamPath, dir, nil)
	view := decode[service.TeamView](t, resp)
	assert.Equal(t, 4.0, view.AverageRating)
	assert.False(t, view.Permissions.CanEdit)

	require.Equal(t, http.StatusOK, suite.do(http.MethodPost, teamPath+"/complete", org, nil).StatusCode)

	resp = suite.do(http.MethodGet, "/events/ev2/stats", dir, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = suite.do(http.MethodGet, "/events/ev2/stats", org, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[service.EventStats](t, resp)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.StatusCompleted])
	assert.Equal(t, 4.0, stats.AverageRating)

	resp = suite.do(http.MethodGet, "/events/ev2/teams", org, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Teams      []service.TeamView `json:"teams"`
		IsCreating bool               `json:"is_creating"`
	}](t, resp)
	assert.Len(t, list.Teams, 1)
	assert.False(t, list.IsCreating)
}

func (suite *HandlerTestSuite) TestErrorScenarios() {
	t := suite.T()
	dir := token(t, "u1", model.RoleTeamDirector, time.Hour)

	resp := suite.do(http.MethodGet, "/teams/does-not-exist", dir, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = suite.do(http.MethodPost, "/events/ev1/teams", dir, map[string]any{"team_name": "", "director_email": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	invalid := decode[apiError](t, resp)
	assert.Equal(t, "VALIDATION_FAILED", invalid.Error.Code)
	assert.Len(t, invalid.Error.Details, 2)

	req, err := http.NewRequest(http.MethodPost, suite.server.URL+"/events/ev1/teams", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+dir)
	raw, err := suite.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = raw.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)

	resp = suite.do(http.MethodPost, "/events/ev1/teams", token(t, "a1", model.RoleAttendee, time.Hour), map[string]any{"team_name": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = suite.do(http.MethodPost, "/events/ev1/teams", dir, map[string]any{"team_name": "Solo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	teamPath := "/teams/" + decode[teamResponse](t, resp).Team.ID

	resp = suite.upload(teamPath+"/photo", dir, "file", "notes.txt", "text/plain", []byte("hi"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = suite.upload(teamPath+"/photo", dir, "other", "team.jpg", "image/jpeg", []byte{0xff})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = suite.do(http.MethodDelete, teamPath, dir, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = suite.do(http.MethodDelete, teamPath, dir, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestPreviewAndLanguage() {
	t := suite.T()
	dir := token(t, "u1", model.RoleTeamDirector, time.Hour)

	resp := suite.do(http.MethodPost, "/teams/validate", dir, map[string]any{"team_name": "Fire", "group_size": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[service.Preview](t, resp)
	assert.False(t, preview.Validation.IsValid)
	assert.Empty(t, preview.DraftErrors)

	resp = suite.do(http.MethodPost, "/events/ev1/teams", dir, map[string]any{"team_name": "Fuego"}, "Accept-Language", "es-MX,es;q=0.9")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Equipo creado", decode[teamResponse](t, resp).Message)
}

func (suite *HandlerTestSuite) TestCORSPreflight() {
	req, err := http.NewRequest(http.MethodOptions, suite.server.URL+"/events/ev1/teams", nil)
	suite.Require().NoError(err)
	req.Header.Set("Origin", "https://festival.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	suite.Equal("https://festival.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
