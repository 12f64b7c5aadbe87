package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/service"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
)

const (
	maxMusicSize = 20 << 20
	maxPhotoSize = 5 << 20
)

type Handler struct {
	svc     *service.Service
	log     *zap.Logger
	timeout time.Duration
}

func NewHandler(svc *service.Service, logger *zap.Logger, timeout time.Duration) *Handler {
	return &Handler{svc: svc, log: logger, timeout: timeout}
}

type RouterConfig struct {
	JWTSecret   []byte
	CORSOrigins []string
	Catalog     *i18n.Catalog
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware, LoggerMiddleware(h.log), Recoverer(h.log), CORS(cfg.CORSOrigins), Language(cfg.Catalog))
	RegisterRoutes(r, h, Authenticate(cfg.JWTSecret))
	return r
}

func RegisterRoutes(r chi.Router, h *Handler, auth func(http.Handler) http.Handler) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/teams/validate", h.previewTeam)

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/teams", h.withTimeout(h.listTeams))
			r.Post("/teams", h.withTimeout(h.createTeam))
			r.Get("/stats", h.withTimeout(h.eventStats))
		})

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/", h.withTimeout(h.getTeam))
			r.Patch("/", h.withTimeout(h.updateTeam))
			r.Delete("/", h.withTimeout(h.deleteTeam))
			r.Post("/submit", h.withTimeout(h.submitTeam))
			r.Post("/approve", h.withTimeout(h.approveTeam))
			r.Post("/reject", h.withTimeout(h.rejectTeam))
			r.Post("/complete", h.withTimeout(h.completeTeam))
			r.Post("/music", h.withTimeout(h.uploadMusic))
			r.Post("/photo", h.withTimeout(h.uploadPhoto))
			r.Put("/rating", h.withTimeout(h.updateRating))
			r.Put("/scoring", h.withTimeout(h.updateScoring))
		})
	})
}

func (h *Handler) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.timeout <= 0 {
			next(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// outcome captures the success message the service reports for a request.
type outcome struct {
	message string
}

func withOutcome(r *http.Request) (context.Context, *outcome) {
	o := &outcome{}
	cb := service.Callbacks{OnSuccess: func(msg string) { o.message = msg }}
	return service.ContextWithNotifier(r.Context(), cb), o
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	u := userFrom(r.Context())
	teams, err := h.svc.ListTeams(r.Context(), u, eventID)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event_id":    eventID,
		"teams":       teams,
		"is_creating": h.svc.IsCreating(eventID, u),
	})
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var t model.Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	ctx, o := withOutcome(r)
	team, err := h.svc.CreateTeam(ctx, userFrom(ctx), chi.URLParam(r, "eventID"), t)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"team": team, "message": o.message})
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetTeam(r.Context(), userFrom(r.Context()), chi.URLParam(r, "teamID"))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	var patch model.TeamPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	ctx, o := withOutcome(r)
	team, err := h.svc.UpdateTeam(ctx, userFrom(ctx), chi.URLParam(r, "teamID"), patch)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team, "message": o.message})
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	ctx, o := withOutcome(r)
	if err := h.svc.DeleteTeam(ctx, userFrom(ctx), teamID); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team_id": teamID, "message": o.message})
}

type transitionFunc func(ctx context.Context, u model.User, teamID string) (model.Team, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	ctx, o := withOutcome(r)
	team, err := fn(ctx, userFrom(ctx), chi.URLParam(r, "teamID"))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team, "message": o.message})
}

func (h *Handler) submitTeam(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.SubmitTeam)
}

func (h *Handler) approveTeam(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.ApproveTeam)
}

func (h *Handler) completeTeam(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkAsCompleted)
}

func (h *Handler) rejectTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// the body is optional: rejecting without a reason is allowed
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	h.transition(w, r, func(ctx context.Context, u model.User, teamID string) (model.Team, error) {
		return h.svc.RejectTeam(ctx, u, teamID, req.Reason)
	})
}

type uploadFunc func(ctx context.Context, u model.User, teamID string, f service.Upload) (service.UploadOutcome, error)

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, limit int64, fn uploadFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, apiErrors.BadRequest, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "multipart form with a file field required")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "file field required")
		return
	}
	defer func() { _ = file.Close() }()
	if header.Size > limit {
		writeError(w, http.StatusRequestEntityTooLarge, apiErrors.BadRequest, "file too large")
		return
	}

	ctx, o := withOutcome(r)
	res, err := fn(ctx, userFrom(ctx), chi.URLParam(r, "teamID"), service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": res, "message": o.message})
}

func (h *Handler) uploadMusic(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, maxMusicSize, h.svc.UploadMusicFile)
}

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, maxPhotoSize, h.svc.UploadTeamPhoto)
}

func (h *Handler) updateRating(w http.ResponseWriter, r *http.Request) {
	var rating model.TechRehearsalRating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	h.transition(w, r, func(ctx context.Context, u model.User, teamID string) (model.Team, error) {
		return h.svc.UpdateTechRehearsalRating(ctx, u, teamID, rating)
	})
}

func (h *Handler) updateScoring(w http.ResponseWriter, r *http.Request) {
	var scoring model.Scoring
	if err := json.NewDecoder(r.Body).Decode(&scoring); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	h.transition(w, r, func(ctx context.Context, u model.User, teamID string) (model.Team, error) {
		return h.svc.UpdateScoring(ctx, u, teamID, scoring)
	})
}

func (h *Handler) eventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.EventStats(r.Context(), userFrom(r.Context()), chi.URLParam(r, "eventID"))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) previewTeam(w http.ResponseWriter, r *http.Request) {
	var t model.Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.BadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, service.PreviewTeam(t))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, errCode apiErrors.ErrorCode, message string, details ...string) {
	body := map[string]any{"code": errCode, "message": message}
	if len(details) > 0 {
		body["details"] = details
	}
	writeJSON(w, code, map[string]any{"error": body})
}

var statusByCode = map[apiErrors.ErrorCode]int{
	apiErrors.BadRequest:       http.StatusBadRequest,
	apiErrors.Unauthorized:     http.StatusUnauthorized,
	apiErrors.Forbidden:        http.StatusForbidden,
	apiErrors.NotFound:         http.StatusNotFound,
	apiErrors.ValidationFailed: http.StatusUnprocessableEntity,
	apiErrors.Incomplete:       http.StatusUnprocessableEntity,
	apiErrors.InvalidStatus:    http.StatusConflict,
	apiErrors.Busy:             http.StatusConflict,
	apiErrors.UnsupportedMedia: http.StatusUnsupportedMediaType,
	apiErrors.UploadsDisabled:  http.StatusServiceUnavailable,
	apiErrors.Timeout:          http.StatusGatewayTimeout,
}

func handleSvcError(w http.ResponseWriter, err error) {
	var e apiErrors.APIError
	if errors.As(err, &e) {
		if status, ok := statusByCode[e.Code]; ok {
			writeError(w, status, e.Code, e.Message, e.Details...)
			return
		}
		writeError(w, http.StatusInternalServerError, apiErrors.InternalError, e.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, apiErrors.InternalError, err.Error())
}
