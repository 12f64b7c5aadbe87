package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/storage"
	"github.com/ce-fello/festival-teams-service/src/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is the actions layer between callers and the team store. Every
// write goes to the store first; the shared collection only ever receives
// records the store returned.
type Service struct {
	repo     store.Repository
	uploader storage.FileUploader
	log      *zap.Logger
	notify   Notifier
	teams    *Collection
	inflight *inflight
	locks    *teamLocks
	sf       singleflight.Group
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithStoreTimeout bounds every store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the actions layer. uploader may be nil, in which case
// file uploads are reported as disabled.
func NewService(repo store.Repository, uploader storage.FileUploader, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		uploader: uploader,
		log:      logger,
		teams:    NewCollection(),
		inflight: newInflight(),
		locks:    newTeamLocks(),
		timeout:  5 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.notify = logNotifier{log: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection exposes the shared, store-reconciled team collection.
func (s *Service) Collection() *Collection {
	return s.teams
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) msg(ctx context.Context, key string) string {
	return i18n.FromContext(ctx).Translate(key, "")
}

func (s *Service) apiErr(ctx context.Context, code apiErrors.ErrorCode, key string, details ...string) apiErrors.APIError {
	return apiErrors.APIError{Code: code, Message: s.msg(ctx, key), Details: details}
}

// classify turns store and transport errors into API errors. Anything it
// does not recognise is returned wrapped and surfaces as an internal error.
func (s *Service) classify(ctx context.Context, op string, err error) error {
	var apiErr apiErrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, model.ErrNotFound):
		return s.apiErr(ctx, apiErrors.NotFound, i18n.MsgTeamNotFound)
	case errors.Is(err, model.ErrInvalidTransition):
		return s.apiErr(ctx, apiErrors.InvalidStatus, i18n.MsgStatusChangeDenied)
	case errors.Is(err, context.DeadlineExceeded):
		return apiErrors.APIError{Code: apiErrors.Timeout, Message: "data store did not respond in time"}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// fail is the single exit for a failed operation: the error is classified,
// logged and reported to the notifier. The collection is not touched.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	err = s.classify(ctx, op, err)

	var apiErr apiErrors.APIError
	if errors.As(err, &apiErr) && apiErr.Code != apiErrors.Timeout {
		s.log.Warn(op+": rejected", zap.String("code", string(apiErr.Code)), zap.String("reason", apiErr.Message))
	} else {
		s.log.Error(op+": failed", zap.Error(err))
	}
	s.notifyError(ctx, ErrorMessage(err))
	return err
}

func (s *Service) succeed(ctx context.Context, op, msgKey string, t model.Team) {
	s.notifySuccess(ctx, s.msg(ctx, msgKey))
	s.log.Info(op+": success", zap.String("team_id", t.ID), zap.String("status", string(t.Status)))
}

// action describes one guarded write against a single team.
type action struct {
	op     string
	key    string
	flag   Flag
	msg    string
	remove bool
}

// do runs fn while holding the loading flag for a.key. fn gets a context
// bounded by the store timeout and returns the server-authoritative record,
// which then replaces (or, for removals, drops) the collection entry.
func (s *Service) do(ctx context.Context, a action, fn func(ctx context.Context) (model.Team, error)) (model.Team, error) {
	s.log.Debug(a.op+": start", zap.String("key", a.key))

	release, ok := s.inflight.acquire(a.key, a.flag)
	if !ok {
		return model.Team{}, s.fail(ctx, a.op, s.apiErr(ctx, apiErrors.Busy, i18n.MsgOperationInFlight))
	}
	defer release()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	t, err := fn(sctx)
	if err != nil {
		return model.Team{}, s.fail(ctx, a.op, err)
	}
	if a.remove {
		s.teams.Remove(t.ID)
	} else {
		s.teams.Apply(t)
	}
	s.succeed(ctx, a.op, a.msg, t)
	return t, nil
}

// LoadingState reports which operations are in flight for a team.
func (s *Service) LoadingState(teamID string) LoadingState {
	return s.inflight.state(teamID)
}
