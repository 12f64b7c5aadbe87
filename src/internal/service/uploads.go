package service

import (
	"context"
	"io"
	"mime"
	"strings"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/model"
	"github.com/ce-fello/festival-teams-service/src/internal/rules"
	"github.com/ce-fello/festival-teams-service/src/internal/storage"

	"go.uber.org/zap"
)

// Upload is a file handed in by the caller.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// UploadOutcome reports a stored file. When the file was stored but the team
// could not be updated, Team is nil and Warning explains why.
type UploadOutcome struct {
	URL     string      `json:"url"`
	Warning string      `json:"warning,omitempty"`
	Team    *model.Team `json:"team,omitempty"`
}

var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func musicTypeAllowed(ct string) bool { return strings.HasPrefix(ct, "audio/") }

func photoTypeAllowed(ct string) bool { return photoTypes[ct] }

type uploadTarget struct {
	op      string
	kind    storage.MediaKind
	flag    Flag
	msg     string
	allowed func(contentType string) bool
	attach  func(url, fileName string) model.MediaPatch
}

var (
	musicUpload = uploadTarget{
		op:      "UploadMusicFile",
		kind:    storage.MediaMusic,
		flag:    FlagUploadingMusic,
		msg:     i18n.MsgMusicUploaded,
		allowed: musicTypeAllowed,
		attach: func(url, fileName string) model.MediaPatch {
			return model.MediaPatch{MusicFileURL: &url, MusicFileName: &fileName}
		},
	}
	photoUpload = uploadTarget{
		op:      "UploadTeamPhoto",
		kind:    storage.MediaPhoto,
		flag:    FlagUploadingPhoto,
		msg:     i18n.MsgPhotoUploaded,
		allowed: photoTypeAllowed,
		attach: func(url, _ string) model.MediaPatch {
			return model.MediaPatch{TeamPhotoURL: &url}
		},
	}
)

func (s *Service) UploadMusicFile(ctx context.Context, u model.User, teamID string, f Upload) (UploadOutcome, error) {
	return s.upload(ctx, musicUpload, u, teamID, f)
}

func (s *Service) UploadTeamPhoto(ctx context.Context, u model.User, teamID string, f Upload) (UploadOutcome, error) {
	return s.upload(ctx, photoUpload, u, teamID, f)
}

func (s *Service) upload(ctx context.Context, target uploadTarget, u model.User, teamID string, f Upload) (UploadOutcome, error) {
	s.log.Debug(target.op+": start", zap.String("team_id", teamID), zap.String("file_name", f.FileName))

	if s.uploader == nil {
		return UploadOutcome{}, s.fail(ctx, target.op, apiErrors.APIError{Code: apiErrors.UploadsDisabled, Message: "file storage is not configured"})
	}

	release, ok := s.inflight.acquire(teamID, target.flag)
	if !ok {
		return UploadOutcome{}, s.fail(ctx, target.op, s.apiErr(ctx, apiErrors.Busy, i18n.MsgOperationInFlight))
	}
	defer release()

	cur, err := s.readTeam(ctx, teamID)
	if err != nil {
		return UploadOutcome{}, s.fail(ctx, target.op, err)
	}
	if !rules.DerivePermissions(cur, u, s.now()).CanUploadFiles {
		return UploadOutcome{}, s.fail(ctx, target.op, s.apiErr(ctx, apiErrors.Forbidden, i18n.MsgPermissionDenied))
	}

	contentType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || !target.allowed(contentType) {
		return UploadOutcome{}, s.fail(ctx, target.op, s.apiErr(ctx, apiErrors.UnsupportedMedia, i18n.MsgUnsupportedFormat, f.ContentType))
	}

	key := storage.ObjectKey(teamID, target.kind, f.FileName)
	res, err := s.uploader.Upload(ctx, key, contentType, f.Body)
	if err != nil {
		return UploadOutcome{}, s.fail(ctx, target.op, err)
	}
	url := res.Location
	if url == "" {
		url = s.uploader.GetPublicURL(key)
	}

	before, updated, err := s.attachMedia(ctx, teamID, target.attach(url, f.FileName))
	if err != nil {
		warning := s.msg(ctx, i18n.MsgUploadNotAttached)
		s.log.Warn(target.op+": stored file not attached", zap.String("team_id", teamID), zap.String("key", key), zap.Error(err))
		s.notifyError(ctx, warning)
		return UploadOutcome{URL: url, Warning: warning}, nil
	}

	s.teams.Apply(updated)
	s.dropReplacedMedia(ctx, before, updated)
	s.succeed(ctx, target.op, target.msg, updated)
	return UploadOutcome{URL: url, Team: &updated}, nil
}

// attachMedia writes the file fields of one team and returns the record as it
// was right before and right after the write.
func (s *Service) attachMedia(ctx context.Context, teamID string, p model.MediaPatch) (before, after model.Team, err error) {
	unlock := s.locks.lock(teamID)
	defer unlock()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if before, err = s.repo.GetTeam(sctx, teamID); err != nil {
		return model.Team{}, model.Team{}, err
	}
	after, err = s.repo.AttachMedia(sctx, teamID, p)
	return before, after, err
}

// dropReplacedMedia deletes stored objects that before referenced and after
// no longer does. Links that are not ours are left alone and failures are
// only logged.
func (s *Service) dropReplacedMedia(ctx context.Context, before, after model.Team) {
	if s.uploader == nil {
		return
	}
	replaced := []struct{ old, cur string }{
		{before.MusicFileURL, after.MusicFileURL},
		{before.TeamPhotoURL, after.TeamPhotoURL},
	}
	for _, r := range replaced {
		if r.old == "" || r.old == r.cur {
			continue
		}
		key, ok := storage.KeyFromURL(before.ID, r.old)
		if !ok {
			continue
		}
		dctx, cancel := s.storeCtx(context.WithoutCancel(ctx))
		if err := s.uploader.Delete(dctx, key); err != nil {
			s.log.Warn("dropReplacedMedia: object not deleted", zap.String("team_id", before.ID), zap.String("key", key), zap.Error(err))
		} else {
			s.log.Debug("dropReplacedMedia: object deleted", zap.String("team_id", before.ID), zap.String("key", key))
		}
		cancel()
	}
}

func (s *Service) readTeam(ctx context.Context, teamID string) (model.Team, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.GetTeam(sctx, teamID)
}
