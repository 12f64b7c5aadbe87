package rules

import (
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
)

type Permissions struct {
	CanView        bool `json:"can_view"`
	CanEdit        bool `json:"can_edit"`
	CanDelete      bool `json:"can_delete"`
	CanSubmit      bool `json:"can_submit"`
	CanApprove     bool `json:"can_approve"`
	CanReject      bool `json:"can_reject"`
	CanUploadFiles bool `json:"can_upload_files"`
	CanRate        bool `json:"can_rate"`
	CanComplete    bool `json:"can_complete"`
}

// DerivePermissions decides what u may do to t at the instant now. The
// clock is an argument so the result depends on inputs only.
func DerivePermissions(t model.Team, u model.User, now time.Time) Permissions {
	p := Permissions{CanView: true}

	switch {
	case u.IsOrganizer():
		p.CanEdit = true
		p.CanUploadFiles = true
		p.CanDelete = true
		p.CanRate = true
		p.CanSubmit = t.Status == model.StatusDraft
		p.CanApprove = t.Status == model.StatusSubmitted
		p.CanReject = t.Status == model.StatusSubmitted
		p.CanComplete = t.Status == model.StatusApproved
	case u.Role == model.RoleTeamDirector && u.Owns(t):
		p.CanEdit = ownerMayEdit(t, now)
		p.CanUploadFiles = p.CanEdit
		p.CanDelete = t.Status == model.StatusDraft
		p.CanSubmit = t.Status == model.StatusDraft
	}
	return p
}

func ownerMayEdit(t model.Team, now time.Time) bool {
	switch t.Status {
	case model.StatusDraft:
		return true
	case model.StatusApproved, model.StatusRejected, model.StatusCompleted:
		return false
	}
	if t.CanEditUntil != nil && !now.Before(*t.CanEditUntil) {
		return false
	}
	return true
}
