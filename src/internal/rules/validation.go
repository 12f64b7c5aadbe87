// Package rules derives validation, completion, lifecycle and permission
// results from a team and the acting user. Every function here is pure.
package rules

import (
	"regexp"
	"strings"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
)

const MinGroupSize = 2

const (
	ErrTeamNameRequired      = "Team name is required"
	ErrDirectorNameRequired  = "Director name is required"
	ErrDirectorEmailRequired = "Director email is required"
	ErrDirectorEmailInvalid  = "Director email is not a valid email address"
	ErrCityRequired          = "City is required"
	ErrLocationRequired      = "City or country is required"
	ErrGroupSizeTooSmall     = "Group size must be at least 2"
	ErrInstagramInvalid      = "Instagram handle may only contain letters, numbers, underscores and dots"
	ErrLevelInvalid          = "Performance level must be one of beginner, intermediate, advanced, pro"

	WarnStudioNameMissing  = "Studio name is missing"
	WarnDanceStylesMissing = "No dance styles selected"
	WarnLevelMissing       = "Performance level is not set"
	WarnVideoMissing       = "Performance video URL is missing"
	WarnMusicMissing       = "Neither a music file nor a song title has been provided"
	WarnWebsiteNoScheme    = "Website URL should start with http"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	instagramPattern = regexp.MustCompile(`^@?[\w.]+$`)
)

type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateTeam splits problems into blocking errors and advisory warnings.
// A draft may be saved with warnings; submission needs zero errors.
func ValidateTeam(t model.Team) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if t.TeamName == "" {
		res.Errors = append(res.Errors, ErrTeamNameRequired)
	}
	if t.DirectorName == "" {
		res.Errors = append(res.Errors, ErrDirectorNameRequired)
	}
	switch {
	case t.DirectorEmail == "":
		res.Errors = append(res.Errors, ErrDirectorEmailRequired)
	case !IsEmail(t.DirectorEmail):
		res.Errors = append(res.Errors, ErrDirectorEmailInvalid)
	}
	if t.City == "" {
		res.Errors = append(res.Errors, ErrCityRequired)
		if t.Country == "" {
			res.Errors = append(res.Errors, ErrLocationRequired)
		}
	}
	if t.GroupSize < MinGroupSize {
		res.Errors = append(res.Errors, ErrGroupSizeTooSmall)
	}
	if t.Instagram != "" && !instagramPattern.MatchString(t.Instagram) {
		res.Errors = append(res.Errors, ErrInstagramInvalid)
	}
	if !t.PerformanceLevel.Valid() {
		res.Errors = append(res.Errors, ErrLevelInvalid)
	}

	if t.StudioName == "" {
		res.Warnings = append(res.Warnings, WarnStudioNameMissing)
	}
	if len(t.DanceStyles) == 0 {
		res.Warnings = append(res.Warnings, WarnDanceStylesMissing)
	}
	if t.PerformanceLevel == "" {
		res.Warnings = append(res.Warnings, WarnLevelMissing)
	}
	if t.PerformanceVideoURL == "" {
		res.Warnings = append(res.Warnings, WarnVideoMissing)
	}
	if t.MusicFileURL == "" && t.SongTitle == "" {
		res.Warnings = append(res.Warnings, WarnMusicMissing)
	}
	if t.WebsiteURL != "" && !strings.HasPrefix(t.WebsiteURL, "http") {
		res.Warnings = append(res.Warnings, WarnWebsiteNoScheme)
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// ValidateDraft holds the checks a team must pass to be persisted at all.
// Incomplete data is fine in a draft; malformed data is not.
func ValidateDraft(t model.Team) []string {
	errs := []string{}
	if t.TeamName == "" {
		errs = append(errs, ErrTeamNameRequired)
	}
	if t.DirectorEmail != "" && !IsEmail(t.DirectorEmail) {
		errs = append(errs, ErrDirectorEmailInvalid)
	}
	if t.Instagram != "" && !instagramPattern.MatchString(t.Instagram) {
		errs = append(errs, ErrInstagramInvalid)
	}
	if t.GroupSize < 0 {
		errs = append(errs, ErrGroupSizeTooSmall)
	}
	if !t.PerformanceLevel.Valid() {
		errs = append(errs, ErrLevelInvalid)
	}
	return errs
}
