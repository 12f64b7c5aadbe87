package rules

import "github.com/ce-fello/festival-teams-service/src/internal/model"

const (
	CheckTeamName         = "Team name"
	CheckDirectorContact  = "Director name and email"
	CheckMusic            = "Music file or song title"
	CheckTeamPhoto        = "Team photo"
	CheckLocation         = "City or country"
	CheckStudioName       = "Studio name"
	CheckDanceStyles      = "Dance styles"
	CheckPerformanceLevel = "Performance level"
	CheckPerformanceVideo = "Performance video"
)

type CompletionCheck struct {
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Required  bool   `json:"required"`
}

// Completion keeps the coarse completed/total count and the required gate
// side by side; they answer different questions.
type Completion struct {
	Completed  int               `json:"completed"`
	Total      int               `json:"total"`
	IsComplete bool              `json:"is_complete"`
	Missing    []string          `json:"missing"`
	Checks     []CompletionCheck `json:"checks"`
}

func (c Completion) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return c.Completed * 100 / c.Total
}

func CheckCompletion(t model.Team) Completion {
	checks := []CompletionCheck{
		{Label: CheckTeamName, Completed: t.TeamName != "", Required: true},
		{Label: CheckDirectorContact, Completed: t.DirectorName != "" && t.DirectorEmail != "", Required: true},
		{Label: CheckMusic, Completed: t.MusicFileURL != "" || t.SongTitle != "", Required: true},
		{Label: CheckTeamPhoto, Completed: t.TeamPhotoURL != "", Required: true},
		{Label: CheckLocation, Completed: t.City != "" || t.Country != ""},
		{Label: CheckStudioName, Completed: t.StudioName != ""},
		{Label: CheckDanceStyles, Completed: len(t.DanceStyles) > 0},
		{Label: CheckPerformanceLevel, Completed: t.PerformanceLevel != ""},
		{Label: CheckPerformanceVideo, Completed: t.PerformanceVideoURL != ""},
	}

	c := Completion{Total: len(checks), IsComplete: true, Missing: []string{}, Checks: checks}
	for _, check := range checks {
		if check.Completed {
			c.Completed++
			continue
		}
		c.Missing = append(c.Missing, check.Label)
		if check.Required {
			c.IsComplete = false
		}
	}
	return c
}
