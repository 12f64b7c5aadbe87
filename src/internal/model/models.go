package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

type PerformanceLevel string

const (
	LevelBeginner     PerformanceLevel = "beginner"
	LevelIntermediate PerformanceLevel = "intermediate"
	LevelAdvanced     PerformanceLevel = "advanced"
	LevelPro          PerformanceLevel = "pro"
)

func (l PerformanceLevel) Valid() bool {
	switch l {
	case "", LevelBeginner, LevelIntermediate, LevelAdvanced, LevelPro:
		return true
	}
	return false
}

type Scoring struct {
	GroupSizeScore    float64 `json:"group_size_score"`
	WowFactorScore    float64 `json:"wow_factor_score"`
	TechnicalScore    float64 `json:"technical_score"`
	StyleVarietyBonus float64 `json:"style_variety_bonus"`
	TotalScore        float64 `json:"total_score"`
}

// TechRehearsalRating holds three star ratings; 0 means the rating is unset.
type TechRehearsalRating struct {
	Rating1   int        `json:"rating_1"`
	Rating2   int        `json:"rating_2"`
	Rating3   int        `json:"rating_3"`
	Comment   string     `json:"comment"`
	RatedBy   string     `json:"rated_by,omitempty"`
	RatedAt   *time.Time `json:"rated_at,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Team struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`

	TeamName      string `json:"team_name"`
	DirectorName  string `json:"director_name"`
	DirectorEmail string `json:"director_email"`
	DirectorPhone string `json:"director_phone,omitempty"`
	StudioName    string `json:"studio_name,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country"`

	GroupSize           int              `json:"group_size"`
	DanceStyles         []string         `json:"dance_styles"`
	PerformanceLevel    PerformanceLevel `json:"performance_level,omitempty"`
	PerformanceVideoURL string           `json:"performance_video_url,omitempty"`

	MusicFileURL  string `json:"music_file_url,omitempty"`
	MusicFileName string `json:"music_file_name,omitempty"`
	SongTitle     string `json:"song_title,omitempty"`
	SongArtist    string `json:"song_artist,omitempty"`
	TeamPhotoURL  string `json:"team_photo_url,omitempty"`

	Instagram  string `json:"instagram,omitempty"`
	WebsiteURL string `json:"website_url,omitempty"`

	Status              Status               `json:"status"`
	OrganizerNotes      string               `json:"organizer_notes,omitempty"`
	RejectionReason     string               `json:"rejection_reason,omitempty"`
	PerformanceOrder    *int                 `json:"performance_order,omitempty"`
	Scoring             *Scoring             `json:"scoring,omitempty"`
	TechRehearsalRating *TechRehearsalRating `json:"tech_rehearsal_rating,omitempty"`

	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	CanEditUntil *time.Time `json:"can_edit_until,omitempty"`

	BackupTeam bool `json:"backup_team"`
}

// Normalize fills defaults for a team coming from outside (store rows,
// request bodies) so rule code can rely on total fields.
func Normalize(t Team) Team {
	t.TeamName = strings.TrimSpace(t.TeamName)
	t.DirectorName = strings.TrimSpace(t.DirectorName)
	t.DirectorEmail = strings.TrimSpace(t.DirectorEmail)
	t.DirectorPhone = strings.TrimSpace(t.DirectorPhone)
	t.StudioName = strings.TrimSpace(t.StudioName)
	t.City = strings.TrimSpace(t.City)
	t.State = strings.TrimSpace(t.State)
	t.Country = strings.TrimSpace(t.Country)
	t.PerformanceVideoURL = strings.TrimSpace(t.PerformanceVideoURL)
	t.MusicFileURL = strings.TrimSpace(t.MusicFileURL)
	t.SongTitle = strings.TrimSpace(t.SongTitle)
	t.SongArtist = strings.TrimSpace(t.SongArtist)
	t.TeamPhotoURL = strings.TrimSpace(t.TeamPhotoURL)
	t.Instagram = strings.TrimSpace(t.Instagram)
	t.WebsiteURL = strings.TrimSpace(t.WebsiteURL)

	styles := make([]string, 0, len(t.DanceStyles))
	seen := make(map[string]bool, len(t.DanceStyles))
	for _, s := range t.DanceStyles {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		styles = append(styles, s)
	}
	t.DanceStyles = styles

	if t.Status == "" {
		t.Status = StatusDraft
	}
	return t
}

// TeamPatch is a partial update. Nil fields are left untouched.
type TeamPatch struct {
	TeamName            *string           `json:"team_name,omitempty"`
	DirectorName        *string           `json:"director_name,omitempty"`
	DirectorEmail       *string           `json:"director_email,omitempty"`
	DirectorPhone       *string           `json:"director_phone,omitempty"`
	StudioName          *string           `json:"studio_name,omitempty"`
	City                *string           `json:"city,omitempty"`
	State               *string           `json:"state,omitempty"`
	Country             *string           `json:"country,omitempty"`
	GroupSize           *int              `json:"group_size,omitempty"`
	DanceStyles         *[]string         `json:"dance_styles,omitempty"`
	PerformanceLevel    *PerformanceLevel `json:"performance_level,omitempty"`
	PerformanceVideoURL *string           `json:"performance_video_url,omitempty"`
	MusicFileURL        *string           `json:"music_file_url,omitempty"`
	MusicFileName       *string           `json:"music_file_name,omitempty"`
	SongTitle           *string           `json:"song_title,omitempty"`
	SongArtist          *string           `json:"song_artist,omitempty"`
	TeamPhotoURL        *string           `json:"team_photo_url,omitempty"`
	Instagram           *string           `json:"instagram,omitempty"`
	WebsiteURL          *string           `json:"website_url,omitempty"`

	OrganizerNotes   *string    `json:"organizer_notes,omitempty"`
	PerformanceOrder *int       `json:"performance_order,omitempty"`
	BackupTeam       *bool      `json:"backup_team,omitempty"`
	CanEditUntil     *time.Time `json:"can_edit_until,omitempty"`
}

// OrganizerOnly reports whether the patch touches fields reserved for
// organizer-class users.
func (p TeamPatch) OrganizerOnly() bool {
	return p.OrganizerNotes != nil || p.PerformanceOrder != nil || p.BackupTeam != nil || p.CanEditUntil != nil
}

func (p TeamPatch) Apply(t Team) Team {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&t.TeamName, p.TeamName)
	setString(&t.DirectorName, p.DirectorName)
	setString(&t.DirectorEmail, p.DirectorEmail)
	setString(&t.DirectorPhone, p.DirectorPhone)
	setString(&t.StudioName, p.StudioName)
	setString(&t.City, p.City)
	setString(&t.State, p.State)
	setString(&t.Country, p.Country)
	setString(&t.PerformanceVideoURL, p.PerformanceVideoURL)
	setString(&t.MusicFileURL, p.MusicFileURL)
	setString(&t.MusicFileName, p.MusicFileName)
	setString(&t.SongTitle, p.SongTitle)
	setString(&t.SongArtist, p.SongArtist)
	setString(&t.TeamPhotoURL, p.TeamPhotoURL)
	setString(&t.Instagram, p.Instagram)
	setString(&t.WebsiteURL, p.WebsiteURL)
	setString(&t.OrganizerNotes, p.OrganizerNotes)

	if p.GroupSize != nil {
		t.GroupSize = *p.GroupSize
	}
	if p.DanceStyles != nil {
		t.DanceStyles = append([]string(nil), (*p.DanceStyles)...)
	}
	if p.PerformanceLevel != nil {
		t.PerformanceLevel = *p.PerformanceLevel
	}
	if p.PerformanceOrder != nil {
		order := *p.PerformanceOrder
		t.PerformanceOrder = &order
	}
	if p.BackupTeam != nil {
		t.BackupTeam = *p.BackupTeam
	}
	if p.CanEditUntil != nil {
		until := *p.CanEditUntil
		t.CanEditUntil = &until
	}
	return Normalize(t)
}

// MediaPatch sets the file fields written by an upload. Nil fields are left
// untouched.
type MediaPatch struct {
	MusicFileURL  *string
	MusicFileName *string
	TeamPhotoURL  *string
}

func (p MediaPatch) Apply(t Team) Team {
	if p.MusicFileURL != nil {
		t.MusicFileURL = *p.MusicFileURL
	}
	if p.MusicFileName != nil {
		t.MusicFileName = *p.MusicFileName
	}
	if p.TeamPhotoURL != nil {
		t.TeamPhotoURL = *p.TeamPhotoURL
	}
	return t
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

type AppError string

func (e AppError) Error() string { return string(e) }

const (
	ErrNotFound          = AppError("NOT_FOUND")
	ErrInvalidTransition = AppError("INVALID_TRANSITION")
)

// Clone returns a copy that shares no slices or pointers with t.
func Clone(t Team) Team {
	t.DanceStyles = append([]string{}, t.DanceStyles...)
	if t.PerformanceOrder != nil {
		o := *t.PerformanceOrder
		t.PerformanceOrder = &o
	}
	if t.Scoring != nil {
		s := *t.Scoring
		t.Scoring = &s
	}
	if t.TechRehearsalRating != nil {
		r := *t.TechRehearsalRating
		t.TechRehearsalRating = &r
	}
	return t
}
