package model

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganizer    Role = "organizer"
	RoleAssistant    Role = "assistant"
	RoleVolunteer    Role = "volunteer"
	RoleTeamDirector Role = "team_director"
	RoleArtist       Role = "artist"
	RoleAttendee     Role = "attendee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleAssistant, RoleVolunteer, RoleTeamDirector, RoleArtist, RoleAttendee:
		return true
	}
	return false
}

// User is the acting user of a request.
type User struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (u User) IsOrganizer() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}

func (u User) Owns(t Team) bool {
	return u.ID != "" && u.ID == t.CreatedBy
}
