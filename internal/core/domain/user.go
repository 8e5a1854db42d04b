package domain

import "time"

const (
	RoleTeacher     = "teacher"
	RoleParticipant = "participant"
)

// ValidRole reports whether role is one a user may register with.
func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleParticipant
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the caller resolved from a session token. It is the only
// server-side notion of "who is asking"; logins keep no server state.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

func (i Identity) IsTeacher() bool { return i.Role == RoleTeacher }
