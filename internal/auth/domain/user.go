package domain

import "time"

type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Phone               string
	Role                string
	Active              bool
	EmailVerified       bool
	VerificationToken   string
	ResetToken          string
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SessionEntry is the cached projection of a user attached to authenticated
// requests. It carries just enough to skip the store lookup on the hot path.
type SessionEntry struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	LastActivity  time.Time `json:"last_activity"`
}

// SessionFromUser projects a user into its cacheable session form.
func SessionFromUser(u *User) *SessionEntry {
	return &SessionEntry{
		UserID:        u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		LastActivity:  time.Now(),
	}
}
