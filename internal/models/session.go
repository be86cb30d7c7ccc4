package models

const GuestName = "Guest"

// SessionContext is the per-visitor state established by login or registration.
type SessionContext struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (s SessionContext) Authenticated() bool {
	return s.UserID != ""
}

func (s SessionContext) DisplayName() string {
	if s.Username == "" {
		return GuestName
	}
	return s.Username
}
