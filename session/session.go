package session

import (
	"encoding/json"
	"time"
)

// Role identifies which side of the marketplace the session belongs to.
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Tokens is the credential pair returned by login and refresh.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session is the authentication state of the current user. The zero value is a
// logged-out session.
type Session struct {
	AccessToken  string          `json:"accessToken,omitempty"`  // Short-lived bearer credential
	RefreshToken string          `json:"refreshToken,omitempty"` // Exchanged for a new access token
	Role         Role            `json:"role,omitempty"`
	Profile      json.RawMessage `json:"user,omitempty"` // Student or teacher record as returned by login
	UpdatedAt    time.Time       `json:"updatedAt,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	if s.Profile != nil {
		s.Profile = append(json.RawMessage(nil), s.Profile...)
	}
	return s
}
