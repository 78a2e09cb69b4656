package lms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-lms-client/session"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StudentRegistration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	MobileNo string `json:"mobile_no,omitempty"`
}

type TeacherRegistration struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Qualification string `json:"qualification,omitempty"`
	Skills        string `json:"skills,omitempty"`
	Bio           string `json:"bio,omitempty"`
}

func (a *API) StudentRegister(ctx context.Context, in StudentRegistration) (*Student, error) {
	var out Student
	if err := a.plain.PostJSON(ctx, "auth/student/register/", in, &out); err != nil {
		return nil, fmt.Errorf("[API StudentRegister] %w", err)
	}
	return &out, nil
}

func (a *API) TeacherRegister(ctx context.Context, in TeacherRegistration) (*Teacher, error) {
	var out Teacher
	if err := a.plain.PostJSON(ctx, "auth/teacher/register/", in, &out); err != nil {
		return nil, fmt.Errorf("[API TeacherRegister] %w", err)
	}
	return &out, nil
}

// StudentLogin authenticates and, on success, replaces the session.
func (a *API) StudentLogin(ctx context.Context, creds Credentials) (*Student, error) {
	profile, err := a.login(ctx, session.RoleStudent, creds)
	if err != nil {
		return nil, fmt.Errorf("[API StudentLogin] %w", err)
	}
	var out Student
	if err := json.Unmarshal(profile, &out); err != nil {
		return nil, fmt.Errorf("[API StudentLogin] %w: %w", ErrMalformedLogin, err)
	}
	return &out, nil
}

// TeacherLogin authenticates and, on success, replaces the session.
func (a *API) TeacherLogin(ctx context.Context, creds Credentials) (*Teacher, error) {
	profile, err := a.login(ctx, session.RoleTeacher, creds)
	if err != nil {
		return nil, fmt.Errorf("[API TeacherLogin] %w", err)
	}
	var out Teacher
	if err := json.Unmarshal(profile, &out); err != nil {
		return nil, fmt.Errorf("[API TeacherLogin] %w: %w", ErrMalformedLogin, err)
	}
	return &out, nil
}

// Login dispatches to the student or teacher login and returns the raw profile.
func (a *API) Login(ctx context.Context, role session.Role, creds Credentials) (json.RawMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("[API Login] %w", session.ErrInvalidRole)
	}
	profile, err := a.login(ctx, role, creds)
	if err != nil {
		return nil, fmt.Errorf("[API Login] %w", err)
	}
	return profile, nil
}

// Logout destroys the local session. The API keeps no server-side session.
func (a *API) Logout(ctx context.Context) error {
	return a.sessions.Clear(ctx)
}

func (a *API) login(ctx context.Context, role session.Role, creds Credentials) (json.RawMessage, error) {
	var resp map[string]json.RawMessage
	if err := a.plain.PostJSON(ctx, "auth/"+string(role)+"/login/", creds, &resp); err != nil {
		return nil, err
	}

	var tokens session.Tokens
	if err := json.Unmarshal(resp["access"], &tokens.Access); err != nil || tokens.Access == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrMalformedLogin)
	}
	if err := json.Unmarshal(resp["refresh"], &tokens.Refresh); err != nil || tokens.Refresh == "" {
		return nil, fmt.Errorf("%w: missing refresh token", ErrMalformedLogin)
	}
	profile := resp[string(role)]
	if len(profile) == 0 || string(profile) == "null" {
		return nil, fmt.Errorf("%w: missing %s record", ErrMalformedLogin, role)
	}

	if err := a.sessions.Login(ctx, tokens, role, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
