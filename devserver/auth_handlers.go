package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/token"
	tokenjwt "github.com/jrsteele09/go-lms-client/token/jwt"
	"github.com/jrsteele09/go-lms-client/users"
)

type registration struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	MobileNo      string `json:"mobile_no"`
	Bio           string `json:"bio"`
	Qualification string `json:"qualification"`
	Skills        string `json:"skills"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) registerHandler(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in registration
		if err := decodeBody(r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
			return
		}
		if strings.TrimSpace(in.Email) == "" {
			writeJSON(w, http.StatusBadRequest, fieldErrors("email", "This field is required."))
			return
		}
		if strings.TrimSpace(in.FullName) == "" {
			writeJSON(w, http.StatusBadRequest, fieldErrors("full_name", "This field is required."))
			return
		}
		if err := users.ValidatePasswordStrength(in.Password); err != nil {
			writeJSON(w, http.StatusBadRequest, fieldErrors("password", "Ensure this field has at least 6 characters."))
			return
		}

		u, err := s.createUser(role, in)
		if lmserrors.Is(err, lmserrors.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, fieldErrors("email", string(role)+" with this email already exists."))
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create user")
			writeJSON(w, http.StatusInternalServerError, errorBody(lmserrors.ErrInternal.Error()))
			return
		}
		writeJSON(w, http.StatusCreated, profileOf(u))
	}
}

// createUser hashes the password and stores a new account for role.
func (s *Server) createUser(role session.Role, in registration) (*users.User, error) {
	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &users.User{
		Role:          role,
		FullName:      in.FullName,
		Email:         strings.TrimSpace(in.Email),
		PasswordHash:  hash,
		MobileNo:      in.MobileNo,
		Bio:           in.Bio,
		Qualification: in.Qualification,
		Skills:        in.Skills,
		CreatedAt:     NowTimeFunc(),
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) loginHandler(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		if err := decodeBody(r, &in); err != nil || in.Email == "" || in.Password == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("Email and password are required"))
			return
		}

		u, err := s.authenticate(role, in)
		if err != nil {
			s.metrics.logins.WithLabelValues(string(role), "rejected").Inc()
			s.logger.Debug().Err(err).Msg("login rejected")
			writeJSON(w, http.StatusUnauthorized, errorBody("Invalid email or password"))
			return
		}

		tokens, err := s.creator.CreatePair(tokenjwt.Subject{ID: u.ID, Email: u.Email, Role: role})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue tokens")
			writeJSON(w, http.StatusInternalServerError, errorBody(lmserrors.ErrInternal.Error()))
			return
		}
		s.metrics.logins.WithLabelValues(string(role), "success").Inc()

		resp := map[string]any{
			"access":     tokens.Access,
			"refresh":    tokens.Refresh,
			string(role): profileOf(u),
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// authenticate reports unknown emails and wrong passwords alike as
// ErrInvalidCredentials.
func (s *Server) authenticate(role session.Role, in credentials) (*users.User, error) {
	u, err := s.users.GetByEmail(role, in.Email)
	if err != nil {
		return nil, lmserrors.Wrapf(lmserrors.ErrInvalidCredentials, "[Server authenticate] %s %s: %v", role, in.Email, err)
	}
	if !u.CheckPassword(in.Password) {
		return nil, lmserrors.Wrapf(lmserrors.ErrInvalidCredentials, "[Server authenticate] %s %s: wrong password", role, in.Email)
	}
	return u, nil
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeBody(r, &in); err != nil || in.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, fieldErrors("refresh", "This field is required."))
		return
	}

	claims, err := s.verifier.Verify(in.Refresh, token.TypeRefresh)
	s.metrics.refresh.WithLabelValues(result(err)).Inc()
	if err != nil {
		s.logger.Debug().Err(fmt.Errorf("%w: %w", lmserrors.ErrInvalidRefreshToken, err)).Msg("refresh rejected")
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	// The account may have been removed since the refresh token was issued.
	if _, err := s.users.GetByID(claims.UserType, claims.UserID); err != nil {
		s.logger.Debug().Err(lmserrors.Wrapf(lmserrors.ErrInvalidRefreshToken, "[Server refresh] %s %d: %v", claims.UserType, claims.UserID, err)).Msg("refresh rejected")
		writeJSON(w, http.StatusUnauthorized, tokenNotValid())
		return
	}

	access, err := s.creator.CreateAccessToken(tokenjwt.Subject{ID: claims.UserID, Email: claims.Email, Role: claims.UserType})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue access token")
		writeJSON(w, http.StatusInternalServerError, errorBody(lmserrors.ErrInternal.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) teacherProfileHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profileOf(u))
}

func (s *Server) updateTeacherProfileHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var in map[string]json.RawMessage
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}
	for field, dst := range map[string]*string{
		"full_name":     &u.FullName,
		"bio":           &u.Bio,
		"qualification": &u.Qualification,
		"skills":        &u.Skills,
	} {
		if raw, ok := in[field]; ok {
			_ = json.Unmarshal(raw, dst)
		}
	}
	if err := s.users.Update(u); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, profileOf(u))
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
		return nil, false
	}
	u, err := s.users.GetByID(claims.UserType, claims.UserID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, tokenNotValid())
		return nil, false
	}
	return u, true
}

// profileOf renders a user the way the role's serializer does: students carry
// mobile_no, teachers carry qualification and skills.
func profileOf(u *users.User) map[string]any {
	p := map[string]any{
		"id":          u.ID,
		"full_name":   u.FullName,
		"email":       u.Email,
		"bio":         u.Bio,
		"profile_img": u.ProfileImg,
		"created_at":  u.CreatedAt,
	}
	if u.Role == session.RoleTeacher {
		p["qualification"] = u.Qualification
		p["skills"] = u.Skills
	} else {
		p["mobile_no"] = u.MobileNo
	}
	return p
}
