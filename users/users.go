package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-lms-client/session"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var ErrWeakPassword = errors.New("password too weak")

// User is a marketplace account. Students and teachers live in separate id
// spaces, so (Role, ID) identifies a user.
type User struct {
	ID            int64        `json:"id"`
	Role          session.Role `json:"-"`
	FullName      string       `json:"full_name"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"` // never serialize
	MobileNo      string       `json:"mobile_no,omitempty"`
	Bio           string       `json:"bio"`
	Qualification string       `json:"qualification,omitempty"`
	Skills        string       `json:"skills,omitempty"`
	ProfileImg    *string      `json:"profile_img"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ValidatePasswordStrength enforces the API's minimum password length.
func ValidatePasswordStrength(password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the user's stored hash.
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
