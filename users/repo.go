package users

import "github.com/jrsteele09/go-lms-client/session"

type UserRepo interface {
	// Create stores a new user and assigns its ID. Emails are unique per role.
	Create(user *User) error
	Update(user *User) error
	GetByEmail(role session.Role, email string) (*User, error)
	GetByID(role session.Role, id int64) (*User, error)
	List(role session.Role) ([]*User, error)
}
