package fakeuserrepo

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type userKey struct {
	role session.Role
	id   int64
}

type emailKey struct {
	role  session.Role
	email string
}

type FakeUserRepo struct {
	users    map[userKey]*users.User
	emailIds map[emailKey]int64
	nextID   map[session.Role]int64
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[userKey]*users.User),
		emailIds: make(map[emailKey]int64),
		nextID:   make(map[session.Role]int64),
	}
}

func (ur *FakeUserRepo) Create(user *users.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", lmserrors.ErrInvalidRequest, user.Role)
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	ek := emailKey{role: user.Role, email: strings.ToLower(user.Email)}
	if _, ok := ur.emailIds[ek]; ok {
		return lmserrors.ErrUserExists
	}
	ur.nextID[user.Role]++
	user.ID = ur.nextID[user.Role]

	stored := *user
	ur.users[userKey{role: user.Role, id: user.ID}] = &stored
	ur.emailIds[ek] = user.ID
	return nil
}

func (ur *FakeUserRepo) Update(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := userKey{role: user.Role, id: user.ID}
	existing, ok := ur.users[key]
	if !ok {
		return lmserrors.ErrUserNotFound
	}
	if !strings.EqualFold(existing.Email, user.Email) {
		return fmt.Errorf("%w: email cannot be changed", lmserrors.ErrInvalidRequest)
	}
	stored := *user
	ur.users[key] = &stored
	return nil
}

func (ur *FakeUserRepo) GetByEmail(role session.Role, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[emailKey{role: role, email: strings.ToLower(email)}]
	if !ok {
		return nil, lmserrors.ErrUserNotFound
	}
	u := *ur.users[userKey{role: role, id: id}]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(role session.Role, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	stored, ok := ur.users[userKey{role: role, id: id}]
	if !ok {
		return nil, lmserrors.ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

func (ur *FakeUserRepo) List(role session.Role) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0)
	for k, v := range ur.users {
		if k.role != role {
			continue
		}
		u := *v
		userList = append(userList, &u)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})
	return userList, nil
}
