package session

import "context"

// Repo persists the single session of this client. Load returns
// errors.ErrSessionNotFound when nothing has been saved.
type Repo interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}
