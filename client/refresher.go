package client

import (
	"context"
	"errors"
	"fmt"
)

// DefaultRefreshPath is the token refresh endpoint relative to the API root.
const DefaultRefreshPath = "auth/token/refresh/"

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Refresher exchanges a refresh token for a new access token.
type Refresher struct {
	plain *Plain
	path  string
}

func NewRefresher(plain *Plain, path string) *Refresher {
	if path == "" {
		path = DefaultRefreshPath
	}
	return &Refresher{plain: plain, path: path}
}

func (r *Refresher) Path() string {
	return r.path
}

// Refresh posts {"refresh": refreshToken} and returns the new access token.
// The refresh token itself is not rotated.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	var resp refreshResponse
	if err := r.plain.PostJSON(ctx, r.path, refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		if errors.Is(err, ErrDecodeResponse) {
			return "", fmt.Errorf("[Refresher Refresh] %w: %w", ErrMalformedRefreshResponse, err)
		}
		return "", fmt.Errorf("[Refresher Refresh] %w", err)
	}
	if resp.Access == "" {
		return "", fmt.Errorf("[Refresher Refresh] %w: missing access token", ErrMalformedRefreshResponse)
	}
	return resp.Access, nil
}
