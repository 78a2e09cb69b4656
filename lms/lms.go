// Package lms wraps the marketplace REST endpoints in typed calls. Every call
// except login and registration goes through client.Client, so it is
// authorized and recovered automatically.
package lms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-lms-client/client"
	"github.com/jrsteele09/go-lms-client/session"
)

var (
	ErrMalformedLogin = errors.New("malformed login response")
	ErrInvalidID      = errors.New("id must be positive")
)

// API is the typed marketplace API.
type API struct {
	client   *client.Client
	plain    *client.Plain
	sessions *session.Manager
}

// New builds the API on top of c. sessions must be the same store c was
// created with; login writes to it and logout clears it.
func New(c *client.Client, sessions *session.Manager) *API {
	return &API{client: c, plain: c.Plain(), sessions: sessions}
}

// Page is a list response. The API returns either a bare JSON array or a
// paginated {"count","next","previous","results"} object; both decode here.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	type page Page[T]
	var raw page
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*p = Page[T](raw)
	return nil
}

// idPath joins an endpoint prefix, an id and a trailing suffix, e.g.
// idPath("teacher/courses/", 4, "students/") = "teacher/courses/4/students/".
func idPath(prefix string, id int64, suffix string) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return prefix + strconv.FormatInt(id, 10) + "/" + suffix, nil
}
