package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteSession is returned when a session would be missing its token or identity.
var ErrIncompleteSession = errors.New("incomplete session")

// ID is an identifier that the API may encode as a JSON string or number.
type ID string

// UnmarshalJSON accepts both "abc" and 42.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is the identity record returned by POST /api/login and persisted under the "user" key.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is an authenticated user plus the bearer credential.
//
// The zero value means "no session".
type Session struct {
	UserID   string
	Username string
	Email    string
	Token    string
}

// NewSession builds a Session from a login token and user record.
//
// Returns [ErrIncompleteSession] unless token, user id and username are all present.
func NewSession(token string, user User) (Session, error) {
	s := Session{
		UserID:   strings.TrimSpace(user.ID.String()),
		Username: strings.TrimSpace(user.Username),
		Email:    user.Email,
		Token:    strings.TrimSpace(token),
	}
	if !s.Valid() {
		return Session{}, ErrIncompleteSession
	}
	return s, nil
}

// Valid reports whether every required field is populated.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != "" && s.Username != ""
}

// User returns the identity part of the session.
func (s Session) User() User {
	return User{ID: ID(s.UserID), Username: s.Username, Email: s.Email}
}
