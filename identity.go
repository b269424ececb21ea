package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// BaseKey prefixes every namespace key written by this package.
	BaseKey = "smallbatch-ledger-v2"
	// Guest is the namespace suffix used when nobody is signed in.
	Guest = "guest"

	activeUserKey = "cakepop-active-user"
)

// User is a signed-in identity. Sub is the stable subject identifier.
type User struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// IdentityProvider returns the active user, or nil for a guest.
type IdentityProvider interface {
	ActiveUser() *User
}

// NamespaceKey returns the storage key of the ledger owned by u.
func NamespaceKey(u *User) string {
	suffix := Guest
	if u != nil && u.Sub != "" {
		suffix = u.Sub
	}
	return BaseKey + "::" + suffix
}

// Session keeps the active user in a KV so that it survives restarts.
//
// Listeners registered with OnChange are called after every change of user.
type Session struct {
	kv KV

	mu        sync.Mutex
	loaded    bool
	user      *User
	listeners []func(*User)
}

// NewSession returns a session persisted in kv.
func NewSession(kv KV) *Session {
	return &Session{kv: kv}
}

// ActiveUser returns the signed-in user, or nil.
func (s *Session) ActiveUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.loaded = true
		data, err := s.kv.Get(activeUserKey)
		if err == nil {
			var u User
			if err := json.Unmarshal(data, &u); err != nil {
				log.Printf("ignoring unreadable active user: %v", err)
			} else if u.Sub != "" {
				s.user = &u
			}
		} else if !errors.Is(err, ErrNotFound) {
			log.Printf("cannot read active user: %v", err)
		}
	}
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetActiveUser persists u as the active user (nil signs out) and notifies listeners.
func (s *Session) SetActiveUser(u *User) error {
	s.mu.Lock()
	var err error
	if u != nil {
		var data []byte
		data, err = json.Marshal(u)
		if err == nil {
			err = s.kv.Set(activeUserKey, data)
		}
	} else {
		err = s.kv.Delete(activeUserKey)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("cannot save active user: %w", err)
	}
	s.loaded = true
	s.user = nil
	if u != nil {
		cp := *u
		s.user = &cp
	}
	listeners := append([]func(*User){}, s.listeners...)
	s.mu.Unlock()

	for _, f := range listeners {
		f(u)
	}
	return nil
}

// SignOut clears the active user.
func (s *Session) SignOut() error { return s.SetActiveUser(nil) }

// OnChange registers f to be called after each change of active user.
func (s *Session) OnChange(f func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, f)
}

// ParseGoogleCredential extracts the user from a Google Sign-In ID token.
//
// The signature is not verified: the token only selects a local namespace,
// it grants no access to anything remote.
func ParseGoogleCredential(credential string) (*User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("invalid Google credential: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("invalid Google credential: missing subject")
	}
	u := &User{Sub: sub}
	u.Email, _ = claims["email"].(string)
	u.Name, _ = claims["name"].(string)
	if u.Name == "" {
		u.Name = u.Email
	}
	return u, nil
}
