package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

const (
	// RouteEntry is where the app lands after logout.
	RouteEntry = "/"
	// RouteSignIn starts the external sign-in flow.
	RouteSignIn = "/login"
)

// Navigator moves the front-end to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type authStatus int

const (
	authPending authStatus = iota
	authSignedIn
	authSignedOut
)

// AuthState resolves the current user once per session and is passed explicitly to every view that needs identity.
type AuthState struct {
	backend AuthBackend
	nav     Navigator

	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	status authStatus
	user   *models.User
}

func NewAuthState(backend AuthBackend, nav Navigator) *AuthState {
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &AuthState{backend: backend, nav: nav, done: make(chan struct{})}
}

// Exchange trades an identity-provider session id for a backend session, then resolves identity from the new cookie.
func (a *AuthState) Exchange(ctx context.Context, sessionID string) (*models.User, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.Validation("session id is required")
	}
	if _, err := a.backend.Session(ctx, sessionID); err != nil {
		log.Printf("Session exchange failed: %v", err)
		return nil, err
	}
	return a.Resolve(ctx)
}

// Resolve asks the backend who the current user is. Only the first call reaches the network; later calls,
// concurrent or not, observe the same outcome. Failure sends the front-end to sign-in and is never retried.
func (a *AuthState) Resolve(ctx context.Context) (*models.User, error) {
	a.once.Do(func() {
		user, err := a.backend.Me(ctx)

		a.mu.Lock()
		if err != nil {
			log.Printf("Identity check failed: %v", err)
			a.status = authSignedOut
		} else {
			a.status = authSignedIn
			a.user = user
		}
		a.mu.Unlock()
		close(a.done)

		if err != nil {
			a.nav.Navigate(RouteSignIn)
		}
	})
	return a.current()
}

// WaitResolved blocks until Resolve has completed or ctx ends.
func (a *AuthState) WaitResolved(ctx context.Context) (*models.User, error) {
	select {
	case <-a.done:
		return a.current()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolved reports whether the identity check has finished, whatever its outcome.
func (a *AuthState) Resolved() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// User returns a copy of the signed-in user.
func (a *AuthState) User() (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.status != authSignedIn || a.user == nil {
		return models.User{}, false
	}
	return *a.user, true
}

// SetUser replaces the cached identity after a profile save.
func (a *AuthState) SetUser(u models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == authSignedIn {
		a.user = &u
	}
}

// Logout ends the session. Local identity is cleared and the front-end goes to the entry route
// even when the backend call fails; that failure is returned for logging only.
func (a *AuthState) Logout(ctx context.Context) error {
	err := a.backend.Logout(ctx)
	if err != nil {
		log.Printf("Logout failed: %v", err)
	}

	a.once.Do(func() { close(a.done) })
	a.mu.Lock()
	a.status = authSignedOut
	a.user = nil
	a.mu.Unlock()

	a.nav.Navigate(RouteEntry)
	return err
}

func (a *AuthState) current() (*models.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	switch a.status {
	case authSignedIn:
		u := *a.user
		return &u, nil
	case authSignedOut:
		return nil, ErrSignInRequired
	}
	return nil, ErrNotResolved
}
