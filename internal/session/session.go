// Package session tracks the current authenticated identity and role on top
// of a pluggable identity provider.
package session

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/lfca/church-admin-be/internal/models"
)

// Identity is the provider-defined view of an authenticated user: id, email,
// and a loosely-typed profile metadata map that may carry full_name and role.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// IdentityProvider is the external auth boundary. Sign-in and sign-out
// surface their result through the change subscription, not a return value.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
	OnChange(fn func(*Identity)) (detach func())
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string, metadata map[string]string) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
}

// FromIdentity builds a session from provider claims. The role metadata is
// parsed exactly once here; missing or malformed values fall back to the
// lowest-privilege role and are never trusted again downstream.
func FromIdentity(id *Identity) *models.UserSession {
	if id == nil {
		return nil
	}
	name := id.Metadata["full_name"]
	if name == "" {
		if at := strings.IndexByte(id.Email, '@'); at > 0 {
			name = id.Email[:at]
		} else {
			name = "User"
		}
	}
	return &models.UserSession{
		ID:    id.ID,
		Email: id.Email,
		Name:  name,
		Role:  models.ParseRole(id.Metadata["role"]),
	}
}

// Listener receives the (session, loading) pair on every change.
type Listener func(session *models.UserSession, loading bool)

// Store holds the current session value for the life of the process. While
// the initial recovery is pending it reports loading=true, which is distinct
// from "no session".
type Store struct {
	provider IdentityProvider
	detach   func()

	mu      sync.RWMutex
	session *models.UserSession
	loading bool
	subs    map[int]Listener
	nextSub int
}

// NewStore recovers any existing session from the provider and subscribes to
// its change feed for the lifetime of the store. Call Close to detach.
func NewStore(ctx context.Context, provider IdentityProvider) *Store {
	s := &Store{
		provider: provider,
		loading:  true,
		subs:     make(map[int]Listener),
	}

	identity, err := provider.CurrentIdentity(ctx)
	if err != nil {
		log.Printf("session: recover existing session: %v", err)
	}
	s.mu.Lock()
	s.session = FromIdentity(identity)
	s.loading = false
	s.mu.Unlock()
	s.notify()

	s.detach = provider.OnChange(func(identity *Identity) {
		s.mu.Lock()
		s.session = FromIdentity(identity)
		s.loading = false
		s.mu.Unlock()
		s.notify()
	})

	return s
}

// Close detaches from the provider's change feed.
func (s *Store) Close() {
	if s.detach != nil {
		s.detach()
	}
}

// Subscribe registers a listener, invokes it immediately with the current
// pair, and returns its detach function. Detaching during a notification in
// progress is safe.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	session, loading := s.session, s.loading
	s.mu.Unlock()

	fn(session, loading)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	session, loading := s.session, s.loading
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(session, loading)
	}
}

// Session returns the current session, nil when unauthenticated.
func (s *Store) Session() *models.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Loading reports whether the initial session recovery is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Login delegates to the provider. Success lands through the change
// subscription; failure surfaces the provider's error with state unchanged.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.provider.SignIn(ctx, email, password)
}

// Signup registers a new identity with the default member role attached to
// its profile metadata. It does not authenticate; callers proceed to Login.
func (s *Store) Signup(ctx context.Context, email, password, fullName string) error {
	return s.provider.SignUp(ctx, email, password, map[string]string{
		"full_name": fullName,
		"role":      string(models.RoleMember),
	})
}

// Logout delegates to the provider; the resulting change notification clears
// the session.
func (s *Store) Logout(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

// ResetPassword triggers the provider's out-of-band reset flow. No local
// state changes either way.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	return s.provider.ResetPassword(ctx, email)
}
