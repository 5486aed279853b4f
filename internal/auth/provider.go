package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/session"
	"github.com/lfca/church-admin-be/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is surfaced verbatim on sign-in failure so callers
// cannot distinguish a missing account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

const resetTokenTTL = time.Hour

// Ensure Provider satisfies the identity boundary at compile time.
var _ session.IdentityProvider = (*Provider)(nil)

// Provider is the identity provider backed by the users table. It keeps the
// currently signed-in identity for the process and notifies subscribers on
// every sign-in and sign-out.
type Provider struct {
	users storage.UserStore

	mu      sync.RWMutex
	current *session.Identity
	subs    map[int]func(*session.Identity)
	nextSub int
}

// NewProvider constructs a provider over the given credential store.
func NewProvider(users storage.UserStore) *Provider {
	return &Provider{
		users: users,
		subs:  make(map[int]func(*session.Identity)),
	}
}

// CurrentIdentity returns the signed-in identity, nil when there is none.
func (p *Provider) CurrentIdentity(ctx context.Context) (*session.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, nil
}

// OnChange registers a change subscriber and returns its detach function.
func (p *Provider) OnChange(fn func(*session.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) setCurrent(identity *session.Identity) {
	p.mu.Lock()
	p.current = identity
	subs := make([]func(*session.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(identity)
	}
}

// SignIn verifies credentials and, on success, publishes the new identity
// through the change subscription.
func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	user, err := p.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	p.setCurrent(identityFromUser(user))
	return nil
}

// SignUp creates a new identity carrying the profile metadata. It does not
// sign the new identity in.
func (p *Provider) SignUp(ctx context.Context, email, password string, metadata map[string]string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(password) < 8 || !utf8.ValidString(password) {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = p.users.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     metadata["full_name"],
		Role:         models.ParseRole(metadata["role"]),
		PasswordHash: string(hash),
	})
	return err
}

// SignOut clears the current identity and notifies subscribers.
func (p *Provider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	return nil
}

// ResetPassword records an out-of-band reset token for the account. Delivery
// of the token is outside this layer.
func (p *Provider) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if _, err := p.users.FindUserByEmail(ctx, email); err != nil {
		return err
	}
	return p.users.CreateResetToken(ctx, email, uuid.NewString(), time.Now().UTC().Add(resetTokenTTL))
}

func identityFromUser(user models.User) *session.Identity {
	return &session.Identity{
		ID:    user.ID,
		Email: user.Email,
		Metadata: map[string]string{
			"full_name": user.FullName,
			"role":      string(user.Role),
		},
	}
}
