package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"
	"unicode"

	"statshub-app/internal/apperr"
	"statshub-app/internal/cache"
	"statshub-app/internal/model"
	"statshub-app/internal/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// LocalProvider keeps email and password accounts in the store and hands out
// opaque session tokens that expire after the configured TTL. Sessions live
// in process, so a restart signs everyone out but keeps their accounts.
type LocalProvider struct {
	store    store.Store
	clock    clockwork.Clock
	sessions *cache.Cache[Identity]
}

func NewLocalProvider(st store.Store, clock clockwork.Clock, sessionTTL time.Duration) *LocalProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LocalProvider{
		store:    st,
		clock:    clock,
		sessions: cache.New[Identity](clock, sessionTTL),
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, apperr.Validation("a valid email is required")
	}
	if len(password) < minPasswordLength || !containsUppercase(password) {
		return Identity{}, apperr.Validation("password must be at least %d characters and contain an uppercase letter", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}
	cred, err := p.store.CreateCredential(ctx, model.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    p.clock.Now().UTC(),
	})
	if err != nil {
		return Identity{}, apperr.Persistence("create account", err)
	}
	log.Ctx(ctx).Info().Str("uid", cred.UID).Msg("account created")
	return identityOf(cred), nil
}

// EnsureAccount returns the existing account for email, or signs it up. It
// keeps the bootstrap account's UID stable across restarts.
func (p *LocalProvider) EnsureAccount(ctx context.Context, email, password, displayName string) (Identity, error) {
	cred, err := p.store.GetCredentialByEmail(ctx, email)
	if err == nil {
		return identityOf(cred), nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return Identity{}, apperr.Persistence("load account", err)
	}
	return p.SignUp(ctx, email, password, displayName)
}

// SignIn checks the credentials and returns a new session token.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, Identity, error) {
	cred, err := p.store.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", Identity{}, apperr.ErrUnauthenticated
		}
		return "", Identity{}, apperr.Persistence("load account", err)
	}
	if !checkPassword(cred.PasswordHash, password) {
		return "", Identity{}, apperr.ErrUnauthenticated
	}
	token, err := newToken()
	if err != nil {
		return "", Identity{}, err
	}
	id := identityOf(cred)
	p.sessions.Set(token, id)
	return token, id, nil
}

func (p *LocalProvider) SignOut(token string) {
	p.sessions.Invalidate(token)
}

func (p *LocalProvider) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.ErrUnauthenticated
	}
	id, ok := p.sessions.Get(token)
	if !ok {
		return Identity{}, apperr.ErrUnauthenticated
	}
	return id, nil
}

// Sessions exposes the token cache so expired sessions can be swept.
func (p *LocalProvider) Sessions() cache.Sweeper {
	return p.sessions
}

func identityOf(cred model.Credential) Identity {
	return Identity{UID: cred.UID, Email: cred.Email, DisplayName: cred.DisplayName}
}

func checkPassword(hash string, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func containsUppercase(value string) bool {
	for _, r := range value {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
