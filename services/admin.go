package services

import (
	"context"
	"crypto/subtle"

	"cafe-storefront/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminGate is the single shared-secret gate in front of every admin
// operation. A successful login sets a persisted global flag with no
// expiry; there is no per-user session.
type AdminGate struct {
	store *storage.Store
	log   *zap.Logger

	secret []byte
	hash   []byte
}

// NewAdminGate compares logins against passwordHash (bcrypt) when set,
// otherwise against the plaintext password. With neither, every login
// is rejected.
func NewAdminGate(store *storage.Store, password, passwordHash string, logger *zap.Logger) *AdminGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &AdminGate{store: store, log: logger.Named("admin")}
	if passwordHash != "" {
		g.hash = []byte(passwordHash)
	} else if password != "" {
		g.secret = []byte(password)
	} else {
		g.log.Warn("no admin password configured; admin login disabled")
	}
	return g
}

func (g *AdminGate) matches(password string) bool {
	switch {
	case g.hash != nil:
		return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	case g.secret != nil:
		return subtle.ConstantTimeCompare(g.secret, []byte(password)) == 1
	default:
		return false
	}
}

// Login sets the authenticated flag, or returns ErrUnauthenticated
// leaving it unchanged.
func (g *AdminGate) Login(ctx context.Context, password string) error {
	if !g.matches(password) {
		g.log.Info("admin login rejected")
		return ErrUnauthenticated
	}
	g.store.Set(ctx, storage.KeyAdminAuthed, true)
	g.log.Info("admin logged in")
	return nil
}

func (g *AdminGate) Logout(ctx context.Context) {
	g.store.Remove(ctx, storage.KeyAdminAuthed)
	g.log.Info("admin logged out")
}

func (g *AdminGate) Authenticated(ctx context.Context) bool {
	var authed bool
	return g.store.Get(ctx, storage.KeyAdminAuthed, &authed) && authed
}
