// Package auth gates the workspace behind a signed-in user. Input is
// validated before any backend call; the session is kept in memory and
// mirrored to the state directory.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// SessionFilename is the session file inside the state directory.
const SessionFilename = "session.json"

// Backend performs the actual credential checks.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (models.User, error)
	SignUp(ctx context.Context, email, password, name string) (models.User, error)
	SignOut(ctx context.Context) error
}

var logger = log.Component("auth")

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation(apperr.CodeInvalidEmail, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apperr.Validation(apperr.CodeInvalidEmail, "invalid email address: "+email)
	}
	return nil
}

// ValidatePassword enforces MinPasswordLength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation(apperr.CodeInvalidPassword, "password must be at least 6 characters")
	}
	return nil
}

// ValidateName rejects blank display names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation(apperr.CodeInvalidName, "name is required")
	}
	return nil
}

// Gate owns the current session.
type Gate struct {
	backend  Backend
	stateDir string
	now      func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

// Option configures a Gate.
type Option func(*Gate)

// WithStateDir persists the session under dir.
func WithStateDir(dir string) Option {
	return func(g *Gate) { g.stateDir = dir }
}

// WithClock overrides the session timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a gate over backend, restoring a persisted session when a
// state directory is configured.
func NewGate(backend Backend, opts ...Option) *Gate {
	g := &Gate{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	g.restore()
	return g
}

func (g *Gate) sessionPath() string {
	if g.stateDir == "" {
		return ""
	}
	return filepath.Join(g.stateDir, SessionFilename)
}

func (g *Gate) restore() {
	path := g.sessionPath()
	if path == "" {
		return
	}
	// #nosec G304 -- session path is derived from the state directory
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("read session: %v", err)
		}
		return
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warnf("decode session: %v", err)
		return
	}
	g.session = &s
}

func (g *Gate) persist() {
	path := g.sessionPath()
	if path == "" {
		return
	}
	g.mu.RLock()
	s := g.session
	g.mu.RUnlock()

	if s == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("remove session: %v", err)
		}
		return
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		logger.Warnf("encode session: %v", err)
		return
	}
	if err := os.MkdirAll(g.stateDir, utils.DefaultDirPerms); err != nil {
		logger.Warnf("create state dir: %v", err)
		return
	}
	if err := os.WriteFile(path, data, utils.DefaultFilePerms); err != nil {
		logger.Warnf("write session: %v", err)
	}
}

func (g *Gate) start(u models.User) models.User {
	g.mu.Lock()
	g.session = &models.Session{User: u, SignedInAt: g.now()}
	g.mu.Unlock()
	g.persist()
	logger.WithField("user", u.Email).Info("signed in")
	return u
}

// SignIn validates input and signs in through the backend.
func (g *Gate) SignIn(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	u, err := g.backend.SignIn(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	return g.start(u), nil
}

// SignUp validates input, creates the account and signs it in.
func (g *Gate) SignUp(ctx context.Context, email, password, name string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	if err := ValidateName(name); err != nil {
		return models.User{}, err
	}
	u, err := g.backend.SignUp(ctx, email, password, strings.TrimSpace(name))
	if err != nil {
		return models.User{}, err
	}
	return g.start(u), nil
}

// SignOut ends the session. The local session is cleared even when the
// backend fails.
func (g *Gate) SignOut(ctx context.Context) error {
	err := g.backend.SignOut(ctx)
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()
	g.persist()
	return err
}

// User returns the signed-in user.
func (g *Gate) User() (models.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return models.User{}, false
	}
	return g.session.User, true
}

// Session returns a copy of the current session.
func (g *Gate) Session() (models.Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return models.Session{}, false
	}
	return *g.session, true
}

// IsAuthenticated reports whether a user is signed in.
func (g *Gate) IsAuthenticated() bool {
	_, ok := g.User()
	return ok
}
