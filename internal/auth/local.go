package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/utils"
)

// UsersFilename is the local account file inside the state directory.
const UsersFilename = "users.json"

type localUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password_hash"`
}

// LocalBackend keeps accounts in a JSON file with bcrypt password hashes.
type LocalBackend struct {
	path string
	cost int

	mu sync.Mutex
}

// NewLocalBackend stores accounts under dir.
func NewLocalBackend(dir string) *LocalBackend {
	return &LocalBackend{path: filepath.Join(dir, UsersFilename), cost: bcrypt.DefaultCost}
}

func invalidCredentials() error {
	return apperr.New(apperr.KindAuth, apperr.CodeInvalidCredentials, "invalid email or password")
}

func (b *LocalBackend) readLocked() ([]localUser, error) {
	// #nosec G304 -- users path is derived from the state directory
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.FileSystem(apperr.CodeIOFailure, "read accounts", err)
	}
	var users []localUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, apperr.FileSystem(apperr.CodeIOFailure, "decode accounts", err)
	}
	return users, nil
}

func (b *LocalBackend) writeLocked(users []localUser) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return apperr.FileSystem(apperr.CodeIOFailure, "encode accounts", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), utils.DefaultDirPerms); err != nil {
		return apperr.FileSystem(apperr.CodeIOFailure, "create state dir", err)
	}
	if err := os.WriteFile(b.path, data, utils.DefaultFilePerms); err != nil {
		return apperr.FileSystem(apperr.CodeIOFailure, "write accounts", err)
	}
	return nil
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SignIn checks the password against the stored hash.
func (b *LocalBackend) SignIn(ctx context.Context, email, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	users, err := b.readLocked()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if !sameEmail(u.Email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return models.User{}, invalidCredentials()
		}
		return models.User{ID: u.ID, Email: u.Email, Name: u.Name}, nil
	}
	return models.User{}, invalidCredentials()
}

// SignUp creates an account. Emails are unique, case-insensitively.
func (b *LocalBackend) SignUp(ctx context.Context, email, password, name string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	users, err := b.readLocked()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if sameEmail(u.Email, email) {
			return models.User{}, apperr.New(apperr.KindAuth, apperr.CodeAlreadyExists, "an account already exists for "+email)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return models.User{}, apperr.Wrap(err, apperr.KindAuth, apperr.CodeInvalidPassword, "hash password")
	}
	u := localUser{ID: uuid.NewString(), Email: email, Name: name, Password: string(hash)}
	if err := b.writeLocked(append(users, u)); err != nil {
		return models.User{}, err
	}
	return models.User{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

// SignOut has nothing to revoke locally.
func (b *LocalBackend) SignOut(ctx context.Context) error {
	return ctx.Err()
}
