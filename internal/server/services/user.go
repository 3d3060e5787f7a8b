// Package services contains server-side business logic. This file implements
// UserService, which handles signup validation, password hashing, login, and
// minting session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avdeev/todolist/internal/common"
	"github.com/avdeev/todolist/internal/dbx"
	"github.com/avdeev/todolist/internal/server/auth"
	"github.com/avdeev/todolist/internal/server/config"
	"github.com/avdeev/todolist/internal/server/models"
	"github.com/avdeev/todolist/internal/server/repositories/repomanager"
	"github.com/avdeev/todolist/internal/server/validation"
)

// decoyDigest is a valid bcrypt digest (cost 10) of a throwaway string.
// Login verifies the submitted password against it when the email is
// unknown, so an attacker cannot tell a missing account from a wrong
// password by response timing. The comparison result is discarded.
const decoyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService provides authentication-related operations:
// - Register: validate signup input and create users
// - Login: verify credentials and mint a session token
type UserService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	hasher               *auth.Hasher
	jwtSecret            []byte
	sessionTokenValidity time.Duration
	storeTimeout         time.Duration
}

// NewUserService constructs a UserService using repositories, the password
// hasher, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher, cfg *config.Config) *UserService {
	return &UserService{
		db:                   db,
		repomanager:          m,
		hasher:               hasher,
		jwtSecret:            []byte(cfg.SecretKey),
		sessionTokenValidity: cfg.SessionTokenValidityDuration,
		storeTimeout:         cfg.StoreTimeout,
	}
}

// Register validates the signup form and, on success, creates the user with
// a hashed password. The steps run strictly in order — validate, check
// uniqueness, hash, create — and a failure at any step stops the flow.
// Check and insert share one transaction; the unique index still catches a
// concurrent signup racing the lookup. Validation failures come back as
// validation.Errors; a duplicate address is common.ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, form validation.SignupForm) (*models.User, error) {
	rec, verrs := validation.ValidateSignup(form)
	if verrs != nil {
		return nil, verrs
	}

	user := &models.User{
		ID:            uuid.New().String(),
		FirstName:     rec.FirstName,
		LastName:      rec.LastName,
		Email:         rec.Email,
		TermsAccepted: rec.TermsAccepted,
	}

	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	err := dbx.WithTx(cctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		// Cheap duplicate check before the expensive hash.
		_, err := repo.GetByEmail(ctx, rec.Email)
		if err == nil {
			return common.ErrEmailTaken
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: checking email uniqueness: %v", common.ErrInternal, err)
		}

		digest, err := s.hasher.Hash(ctx, rec.Password)
		if err != nil {
			return fmt.Errorf("%w: hashing password: %v", common.ErrInternal, err)
		}
		user.PasswordHash = digest

		created, err := repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrEmailTaken) {
				return common.ErrEmailTaken
			}
			return fmt.Errorf("%w: creating user: %v", common.ErrInternal, err)
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and, on success, returns a signed session
// token. Unknown email and wrong password produce the same
// common.ErrInvalidCredentials, and the unknown-email path still performs
// one digest comparison so the two failures cost the same.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	user, err := repo.GetByEmail(cctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = s.hasher.Verify(ctx, password, decoyDigest)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: looking up user: %v", common.ErrInternal, err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("%w: verifying password: %v", common.ErrInternal, err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.Identity{UserID: user.ID, Email: user.Email}, s.jwtSecret, s.sessionTokenValidity)
	if err != nil {
		return "", fmt.Errorf("%w: issuing session token: %v", common.ErrInternal, err)
	}

	return token, nil
}

// Get loads a user by id, for showing the owner's name on their list.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	user, err := repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading user: %v", common.ErrInternal, err)
	}
	return user, nil
}
