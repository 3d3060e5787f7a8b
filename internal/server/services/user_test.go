package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeev/todolist/internal/common"
	"github.com/avdeev/todolist/internal/dbx"
	"github.com/avdeev/todolist/internal/server/auth"
	"github.com/avdeev/todolist/internal/server/config"
	"github.com/avdeev/todolist/internal/server/models"
	"github.com/avdeev/todolist/internal/server/repositories/todos"
	"github.com/avdeev/todolist/internal/server/repositories/users"
	"github.com/avdeev/todolist/internal/server/validation"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTxSQLMockDB returns a db that accepts a begin/commit or begin/rollback
// pair, for flows that wrap their repository calls in dbx.WithTx.
func newTxSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.SessionTokenValidityDuration = time.Hour
	cfg.StoreTimeout = time.Second
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func testHasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost, 2)
}

type fakeUsersRepo struct {
	byEmail    *models.User
	byEmailErr error

	byID    *models.User
	byIDErr error

	createErr error
	created   *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmail, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byID, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	td *fakeTodosRepo

	usersDB dbx.DBTX // last handle Users was vended with
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	m.usersDB = db
	return m.u
}

func (m *fakeRepoManager) Todos(db dbx.DBTX) todos.Repository { return m.td }

func validSignup() validation.SignupForm {
	return validation.SignupForm{
		FirstName:       "Alice",
		LastName:        "Smith",
		Email:           "Alice@Example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		TermsAccepted:   true,
	}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: common.ErrNotFound}
	s := NewUserService(newTxSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	user, err := s.Register(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "Str0ng!pass" {
		t.Fatalf("stored digest must not equal the plaintext")
	}
	if repo.created == nil {
		t.Fatalf("expected user to reach the repository")
	}

	ok, err := testHasher().Verify(context.Background(), "Str0ng!pass", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored digest does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegister_ChecksAndInsertsInOneTransaction(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: common.ErrNotFound}
	mgr := &fakeRepoManager{u: repo}
	s := NewUserService(newTxSQLMockDB(t), mgr, testHasher(), testConfig())

	if _, err := s.Register(context.Background(), validSignup()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, ok := mgr.usersDB.(*sql.Tx); !ok {
		t.Fatalf("uniqueness check and insert must share a transaction, repo got %T", mgr.usersDB)
	}
}

func TestRegister_ValidationFailureCreatesNothing(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: common.ErrNotFound}
	s := NewUserService(newTxSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	form := validSignup()
	form.Password = "abc"
	form.ConfirmPassword = "abc"

	_, err := s.Register(context.Background(), form)

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if len(verrs) != 2 {
		t.Fatalf("expected length and complexity violations, got %v", verrs)
	}
	for _, fe := range verrs {
		if fe.Field != "password" {
			t.Fatalf("unexpected field %q in %v", fe.Field, verrs)
		}
	}
	if repo.created != nil {
		t.Fatalf("no account may be created on validation failure")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: &models.User{ID: "u1", Email: "alice@example.com"}}
	s := NewUserService(newTxSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	_, err := s.Register(context.Background(), validSignup())
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected common.ErrEmailTaken, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("no account may be created for a duplicate email")
	}
}

func TestRegister_DuplicateEmailRaceAtInsert(t *testing.T) {
	// Lookup misses but the insert trips the unique index.
	repo := &fakeUsersRepo{byEmailErr: common.ErrNotFound, createErr: common.ErrEmailTaken}
	s := NewUserService(newTxSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	_, err := s.Register(context.Background(), validSignup())
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected common.ErrEmailTaken, got %v", err)
	}
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: errors.New("connection refused")}
	s := NewUserService(newTxSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	_, err := s.Register(context.Background(), validSignup())
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected common.ErrInternal, got %v", err)
	}
}

// --- Login ---

func storedUser(t *testing.T, password string) *models.User {
	t.Helper()
	digest, err := testHasher().Hash(context.Background(), password)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	return &models.User{ID: "u1", Email: "alice@example.com", PasswordHash: digest}
}

func TestLogin_Success(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: storedUser(t, "Str0ng!pass")}
	cfg := testConfig()
	s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), cfg)

	token, err := s.Login(context.Background(), "  Alice@Example.COM ", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	id, err := auth.ParseToken(token, []byte(cfg.SecretKey))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.UserID != "u1" || id.Email != "alice@example.com" {
		t.Fatalf("unexpected identity in token: %+v", id)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: storedUser(t, "Str0ng!pass")}
	s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	token, err := s.Login(context.Background(), "alice@example.com", "wrong-password")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("expected common.ErrInvalidCredentials, got %v", err)
	}
	if token != "" {
		t.Fatalf("no token may be issued on failed login")
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: common.ErrNotFound}
	s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	_, errUnknown := s.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(errUnknown, common.ErrInvalidCredentials) {
		t.Fatalf("expected common.ErrInvalidCredentials, got %v", errUnknown)
	}

	repo2 := &fakeUsersRepo{byEmail: storedUser(t, "Str0ng!pass")}
	s2 := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo2}, testHasher(), testConfig())

	_, errWrongPw := s2.Login(context.Background(), "alice@example.com", "wrong")

	// Same sentinel, same message: the response must not say which part
	// was wrong.
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	repo := &fakeUsersRepo{byEmailErr: errors.New("timeout")}
	s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

	_, err := s.Login(context.Background(), "alice@example.com", "pw")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected common.ErrInternal, got %v", err)
	}
}

// --- Get ---

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := &fakeUsersRepo{byID: &models.User{ID: "u1", FirstName: "Alice"}}
		s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

		u, err := s.Get(context.Background(), "u1")
		if err != nil || u.FirstName != "Alice" {
			t.Fatalf("unexpected result: %+v, %v", u, err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeUsersRepo{byIDErr: common.ErrNotFound}
		s := NewUserService(newSQLMockDB(t), &fakeRepoManager{u: repo}, testHasher(), testConfig())

		_, err := s.Get(context.Background(), "nope")
		if !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("expected common.ErrNotFound, got %v", err)
		}
	})
}
