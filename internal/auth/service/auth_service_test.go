package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/task-tracker/backend/internal/auth/token"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/task-tracker/backend/internal/user/repository"
	"github.com/AlibekovAA/task-tracker/backend/internal/validation"
)

type mockUserRepo struct {
	createFunc      func(ctx context.Context, user userdomain.User) error
	findByEmailFunc func(ctx context.Context, email string) (userdomain.User, error)
	findByIDFunc    func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	updateFunc      func(ctx context.Context, user userdomain.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) Update(ctx context.Context, user userdomain.User) error {
	return m.updateFunc(ctx, user)
}

// newMemoryRepo backs the mock with a map keyed by lower-cased email.
func newMemoryRepo() *mockUserRepo {
	var mu sync.Mutex
	byEmail := map[string]userdomain.User{}

	return &mockUserRepo{
		createFunc: func(_ context.Context, user userdomain.User) error {
			mu.Lock()
			defer mu.Unlock()
			key := strings.ToLower(user.Email)
			if _, ok := byEmail[key]; ok {
				return userrepo.ErrEmailAlreadyExists
			}
			byEmail[key] = user
			return nil
		},
		findByEmailFunc: func(_ context.Context, email string) (userdomain.User, error) {
			mu.Lock()
			defer mu.Unlock()
			u, ok := byEmail[strings.ToLower(email)]
			if !ok {
				return userdomain.User{}, userrepo.ErrUserNotFound
			}
			return u, nil
		},
	}
}

type mockHasher struct {
	mu       sync.Mutex
	compares []string
}

func (h *mockHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *mockHasher) Compare(hash, password string) error {
	h.mu.Lock()
	h.compares = append(h.compares, hash)
	h.mu.Unlock()
	if hash != "hashed:"+password {
		return commoncrypto.ErrPasswordMismatch
	}
	return nil
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n), nil
}

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo userrepo.Repository, hasher commoncrypto.PasswordHasher) (*AuthService, *clock.MockClock) {
	clk := clock.NewMockClock(testNow)
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR")
	ids := &sequenceIDs{}

	svc := NewAuthService(AuthServiceDeps{
		Repo:        repo,
		Hasher:      hasher,
		IDGenerator: ids,
		Tokens:      token.NewJWTManager(constants.TestJWTSecret, 24*time.Hour, clk, ids),
		Clock:       clk,
		Log:         log,
	}, AuthServiceConfig{})
	return svc, clk
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(), &mockHasher{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: " Ana ", Email: "Ana@X.com", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.User.Name != "Ana" || reg.User.Email != "ana@x.com" {
		t.Errorf("unexpected public user: %+v", reg.User)
	}
	if !reg.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("unexpected expiry: %v", reg.ExpiresAt)
	}

	userID, err := svc.VerifyToken(reg.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != reg.User.ID {
		t.Errorf("token subject %s does not match user %s", userID, reg.User.ID)
	}

	login, err := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	loginUserID, err := svc.VerifyToken(login.Token)
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}
	if loginUserID != reg.User.ID {
		t.Errorf("login token names %s, want %s", loginUserID, reg.User.ID)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	tests := []struct {
		name   string
		second string
	}{
		{name: "same case", second: "ana@x.com"},
		{name: "different case", second: "ANA@x.COM"},
		{name: "surrounding spaces", second: "  ana@x.com "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(newMemoryRepo(), &mockHasher{})
			ctx := context.Background()

			if _, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "Secr3t!"}); err != nil {
				t.Fatalf("first register: %v", err)
			}

			_, err := svc.Register(ctx, RegisterInput{Name: "Other", Email: tt.second, Password: "An0ther!"})
			if !errors.Is(err, ErrDuplicateEmail) {
				t.Fatalf("expected ErrDuplicateEmail, got %v", err)
			}
		})
	}
}

func TestAuthService_RegisterRaceMapsUniqueViolation(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFunc: func(context.Context, string) (userdomain.User, error) {
			return userdomain.User{}, userrepo.ErrUserNotFound
		},
		createFunc: func(context.Context, userdomain.User) error {
			return userrepo.ErrEmailAlreadyExists
		},
	}
	svc, _ := newTestService(repo, &mockHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "Secr3t!"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	called := false
	repo := &mockUserRepo{
		findByEmailFunc: func(context.Context, string) (userdomain.User, error) {
			called = true
			return userdomain.User{}, userrepo.ErrUserNotFound
		},
	}
	svc, _ := newTestService(repo, &mockHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "", Email: "nope", Password: "short"})
	if !errors.Is(err, commonerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := validation.FieldsFrom(err)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected three field errors, got %+v", fields)
	}
	if called {
		t.Fatal("store must not be touched when validation fails")
	}
}

func TestAuthService_LoginInvalidCredentialsAreIdentical(t *testing.T) {
	hasher := &mockHasher{}
	svc, _ := newTestService(newMemoryRepo(), hasher)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "Secr3t!"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "Wr0ngpass"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "ghost@x.com", Password: "Secr3t!"})

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword.Error(), unknownEmail.Error())
	}

	if len(hasher.compares) != 2 {
		t.Fatalf("expected a hash comparison for both failures, got %d", len(hasher.compares))
	}
	if hasher.compares[1] != "hashed:"+dummyPassword {
		t.Errorf("unknown email should compare against the dummy hash, got %q", hasher.compares[1])
	}
}

func TestAuthService_StoreUnavailable(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFunc: func(context.Context, string) (userdomain.User, error) {
			return userdomain.User{}, &pgconn.PgError{Code: "08006"}
		},
	}
	svc, _ := newTestService(repo, &mockHasher{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "Secr3t!"})
	if !errors.Is(err, commonerrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthService_UnexpectedStoreError(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFunc: func(context.Context, string) (userdomain.User, error) {
			return userdomain.User{}, errors.New("syntax error")
		},
	}
	svc, _ := newTestService(repo, &mockHasher{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "Secr3t!"})
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Category() != commonerrors.CategoryInternal {
		t.Fatalf("expected internal domain error, got %v", err)
	}
}

func TestAuthService_TokenExpiry(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	ids := &sequenceIDs{}
	svc := NewAuthService(AuthServiceDeps{
		Repo:        newMemoryRepo(),
		Hasher:      &mockHasher{},
		IDGenerator: ids,
		Tokens:      token.NewJWTManager(constants.TestJWTSecret, time.Second, clk, ids),
		Clock:       clk,
		Log:         logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR"),
	}, AuthServiceConfig{})

	tok, _, err := svc.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(2 * time.Second)

	if _, err := svc.VerifyToken(tok); !errors.Is(err, commonerrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
