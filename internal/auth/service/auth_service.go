package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/auth/token"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/dto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/mapper"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/resilience"
	userdomain "github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/task-tracker/backend/internal/user/repository"
	"github.com/AlibekovAA/task-tracker/backend/internal/validation"
)

// dummyPassword is hashed once and compared against on unknown emails so a
// failed login costs the same bcrypt work whether or not the account exists.
const dummyPassword = "dummy-password-1"

type AuthServiceDeps struct {
	Repo        userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Tokens      token.Manager
	Clock       clock.Clock
	Log         *logger.Logger
}

type AuthServiceConfig struct {
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      token.Manager
	clock       clock.Clock
	log         *logger.Logger
	breaker     *resilience.CircuitBreaker

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(deps AuthServiceDeps, cfg AuthServiceConfig) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &AuthService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		tokens:      deps.Tokens,
		clock:       clk,
		log:         deps.Log,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  int32(cfg.CircuitBreakerThreshold),
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "auth_store",
			ShouldTrip: db.IsTransient,
			Now:        clk.Now,
			Logger:     deps.Log,
		}),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      dto.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := validation.NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "register_attempt",
	}).Debug("register attempt")

	if err := validation.Validate(validation.SchemaSignup, validation.Signup{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}).AsError(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_validation_failed",
		}).Warn("register validation failed")
		recordAttempt("register", "invalid")
		return AuthResult{}, err
	}

	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		_, err := s.repo.FindByEmail(ctx, email)
		return err
	})
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_email_exists",
		}).Warn("register failed: email already registered")
		recordAttempt("register", "duplicate")
		return AuthResult{}, ErrDuplicateEmail
	case !errors.Is(err, userrepo.ErrUserNotFound):
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_lookup_failed",
		}).Errorf("register failed: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, storeError("DB_ERROR", "failed to check email", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, newInternalError("HASH_ERROR", "failed to process password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, newInternalError("ID_GENERATION_ERROR", "failed to create user", err)
	}

	now := s.clock.Now().UTC()
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "register_email_exists",
			}).Warn("register failed: email already registered")
			recordAttempt("register", "duplicate")
			return AuthResult{}, ErrDuplicateEmail
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, storeError("DB_ERROR", "failed to create user", err)
	}

	result, err := s.authResult(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("register success")
	recordAttempt("register", "success")

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := validation.NormalizeEmail(input.Email)

	if err := validation.Validate(validation.SchemaLogin, validation.Login{
		Email:    input.Email,
		Password: input.Password,
	}).AsError(); err != nil {
		recordAttempt("login", "invalid")
		return AuthResult{}, err
	}

	var user userdomain.User
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyPasswordHash(), input.Password)
			s.log.WithFields(ctx, logger.Fields{
				"action": "login_failed",
			}).Warn("login failed: invalid credentials")
			recordAttempt("login", "invalid_credentials")
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordAttempt("login", "error")
		return AuthResult{}, storeError("DB_ERROR", "failed to fetch user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if !errors.Is(err, commoncrypto.ErrPasswordMismatch) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(user.ID),
				"action":  "login_compare_failed",
			}).Errorf("login password comparison error: %v", err)
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_failed",
		}).Warn("login failed: invalid credentials")
		recordAttempt("login", "invalid_credentials")
		return AuthResult{}, ErrInvalidCredentials
	}

	result, err := s.authResult(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		recordAttempt("login", "error")
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")
	recordAttempt("login", "success")

	return result, nil
}

func (s *AuthService) IssueToken(userID string) (string, time.Time, error) {
	tok, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return "", time.Time{}, newInternalError("TOKEN_ISSUE_ERROR", "failed to issue token", err)
	}
	return tok, expiresAt, nil
}

// VerifyToken satisfies jwtverify.TokenVerifier.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	return s.tokens.Verify(tokenString)
}

func (s *AuthService) authResult(user userdomain.User) (AuthResult, error) {
	tok, expiresAt, err := s.IssueToken(string(user.ID))
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token:     tok,
		ExpiresAt: expiresAt,
		User:      mapper.UserToDTO(user),
	}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Errorf("failed to prepare dummy password hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
