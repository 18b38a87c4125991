package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/dto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/mapper"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/resilience"
	"github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/task-tracker/backend/internal/user/repository"
	"github.com/AlibekovAA/task-tracker/backend/internal/validation"
)

type ProfileServiceDeps struct {
	Repo   userrepo.Repository
	Hasher commoncrypto.PasswordHasher
	Clock  clock.Clock
	Log    *logger.Logger
}

type ProfileServiceConfig struct {
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type ProfileService struct {
	repo    userrepo.Repository
	hasher  commoncrypto.PasswordHasher
	clock   clock.Clock
	log     *logger.Logger
	breaker *resilience.CircuitBreaker
}

func NewProfileService(deps ProfileServiceDeps, cfg ProfileServiceConfig) *ProfileService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &ProfileService{
		repo:   deps.Repo,
		hasher: deps.Hasher,
		clock:  clk,
		log:    deps.Log,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  int32(cfg.CircuitBreakerThreshold),
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "profile_store",
			ShouldTrip: db.IsTransient,
			Now:        clk.Now,
			Logger:     deps.Log,
		}),
	}
}

// UpdateInput carries a partial profile change; nil fields are kept.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (dto.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return dto.User{}, err
	}
	return mapper.UserToDTO(user), nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (dto.User, error) {
	if err := validation.Validate(validation.SchemaProfile, validation.Profile{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}).AsError(); err != nil {
		return dto.User{}, err
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return dto.User{}, err
	}

	var changed []string

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
		changed = append(changed, "name")
	}

	if input.Email != nil {
		email := validation.NormalizeEmail(*input.Email)
		if email != validation.NormalizeEmail(user.Email) {
			if err := s.ensureEmailFree(ctx, user.ID, email); err != nil {
				return dto.User{}, err
			}
		}
		user.Email = email
		changed = append(changed, "email")
	}

	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "profile_hash_failed",
			}).Errorf("profile update failed: password hash error: %v", err)
			return dto.User{}, db.AsStoreError("HASH_ERROR", "failed to process password", err)
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	now := s.clock.Now().UTC()
	if now.After(user.UpdatedAt) {
		user.UpdatedAt = now
	}

	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, userrepo.ErrEmailAlreadyExists):
			return dto.User{}, userdomain.ErrDuplicateEmail
		case errors.Is(err, userrepo.ErrUserNotFound):
			return dto.User{}, userdomain.ErrAccountNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "profile_update_failed",
		}).Errorf("profile update failed: %v", err)
		return dto.User{}, db.AsStoreError("DB_ERROR", "failed to update profile", err)
	}

	for _, field := range changed {
		metrics.ProfileUpdatesTotal.WithLabelValues(field).Inc()
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"fields":  strings.Join(changed, ","),
		"action":  "profile_updated",
	}).Info("profile updated")

	return mapper.UserToDTO(user), nil
}

func (s *ProfileService) load(ctx context.Context, userID string) (userdomain.User, error) {
	var user userdomain.User
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByID(ctx, userdomain.ID(userID))
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "profile_account_missing",
			}).Warn("token names a user that no longer exists")
			return userdomain.User{}, userdomain.ErrAccountNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "profile_load_failed",
		}).Errorf("profile load failed: %v", err)
		return userdomain.User{}, db.AsStoreError("DB_ERROR", "failed to load profile", err)
	}
	return user, nil
}

func (s *ProfileService) ensureEmailFree(ctx context.Context, self userdomain.ID, email string) error {
	var existing userdomain.User
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		existing, err = s.repo.FindByEmail(ctx, email)
		return err
	})
	switch {
	case errors.Is(err, userrepo.ErrUserNotFound):
		return nil
	case err != nil:
		return db.AsStoreError("DB_ERROR", "failed to check email", err)
	case existing.ID != self:
		return userdomain.ErrDuplicateEmail
	default:
		return nil
	}
}
