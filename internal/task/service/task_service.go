package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/resilience"
	"github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
	taskrepo "github.com/AlibekovAA/task-tracker/backend/internal/task/repository"
	"github.com/AlibekovAA/task-tracker/backend/internal/validation"
)

type TaskServiceDeps struct {
	Repo        taskrepo.Repository
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type TaskServiceConfig struct {
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

// TaskService manages a user's private task list. Every operation takes the
// authenticated user id; tasks owned by anyone else are reported as
// ErrTaskNotFound. Concurrent updates to one task are last-write-wins.
type TaskService struct {
	repo        taskrepo.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
	breaker     *resilience.CircuitBreaker
}

func NewTaskService(deps TaskServiceDeps, cfg TaskServiceConfig) *TaskService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &TaskService{
		repo:        deps.Repo,
		idGenerator: deps.IDGenerator,
		clock:       clk,
		log:         deps.Log,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  int32(cfg.CircuitBreakerThreshold),
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "task_store",
			ShouldTrip: db.IsTransient,
			Now:        clk.Now,
			Logger:     deps.Log,
		}),
	}
}

type CreateInput struct {
	Description string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Description *string
	Completed   *bool
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		tasks, err = s.repo.ListByOwner(ctx, userID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "list", userID, "", err)
	}

	record("list", "success")
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (domain.Task, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return domain.Task{}, s.fail(ctx, "get", userID, taskID, err)
	}

	record("get", "success")
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateInput) (domain.Task, error) {
	if err := validation.Validate(validation.SchemaTask, validation.Task{
		Description: input.Description,
	}).AsError(); err != nil {
		record("create", "invalid")
		return domain.Task{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "task_create_id_failed",
		}).Errorf("task create failed: id generation error: %v", err)
		record("create", "error")
		return domain.Task{}, db.AsStoreError("ID_GENERATION_ERROR", "failed to create task", err)
	}

	now := s.clock.Now().UTC()
	task := domain.Task{
		ID:          domain.ID(id),
		OwnerID:     userID,
		Description: strings.TrimSpace(input.Description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, task)
	})
	if err != nil {
		return domain.Task{}, s.fail(ctx, "create", userID, id, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"task_id": id,
		"action":  "task_created",
	}).Debug("task created")
	record("create", "success")
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, input UpdateInput) (domain.Task, error) {
	if err := validation.Validate(validation.SchemaTaskUpdate, validation.TaskUpdate{
		Description: input.Description,
		Completed:   input.Completed,
	}).AsError(); err != nil {
		record("update", "invalid")
		return domain.Task{}, err
	}

	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return domain.Task{}, s.fail(ctx, "update", userID, taskID, err)
	}

	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := s.save(ctx, userID, &task); err != nil {
		return domain.Task{}, s.fail(ctx, "update", userID, taskID, err)
	}

	record("update", "success")
	return task, nil
}

func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (domain.Task, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return domain.Task{}, s.fail(ctx, "toggle", userID, taskID, err)
	}

	task.Completed = !task.Completed
	if err := s.save(ctx, userID, &task); err != nil {
		return domain.Task{}, s.fail(ctx, "toggle", userID, taskID, err)
	}

	record("toggle", "success")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if !commoncrypto.IsValidID(taskID) {
		return s.fail(ctx, "delete", userID, taskID, taskrepo.ErrTaskNotFound)
	}

	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, userID, domain.ID(taskID))
	})
	if err != nil {
		return s.fail(ctx, "delete", userID, taskID, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"task_id": taskID,
		"action":  "task_deleted",
	}).Debug("task deleted")
	record("delete", "success")
	return nil
}

func (s *TaskService) Stats(ctx context.Context, userID string) (Stats, error) {
	var stats domain.Stats
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		stats, err = s.repo.CountByOwner(ctx, userID)
		return err
	})
	if err != nil {
		return Stats{}, s.fail(ctx, "stats", userID, "", err)
	}

	record("stats", "success")
	return Stats{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending(),
	}, nil
}

func (s *TaskService) find(ctx context.Context, userID, taskID string) (domain.Task, error) {
	if !commoncrypto.IsValidID(taskID) {
		return domain.Task{}, taskrepo.ErrTaskNotFound
	}

	var task domain.Task
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.repo.FindByID(ctx, userID, domain.ID(taskID))
		return err
	})
	return task, err
}

func (s *TaskService) save(ctx context.Context, userID string, task *domain.Task) error {
	now := s.clock.Now().UTC()
	if now.Before(task.UpdatedAt) {
		now = task.UpdatedAt
	}
	task.UpdatedAt = now

	return s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, userID, *task)
	})
}

func (s *TaskService) fail(ctx context.Context, operation, userID, taskID string, err error) error {
	if errors.Is(err, taskrepo.ErrTaskNotFound) {
		metrics.TaskNotFoundTotal.WithLabelValues(operation).Inc()
		record(operation, "not_found")
		return ErrTaskNotFound
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"task_id": taskID,
		"action":  "task_" + operation + "_failed",
	}).Errorf("task %s failed: %v", operation, err)
	record(operation, "error")
	return db.AsStoreError("DB_ERROR", "failed to "+operation+" task", err)
}

func record(operation, result string) {
	metrics.TaskOperationsTotal.WithLabelValues(operation, result).Inc()
}
