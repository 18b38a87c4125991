package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
	taskrepo "github.com/AlibekovAA/task-tracker/backend/internal/task/repository"
)

const (
	alice = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	bob   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

type mockTaskRepo struct {
	createFunc       func(ctx context.Context, task domain.Task) error
	listByOwnerFunc  func(ctx context.Context, ownerID string) ([]domain.Task, error)
	findByIDFunc     func(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error)
	updateFunc       func(ctx context.Context, ownerID string, task domain.Task) error
	deleteFunc       func(ctx context.Context, ownerID string, id domain.ID) error
	countByOwnerFunc func(ctx context.Context, ownerID string) (domain.Stats, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task domain.Task) error {
	return m.createFunc(ctx, task)
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return m.listByOwnerFunc(ctx, ownerID)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error) {
	return m.findByIDFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) Update(ctx context.Context, ownerID string, task domain.Task) error {
	return m.updateFunc(ctx, ownerID, task)
}

func (m *mockTaskRepo) Delete(ctx context.Context, ownerID string, id domain.ID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) CountByOwner(ctx context.Context, ownerID string) (domain.Stats, error) {
	return m.countByOwnerFunc(ctx, ownerID)
}

// newMemoryRepo behaves like the SQL stores: owner-scoped lookups and
// created_at, id ordering.
func newMemoryRepo() *mockTaskRepo {
	var mu sync.Mutex
	tasks := map[domain.ID]domain.Task{}

	return &mockTaskRepo{
		createFunc: func(_ context.Context, task domain.Task) error {
			mu.Lock()
			defer mu.Unlock()
			tasks[task.ID] = task
			return nil
		},
		listByOwnerFunc: func(_ context.Context, ownerID string) ([]domain.Task, error) {
			mu.Lock()
			defer mu.Unlock()
			out := make([]domain.Task, 0)
			for _, t := range tasks {
				if t.OwnerID == ownerID {
					out = append(out, t)
				}
			}
			sort.Slice(out, func(i, j int) bool {
				if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
					return out[i].CreatedAt.Before(out[j].CreatedAt)
				}
				return out[i].ID < out[j].ID
			})
			return out, nil
		},
		findByIDFunc: func(_ context.Context, ownerID string, id domain.ID) (domain.Task, error) {
			mu.Lock()
			defer mu.Unlock()
			t, ok := tasks[id]
			if !ok || t.OwnerID != ownerID {
				return domain.Task{}, taskrepo.ErrTaskNotFound
			}
			return t, nil
		},
		updateFunc: func(_ context.Context, ownerID string, task domain.Task) error {
			mu.Lock()
			defer mu.Unlock()
			t, ok := tasks[task.ID]
			if !ok || t.OwnerID != ownerID {
				return taskrepo.ErrTaskNotFound
			}
			tasks[task.ID] = task
			return nil
		},
		deleteFunc: func(_ context.Context, ownerID string, id domain.ID) error {
			mu.Lock()
			defer mu.Unlock()
			t, ok := tasks[id]
			if !ok || t.OwnerID != ownerID {
				return taskrepo.ErrTaskNotFound
			}
			delete(tasks, id)
			return nil
		},
		countByOwnerFunc: func(_ context.Context, ownerID string) (domain.Stats, error) {
			mu.Lock()
			defer mu.Unlock()
			var s domain.Stats
			for _, t := range tasks {
				if t.OwnerID != ownerID {
					continue
				}
				s.Total++
				if t.Completed {
					s.Completed++
				}
			}
			return s, nil
		},
	}
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

func newTestService(repo taskrepo.Repository) (*TaskService, *clock.MockClock) {
	clk := clock.NewMockClock(testNow)
	svc := NewTaskService(TaskServiceDeps{
		Repo:        repo,
		IDGenerator: &sequenceIDs{},
		Clock:       clk,
		Log:         logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR"),
	}, TaskServiceConfig{})
	return svc, clk
}

func TestTaskService_CreateThenGet(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Description: "  Write report "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Description != "Write report" {
		t.Errorf("expected trimmed description, got %q", created.Description)
	}
	if created.Completed {
		t.Error("new task must not be completed")
	}
	if created.OwnerID != alice {
		t.Errorf("expected owner %s, got %s", alice, created.OwnerID)
	}

	got, err := svc.Get(ctx, alice, string(created.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, created)
	}
}

func TestTaskService_DescriptionLength(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "empty", length: 0, wantErr: true},
		{name: "limit", length: 250, wantErr: false},
		{name: "over limit", length: 251, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, CreateInput{Description: strings.Repeat("x", tt.length)})
			if tt.wantErr && !errors.Is(err, commonerrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTaskService_CrossUserAccessIsNotFound(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	task, err := svc.Create(ctx, alice, CreateInput{Description: "private"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := string(task.ID)

	if _, err := svc.Get(ctx, bob, id); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("get: expected ErrTaskNotFound, got %v", err)
	}

	desc := "mine now"
	if _, err := svc.Update(ctx, bob, id, UpdateInput{Description: &desc}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("update: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Toggle(ctx, bob, id); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("toggle: expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, bob, id); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("delete: expected ErrTaskNotFound, got %v", err)
	}

	list, err := svc.List(ctx, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob must not see alice's tasks, got %d", len(list))
	}

	got, err := svc.Get(ctx, alice, id)
	if err != nil {
		t.Fatalf("get own: %v", err)
	}
	if got.Description != "private" || got.Completed {
		t.Errorf("task modified by another user: %+v", got)
	}
}

func TestTaskService_DeleteTwice(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	task, err := svc.Create(ctx, alice, CreateInput{Description: "temp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, alice, string(task.ID)); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, alice, string(task.ID)); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_UpdateAndToggle(t *testing.T) {
	svc, clk := newTestService(newMemoryRepo())
	ctx := context.Background()

	task, err := svc.Create(ctx, alice, CreateInput{Description: "Write report"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clk.Advance(time.Minute)
	done := true
	updated, err := svc.Update(ctx, alice, string(task.ID), UpdateInput{Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Description != "Write report" {
		t.Errorf("unexpected task after update: %+v", updated)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Errorf("updated_at not bumped: %v -> %v", task.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("created_at must not change")
	}

	toggled, err := svc.Toggle(ctx, alice, string(task.ID))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Completed {
		t.Error("toggle should flip completed back to false")
	}

	if _, err := svc.Update(ctx, alice, string(task.ID), UpdateInput{}); !errors.Is(err, commonerrors.ErrValidation) {
		t.Errorf("empty update: expected validation error, got %v", err)
	}

	blank := "   "
	if _, err := svc.Update(ctx, alice, string(task.ID), UpdateInput{Description: &blank}); !errors.Is(err, commonerrors.ErrValidation) {
		t.Errorf("blank description: expected validation error, got %v", err)
	}
}

func TestTaskService_MalformedID(t *testing.T) {
	called := false
	repo := newMemoryRepo()
	find := repo.findByIDFunc
	repo.findByIDFunc = func(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error) {
		called = true
		return find(ctx, ownerID, id)
	}
	svc, _ := newTestService(repo)

	for _, id := range []string{"", "123", "not-a-uuid"} {
		if _, err := svc.Get(context.Background(), alice, id); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("id %q: expected ErrTaskNotFound, got %v", id, err)
		}
	}
	if called {
		t.Error("malformed ids must not reach the store")
	}
}

func TestTaskService_ListOrderAndStats(t *testing.T) {
	svc, clk := newTestService(newMemoryRepo())
	ctx := context.Background()

	for i, desc := range []string{"first", "second", "third"} {
		if i > 0 {
			clk.Advance(time.Second)
		}
		if _, err := svc.Create(ctx, alice, CreateInput{Description: desc}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tasks, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if tasks[i].Description != want {
			t.Errorf("position %d: expected %q, got %q", i, want, tasks[i].Description)
		}
	}

	if _, err := svc.Toggle(ctx, alice, string(tasks[0].ID)); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	stats, err := svc.Stats(ctx, alice)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 1 || stats.Pending != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTaskService_StoreTimeoutIsUnavailable(t *testing.T) {
	repo := newMemoryRepo()
	repo.listByOwnerFunc = func(context.Context, string) ([]domain.Task, error) {
		return nil, context.DeadlineExceeded
	}
	svc, _ := newTestService(repo)

	_, err := svc.List(context.Background(), alice)
	if !errors.Is(err, commonerrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
