package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
)

type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func NewSQLiteRepository(sqlDB *sql.DB, queryTimeout time.Duration) *SQLiteRepository {
	return &SQLiteRepository{db: sqlDB, queryTimeout: queryTimeout}
}

func (r *SQLiteRepository) Create(ctx context.Context, task domain.Task) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tasks (id, owner_id, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(task.ID),
		task.OwnerID,
		task.Description,
		task.Completed,
		task.CreatedAt.UnixNano(),
		task.UpdatedAt.UnixNano(),
	)
	return db.HandleExecError(err, "create task", start)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, owner_id, description, completed, created_at, updated_at
		 FROM tasks
		 WHERE owner_id = ?
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list tasks", start)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list tasks", start)
	}

	db.MeasureQueryDuration("list tasks", start)
	return tasks, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, owner_id, description, completed, created_at, updated_at
		 FROM tasks WHERE id = ? AND owner_id = ?`,
		string(id),
		ownerID,
	)

	t, err := scanSQLiteTask(row)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "find task", start); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, ownerID string, task domain.Task) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE tasks SET description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		task.Description,
		task.Completed,
		task.UpdatedAt.UnixNano(),
		string(task.ID),
		ownerID,
	)
	if err := db.HandleExecError(err, "update task", start); err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, ownerID string, id domain.ID) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
		string(id),
		ownerID,
	)
	if err := db.HandleExecError(err, "delete task", start); err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) CountByOwner(ctx context.Context, ownerID string) (domain.Stats, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(completed), 0)
		 FROM tasks WHERE owner_id = ?`,
		ownerID,
	)

	var stats domain.Stats
	err := row.Scan(&stats.Total, &stats.Completed)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "count tasks", start); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(s scanner) (domain.Task, error) {
	var (
		t                  domain.Task
		createdAt, updated int64
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &createdAt, &updated); err != nil {
		return domain.Task{}, err
	}
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	t.UpdatedAt = time.Unix(0, updated).UTC()
	return t, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
