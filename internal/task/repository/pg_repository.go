package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
)

type PgRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewPgRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *PgRepository {
	return &PgRepository{pool: pool, queryTimeout: queryTimeout}
}

func (r *PgRepository) Create(ctx context.Context, task domain.Task) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO tasks (id, owner_id, description, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(task.ID),
		task.OwnerID,
		task.Description,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return db.HandleExecError(err, "create task", start)
}

func (r *PgRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, owner_id, description, completed, created_at, updated_at
		 FROM tasks
		 WHERE owner_id = $1
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list tasks", start)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
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

func (r *PgRepository) FindByID(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, owner_id, description, completed, created_at, updated_at
		 FROM tasks WHERE id = $1 AND owner_id = $2`,
		string(id),
		ownerID,
	)

	var t domain.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "find task", start); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *PgRepository) Update(ctx context.Context, ownerID string, task domain.Task) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE tasks SET description = $3, completed = $4, updated_at = $5
		 WHERE id = $1 AND owner_id = $2`,
		string(task.ID),
		ownerID,
		task.Description,
		task.Completed,
		task.UpdatedAt,
	)
	if err := db.HandleExecError(err, "update task", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, ownerID string, id domain.ID) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
		string(id),
		ownerID,
	)
	if err := db.HandleExecError(err, "delete task", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *PgRepository) CountByOwner(ctx context.Context, ownerID string) (domain.Stats, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		 FROM tasks WHERE owner_id = $1`,
		ownerID,
	)

	var stats domain.Stats
	err := row.Scan(&stats.Total, &stats.Completed)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "count tasks", start); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
