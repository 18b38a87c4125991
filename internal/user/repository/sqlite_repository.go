package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	"github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
)

// SQLiteRepository keeps timestamps as unix nanoseconds; the email column is
// declared COLLATE NOCASE.
type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func NewSQLiteRepository(sqlDB *sql.DB, queryTimeout time.Duration) *SQLiteRepository {
	return &SQLiteRepository{db: sqlDB, queryTimeout: queryTimeout}
}

func (r *SQLiteRepository) Create(ctx context.Context, user domain.User) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(user.ID),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UnixNano(),
		user.UpdatedAt.UnixNano(),
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", start)
		return ErrEmailAlreadyExists
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = ? COLLATE NOCASE`,
		email,
	)
	user, err := scanSQLiteUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by email", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`,
		string(id),
	)
	user, err := scanSQLiteUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, user domain.User) error {
	ctx, cancel := db.WithQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt.UnixNano(),
		string(user.ID),
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("update user", start)
		return ErrEmailAlreadyExists
	}
	if err := db.HandleExecError(err, "update user", start); err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanSQLiteUser(row *sql.Row) (domain.User, error) {
	var (
		user               domain.User
		createdAt, updated int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &createdAt, &updated); err != nil {
		return domain.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	user.UpdatedAt = time.Unix(0, updated).UTC()
	return user, nil
}
