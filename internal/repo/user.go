package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Riwi-io-Medellin/SQL/internal/metrics"
	"github.com/Riwi-io-Medellin/SQL/internal/models"
)

// ErrUserNotFound is returned by Update and Delete when no row has the id.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, role, created_at, updated_at`

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// withConn acquires a dedicated connection for fn and releases it on every
// exit path, including errors and panics inside fn.
func (r *UserRepo) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

// ==========================
// List Users
// ==========================

// List returns every user ordered by id ascending. An empty table yields an
// empty, non-nil slice.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := metrics.ObserveDB("users.list", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			rows, err := conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var u models.User
				if err := scanUser(rows, &u); err != nil {
					return err
				}
				users = append(users, u)
			}
			return rows.Err()
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ==========================
// Create User
// ==========================

// Create inserts a user. Both timestamps come from the same NOW() so a fresh
// record has created_at == updated_at.
func (r *UserRepo) Create(ctx context.Context, username, role string) (*models.User, error) {
	query := `
		INSERT INTO users (username, role, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING ` + userColumns

	user := &models.User{}
	err := metrics.ObserveDB("users.create", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			return scanUser(conn.QueryRowContext(ctx, query, username, role), user)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ==========================
// Update User
// ==========================

// Update rewrites username and role and refreshes updated_at, which never
// moves backwards.
func (r *UserRepo) Update(ctx context.Context, id int64, username, role string) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $1, role = $2, updated_at = GREATEST(NOW(), updated_at)
		WHERE id = $3
		RETURNING ` + userColumns

	user := &models.User{}
	found := true
	err := metrics.ObserveDB("users.update", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			err := scanUser(conn.QueryRowContext(ctx, query, username, role, id), user)
			if errors.Is(err, sql.ErrNoRows) {
				found = false
				return nil
			}
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ==========================
// Delete User
// ==========================
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := metrics.ObserveDB("users.delete", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			result, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
			if err != nil {
				return err
			}
			affected, err = result.RowsAffected()
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ==========================
// Bulk Create
// ==========================

// CreateMany inserts all users in one transaction on one connection and
// returns how many were created. Nothing is kept if any insert fails.
func (r *UserRepo) CreateMany(ctx context.Context, users []models.NewUser) (int, error) {
	created := 0
	err := metrics.ObserveDB("users.create_many", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			tx, err := conn.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			defer tx.Rollback()

			stmt, err := tx.PrepareContext(ctx,
				`INSERT INTO users (username, role, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, u := range users {
				if _, err := stmt.ExecContext(ctx, u.Username, u.Role); err != nil {
					return err
				}
				created++
			}
			return tx.Commit()
		})
	})
	if err != nil {
		return 0, fmt.Errorf("create users: %w", err)
	}
	return created, nil
}

// Ping checks that a connection can be acquired and answers.
func (r *UserRepo) Ping(ctx context.Context) error {
	return metrics.ObserveDB("ping", func() error {
		return r.withConn(ctx, func(conn *sql.Conn) error {
			return conn.PingContext(ctx)
		})
	})
}
