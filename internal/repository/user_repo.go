package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"simpletodos/internal/model"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts the user and its emails in one transaction.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, password_hash, created_at) VALUES ($1, $2, $3)`,
		u.ID, u.PasswordHash, u.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	for i, e := range u.Emails {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_emails (user_id, address, position) VALUES ($1, $2, $3)`,
			u.ID, e.Address, i,
		)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("insert email: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FindByEmail returns the user owning address.
func (r *UserRepository) FindByEmail(ctx context.Context, address string) (*model.User, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT user_id FROM user_emails WHERE address = $1`, address).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find email: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, password_hash, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT address FROM user_emails WHERE user_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	u.Emails = []model.Email{}
	for rows.Next() {
		var e model.Email
		if err := rows.Scan(&e.Address); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		u.Emails = append(u.Emails, e)
	}
	return &u, rows.Err()
}
