package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookwise/model"
)

// ListedUser is the admin users-table shape: a user plus how many borrow
// records reference them.
type ListedUser struct {
	ID             string              `json:"id" db:"id"`
	FullName       string              `json:"full_name" db:"full_name"`
	Email          string              `json:"email" db:"email"`
	UniversityID   string              `json:"university_id" db:"university_id"`
	UniversityCard string              `json:"university_card" db:"university_card"`
	Status         model.AccountStatus `json:"status" db:"status"`
	Role           model.Role          `json:"role" db:"role"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	BooksBorrowed  int                 `json:"books_borrowed" db:"books_borrowed"`
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	TouchActivity(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status model.AccountStatus) error
	List(ctx context.Context, page, limit int) ([]ListedUser, int, error)
	ListPending(ctx context.Context, page, limit int) ([]ListedUser, int, error)
	CountApproved(ctx context.Context) (int, error)
	HasBorrowRecords(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO users (id, full_name, email, university_id, university_card, password_hash, status, role)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, last_activity_at`
	return r.db.QueryRowContext(ctx, q,
		u.ID, u.FullName, u.Email, u.UniversityID, u.UniversityCard,
		u.PasswordHash, u.Status, u.Role,
	).Scan(&u.CreatedAt, &u.LastActivityAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT * FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) ByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) TouchActivity(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_activity_at = NOW() WHERE id=$1`, id)
	return err
}

func (r *repo) SetStatus(ctx context.Context, id string, status model.AccountStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context, page, limit int) ([]ListedUser, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}

	const q = `
		SELECT u.id, u.full_name, u.email, u.university_id, u.university_card,
			u.status, u.role, u.created_at,
			COUNT(r.id)::INT AS books_borrowed
		FROM users u
		LEFT JOIN borrow_records r ON r.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`
	var out []ListedUser
	if err := r.db.SelectContext(ctx, &out, q, limit, (page-1)*limit); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) ListPending(ctx context.Context, page, limit int) ([]ListedUser, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE status='PENDING'`); err != nil {
		return nil, 0, err
	}

	const q = `
		SELECT id, full_name, email, university_id, university_card,
			status, role, created_at, 0 AS books_borrowed
		FROM users
		WHERE status='PENDING'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	var out []ListedUser
	if err := r.db.SelectContext(ctx, &out, q, limit, (page-1)*limit); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) CountApproved(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE status = 'APPROVED'`)
	return n, err
}

func (r *repo) HasBorrowRecords(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM borrow_records WHERE user_id=$1)`, id)
	return exists, err
}

func (r *repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
