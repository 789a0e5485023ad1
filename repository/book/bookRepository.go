package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookwise/model"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

var pg = goqu.Dialect("postgres")

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	Create(ctx context.Context, b *model.Book) error
	UpdateMeta(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Recent(ctx context.Context, limit int) ([]model.Book, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, spec model.SearchSpec) ([]model.Book, int, error)

	// AdjustAvailable applies a relative delta to available_copies inside tx.
	// The statement itself refuses to move the counter outside
	// [0, total_copies]; applied=false means the guard rejected the delta.
	AdjustAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, delta int) (applied bool, err error)

	SetCapacity(ctx context.Context, tx *sqlx.Tx, bookID string, total, available int) error
	CountActiveLoans(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.AvailableCopies = b.TotalCopies
	const q = `
		INSERT INTO books (id, title, author, genre, rating, total_copies, available_copies,
			description, cover_color, cover_url, video_url, summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`
	return r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.Genre, b.Rating, b.TotalCopies, b.AvailableCopies,
		b.Description, b.CoverColor, b.CoverURL, b.VideoURL, b.Summary,
	).Scan(&b.CreatedAt)
}

// UpdateMeta updates descriptive fields only. Copy counts go through
// AdjustAvailable / SetCapacity.
func (r *repo) UpdateMeta(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title=$2, author=$3, genre=$4, rating=$5, description=$6,
			cover_color=$7, cover_url=$8, video_url=$9, summary=$10
		WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Genre, b.Rating, b.Description,
		b.CoverColor, b.CoverURL, b.VideoURL, b.Summary)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	err := r.db.GetContext(ctx, &b, `SELECT * FROM books WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	var out []model.Book
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM books ORDER BY created_at DESC`)
	return out, err
}

func (r *repo) Recent(ctx context.Context, limit int) ([]model.Book, error) {
	var out []model.Book
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM books ORDER BY created_at DESC LIMIT $1`, limit)
	return out, err
}

func (r *repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books`)
	return n, err
}

// Search composes the catalog query: a fuzzy match across
// title/author/genre, with the filter choosing ordering and extra
// constraints. goqu builds the conditional parts so no fragment strings
// leave this package.
func (r *repo) Search(ctx context.Context, spec model.SearchSpec) ([]model.Book, int, error) {
	ds := pg.From("books")

	if q := spec.Query; q != "" {
		pat := "%" + q + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("title").ILike(pat),
			goqu.I("author").ILike(pat),
			goqu.I("genre").ILike(pat),
		))
	}

	switch spec.Filter {
	case model.FilterAuthor:
		ds = ds.Order(goqu.I("author").Asc(), goqu.I("title").Asc())
	case model.FilterGenre:
		ds = ds.Order(goqu.I("genre").Asc(), goqu.I("author").Asc(), goqu.I("title").Asc())
	case model.FilterRating:
		ds = ds.Order(goqu.I("rating").Desc(), goqu.I("title").Asc())
	case model.FilterAvailability:
		ds = ds.Where(goqu.I("available_copies").Gt(0)).
			Order(goqu.I("available_copies").Desc(), goqu.I("title").Asc())
	default:
		ds = ds.Order(goqu.I("title").Asc())
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	offset := (spec.Page - 1) * spec.Limit
	pageSQL, pageArgs, err := ds.Select(goqu.Star()).
		Limit(uint(spec.Limit)).Offset(uint(offset)).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []model.Book
	if err := r.db.SelectContext(ctx, &out, pageSQL, pageArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) AdjustAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, delta int) (bool, error) {
	// Relative adjustment executed by the database; the WHERE clause is the
	// underflow/overflow guard required on available_copies.
	const q = `
		UPDATE books
		SET available_copies = available_copies + $2
		WHERE id = $1
		AND available_copies + $2 >= 0
		AND available_copies + $2 <= total_copies`
	res, err := tx.ExecContext(ctx, q, bookID, delta)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *repo) SetCapacity(ctx context.Context, tx *sqlx.Tx, bookID string, total, available int) error {
	const q = `
		UPDATE books
		SET total_copies = $2, available_copies = $3
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, bookID, total, available)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) CountActiveLoans(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM borrow_records
		WHERE book_id = $1
		AND status IN ('PENDING','BORROWED')`
	var n int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&n)
	return n, err
}
