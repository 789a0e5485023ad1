package authsvc

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"bookwise/model"
	mailerrepo "bookwise/repository/mailer"
	userrepo "bookwise/repository/user"
	"bookwise/util/hash"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, u *model.User) error
	byEmailFn    func(ctx context.Context, email string) (*model.User, error)
	byIDFn       func(ctx context.Context, id string) (*model.User, error)
	touchFn      func(ctx context.Context, id string) error
	setStatusFn  func(ctx context.Context, id string, status model.AccountStatus) error
	hasRecordsFn func(ctx context.Context, id string) (bool, error)
	deleteFn     func(ctx context.Context, id string) error
}

var _ userrepo.Repo = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	return m.createFn(ctx, u)
}
func (m *mockUserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *mockUserRepo) ByID(ctx context.Context, id string) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockUserRepo) TouchActivity(ctx context.Context, id string) error {
	if m.touchFn == nil {
		return nil
	}
	return m.touchFn(ctx, id)
}
func (m *mockUserRepo) SetStatus(ctx context.Context, id string, status model.AccountStatus) error {
	return m.setStatusFn(ctx, id, status)
}
func (m *mockUserRepo) List(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error) {
	return nil, 0, nil
}
func (m *mockUserRepo) ListPending(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error) {
	return nil, 0, nil
}
func (m *mockUserRepo) HasBorrowRecords(ctx context.Context, id string) (bool, error) {
	return m.hasRecordsFn(ctx, id)
}
func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockUserRepo) CountApproved(ctx context.Context) (int, error) {
	return 0, nil
}

type mockMailer struct {
	mu   sync.Mutex
	sent []mailerrepo.SendReq
}

func (m *mockMailer) Send(req mailerrepo.SendReq) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return nil
}

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func validRegister() model.RegisterReq {
	return model.RegisterReq{
		FullName:       "Ada Lovelace",
		Email:          "Ada@Example.com",
		UniversityID:   "U-1001",
		UniversityCard: "https://cards.example.com/u-1001.png",
		Password:       "correct horse",
	}
}

func TestRegister_Success(t *testing.T) {
	var created *model.User
	ur := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return nil, nil },
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = "user-1"
			created = u
			return nil
		},
	}
	svc := New(ur, &mockMailer{}, "secret", "tmpl-1", testLog)

	u, token, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, model.AccountPending, created.Status)
	require.Equal(t, model.RoleUser, created.Role)
	require.True(t, hash.Check(created.PasswordHash, "correct horse"))
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(&mockUserRepo{}, nil, "secret", "", testLog)

	for name, req := range map[string]model.RegisterReq{
		"empty email":    {FullName: "Ada", Password: "long enough"},
		"empty name":     {Email: "a@b.com", Password: "long enough"},
		"short password": {FullName: "Ada", Email: "a@b.com", Password: "short"},
	} {
		_, _, err := svc.Register(context.Background(), req)
		require.Equalf(t, ErrBadInput, Code(err), "case %s", name)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	ur := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email}, nil
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	_, _, err := svc.Register(context.Background(), validRegister())
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_UniversityIDTakenViaConstraint(t *testing.T) {
	ur := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return nil, nil },
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_university_id_key",
			}
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	_, _, err := svc.Register(context.Background(), validRegister())
	require.Equal(t, ErrUniversityIDTaken, Code(err))
}

func TestRegister_StorageErrorStaysUncoded(t *testing.T) {
	ur := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return nil, nil },
		createFn: func(ctx context.Context, u *model.User) error {
			return context.DeadlineExceeded
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	_, _, err := svc.Register(context.Background(), validRegister())
	require.Error(t, err)
	require.Empty(t, Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed, err := hash.HashPassword("correct horse")
	require.NoError(t, err)

	touched := false
	ur := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "ada@example.com", email)
			return &model.User{ID: "user-1", Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
		touchFn: func(ctx context.Context, id string) error {
			touched = true
			return nil
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	u, token, err := svc.Login(context.Background(), model.LoginReq{
		Email: " Ada@Example.com ", Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "user-1", u.ID)
	require.True(t, touched)
}

func TestLogin_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	hashed, err := hash.HashPassword("correct horse")
	require.NoError(t, err)

	unknown := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return nil, nil },
	}
	known := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", PasswordHash: hashed}, nil
		},
	}

	_, _, errUnknown := New(unknown, nil, "secret", "", testLog).
		Login(context.Background(), model.LoginReq{Email: "x@y.com", Password: "whatever"})
	_, _, errWrong := New(known, nil, "secret", "", testLog).
		Login(context.Background(), model.LoginReq{Email: "x@y.com", Password: "wrong horse"})

	require.Equal(t, ErrInvalidCreds, Code(errUnknown))
	require.Equal(t, ErrInvalidCreds, Code(errWrong))
	require.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestProfile_OwnershipGate(t *testing.T) {
	ur := &mockUserRepo{
		byIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	_, err := svc.Profile(context.Background(), "user-1", "user-1", model.RoleUser)
	require.NoError(t, err)

	_, err = svc.Profile(context.Background(), "user-1", "user-2", model.RoleUser)
	require.Equal(t, ErrNotOwner, Code(err))

	_, err = svc.Profile(context.Background(), "user-1", "admin-9", model.RoleAdmin)
	require.NoError(t, err)
}

func TestApprove_NotFound(t *testing.T) {
	ur := &mockUserRepo{
		setStatusFn: func(ctx context.Context, id string, status model.AccountStatus) error {
			return sql.ErrNoRows
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	require.Equal(t, ErrUserNotFound, Code(svc.Approve(context.Background(), "missing")))
}

func TestDelete_BlockedByBorrowRecords(t *testing.T) {
	deleted := false
	ur := &mockUserRepo{
		hasRecordsFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := New(ur, nil, "secret", "", testLog)

	require.Equal(t, ErrHasBorrowRecords, Code(svc.Delete(context.Background(), "user-1")))
	require.False(t, deleted)
}

func TestDelete_Success(t *testing.T) {
	ur := &mockUserRepo{
		hasRecordsFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
		deleteFn:     func(ctx context.Context, id string) error { return nil },
	}
	svc := New(ur, nil, "secret", "", testLog)

	require.NoError(t, svc.Delete(context.Background(), "user-1"))
}
