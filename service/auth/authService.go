package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"bookwise/model"
	mailerrepo "bookwise/repository/mailer"
	userrepo "bookwise/repository/user"
	"bookwise/util/hash"
	jwtutil "bookwise/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken        ErrCode = "EMAIL_TAKEN"
	ErrUniversityIDTaken ErrCode = "UNIVERSITY_ID_TAKEN"
	ErrBadInput          ErrCode = "BAD_INPUT"
	ErrInvalidCreds      ErrCode = "INVALID_CREDENTIALS"
	ErrUserNotFound      ErrCode = "USER_NOT_FOUND"
	ErrHasBorrowRecords  ErrCode = "HAS_BORROW_RECORDS"
	ErrNotOwner          ErrCode = "NOT_OWNER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const tokenTTLHours = 24

type ListedUser = userrepo.ListedUser

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Profile(ctx context.Context, userID, actorID string, role model.Role) (*model.User, error)

	Users(ctx context.Context, page, limit int) ([]ListedUser, int, error)
	PendingUsers(ctx context.Context, page, limit int) ([]ListedUser, int, error)
	Approve(ctx context.Context, userID string) error
	Reject(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

type service struct {
	ur       userrepo.Repo
	mailer   mailerrepo.Repo
	secret   string
	template string
	log      *slog.Logger
}

func New(ur userrepo.Repo, mailer mailerrepo.Repo, secret, templateID string, log *slog.Logger) Service {
	return &service{ur: ur, mailer: mailer, secret: secret, template: templateID, log: log}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.FullName) == "" || len(req.Password) < 8 {
		return nil, "", makeErr(ErrBadInput)
	}

	existing, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          email,
		UniversityID:   strings.TrimSpace(req.UniversityID),
		UniversityCard: req.UniversityCard,
		PasswordHash:   hashed,
		Status:         model.AccountPending,
		Role:           model.RoleUser,
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}

	s.sendAsync(u, "Welcome to BookWise",
		"Your account request was received and is awaiting approval.")
	return u, token, nil
}

// mapDuplicateErr converts pg unique violations into caller-facing codes.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		if strings.Contains(cn, "users_university_id") || strings.Contains(msg, "university_id") {
			return makeErr(ErrUniversityIDTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	// Same failure for unknown user and wrong password.
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}

	if err := s.ur.TouchActivity(ctx, u.ID); err != nil {
		s.log.Warn("last-activity touch failed", "user_id", u.ID, "err", err)
	}
	return u, token, nil
}

func (s *service) Profile(ctx context.Context, userID, actorID string, role model.Role) (*model.User, error) {
	if userID != actorID && role != model.RoleAdmin {
		return nil, makeErr(ErrNotOwner)
	}
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return u, nil
}

func (s *service) Users(ctx context.Context, page, limit int) ([]ListedUser, int, error) {
	return s.ur.List(ctx, page, limit)
}

func (s *service) PendingUsers(ctx context.Context, page, limit int) ([]ListedUser, int, error) {
	return s.ur.ListPending(ctx, page, limit)
}

func (s *service) Approve(ctx context.Context, userID string) error {
	if err := s.setStatus(ctx, userID, model.AccountApproved); err != nil {
		return err
	}
	if u, err := s.ur.ByID(ctx, userID); err == nil && u != nil {
		s.sendAsync(u, "Your BookWise account is approved",
			"You can now browse the catalog and request books.")
	}
	return nil
}

func (s *service) Reject(ctx context.Context, userID string) error {
	return s.setStatus(ctx, userID, model.AccountRejected)
}

func (s *service) setStatus(ctx context.Context, userID string, status model.AccountStatus) error {
	err := s.ur.SetStatus(ctx, userID, status)
	if err != nil {
		if isNoRows(err) {
			return makeErr(ErrUserNotFound)
		}
		return err
	}
	return nil
}

// Delete removes a user outright. Refused while any borrow records
// reference them, active or not.
func (s *service) Delete(ctx context.Context, userID string) error {
	has, err := s.ur.HasBorrowRecords(ctx, userID)
	if err != nil {
		return err
	}
	if has {
		return makeErr(ErrHasBorrowRecords)
	}
	if err := s.ur.Delete(ctx, userID); err != nil {
		if isNoRows(err) {
			return makeErr(ErrUserNotFound)
		}
		return err
	}
	return nil
}

// sendAsync fires a notification without blocking the request. Delivery
// failures are logged and dropped.
func (s *service) sendAsync(u *model.User, subject, message string) {
	if s.mailer == nil {
		return
	}
	req := mailerrepo.SendReq{
		TemplateID: s.template,
		ToName:     u.FullName,
		ToEmail:    u.Email,
		Subject:    subject,
		Message:    message,
	}
	go func() {
		if err := s.mailer.Send(req); err != nil {
			s.log.Warn("notification email failed", "user_id", u.ID, "err", err)
		}
	}()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
