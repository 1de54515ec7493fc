package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
)

const usersTable = "users"

var userColumns = []string{
	"id", "name", "age", "college_year", "email",
	"otp", "verified", "questionnaire", "created_at", "updated_at",
}

// UserRepo is the SQL-backed user store.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	db.logger.Debug().Msg("creating user repository")
	return &UserRepo{db: db}
}

// Create inserts a new user. A taken email (or id) yields
// domain.ErrConstraintViolation.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			u.UserID, u.Name, u.Age, u.CollegeYear, u.Email,
			nullString(u.OTP), u.Verified, nullString(u.Questionnaire),
			u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrConstraintViolation)
		}
		log.Err(err).Str("func", "*UserRepo.Create").Msg("error inserting user")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.selectOne(ctx, sq.Eq{"id": userID})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return u, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.selectOne(ctx, sq.Eq{"email": email})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
	}
	return u, err
}

// Update sets the given columns on an existing user and bumps updated_at.
// Zero affected rows means the user is gone.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	log := logger.FromContext(ctx)

	if err := domain.CheckUpdate(updates); err != nil {
		return err
	}
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[domain.FieldUpdatedAt] = time.Now().UTC()

	query, args, err := r.db.builder.Update(usersTable).
		SetMap(fields).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*UserRepo.Update").Msg("error updating user")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) selectOne(ctx context.Context, where sq.Eq) (*domain.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var (
		u            domain.User
		otp, answers sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.UserID, &u.Name, &u.Age, &u.CollegeYear, &u.Email,
		&otp, &u.Verified, &answers, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Err(err).Str("func", "*UserRepo.selectOne").Msg("error scanning user")
		}
		return nil, err
	}
	if otp.Valid {
		u.OTP = &otp.String
	}
	if answers.Valid {
		u.Questionnaire = &answers.String
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
