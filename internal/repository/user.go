package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

const mysqlDuplicateEntry = 1062

var ErrInsert = errors.New("failed to insert user")

type errorRecorder interface {
	BusinessError(errorType, severity string)
	TechnicalError(errorType, severity string)
}

// UserRepository stores user accounts in a SQL database keyed by email.
type UserRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   errorRecorder
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger, m errorRecorder) *UserRepository {
	logger = logger.With().Str("component", "UserRepository").Logger()
	return &UserRepository{DB: db, log: logger, m: m}
}

// FindByEmailAndPassword returns models.ErrUserNotFound unless both values match a stored account exactly.
func (r *UserRepository) FindByEmailAndPassword(
	ctx context.Context,
	email, password string,
) (models.User, error) {
	start := time.Now()
	r.log.Debug().Ctx(ctx).Str("email", email).Msg("looking up user by credentials")

	var (
		id   int64
		user models.User
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, password, travel_preferences
		 FROM users WHERE email = ? AND password = ?`,
		email, password,
	).Scan(&id, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.TravelPreferences)
	dur := time.Since(start)

	if errors.Is(err, sql.ErrNoRows) {
		r.log.Info().Ctx(ctx).
			Str("email", email).
			Dur("duration", dur).
			Msg("no user matches credentials")
		r.m.BusinessError("invalid_credentials", "info")
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("email", email).
			Msg("failed to query user")
		r.m.TechnicalError("db_query_error", "critical")
		return models.User{}, err
	}

	user.ID = strconv.FormatInt(id, 10)
	r.log.Info().Ctx(ctx).
		Str("user_id", user.ID).
		Dur("duration", dur).
		Msg("user found")
	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	start := time.Now()

	var cnt int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email,
	).Scan(&cnt)
	dur := time.Since(start)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("email", email).
			Msg("failed to query user count")
		r.m.TechnicalError("db_query_error", "critical")
		return false, err
	}

	r.log.Debug().Ctx(ctx).
		Str("email", email).
		Bool("exists", cnt > 0).
		Dur("duration", dur).
		Msg("checked email existence")
	return cnt > 0, nil
}

// Insert stores a new account and returns its generated identifier.
// A unique index violation on email is reported as models.ErrEmailTaken, every other failure as ErrInsert.
func (r *UserRepository) Insert(ctx context.Context, user models.User) (string, error) {
	start := time.Now()
	r.log.Info().Ctx(ctx).
		Str("email", user.Email).
		Msg("inserting new user record")

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users
		    (first_name, last_name, email, password, travel_preferences, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, user.Password, user.TravelPreferences, time.Now().UTC(),
	)
	dur := time.Since(start)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warn().Ctx(ctx).
				Str("email", user.Email).
				Msg("email already registered, abort insert")
			r.m.BusinessError("email_taken", "warning")
			return "", fmt.Errorf("%w: %w", models.ErrEmailTaken, err)
		}
		r.log.Error().Err(err).Ctx(ctx).
			Dur("duration", dur).
			Msg("failed to insert user")
		r.m.TechnicalError("db_insert_error", "critical")
		return "", fmt.Errorf("%w: %w", ErrInsert, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Msg("failed to read generated user id")
		r.m.TechnicalError("db_last_insert_id_error", "critical")
		return "", fmt.Errorf("%w: %w", ErrInsert, err)
	}

	userID := strconv.FormatInt(id, 10)
	r.log.Info().Ctx(ctx).
		Str("user_id", userID).
		Dur("duration", dur).
		Msg("user created successfully")
	return userID, nil
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return false
}
