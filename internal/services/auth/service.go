package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInsert             = errors.New("registration failed")
)

// UserDirectory is the persistent user store, keyed by email.
type UserDirectory interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, user models.User) (string, error)
}

type recorder interface {
	RecordLogin(result string)
	RecordRegistration(result string)
}

type Service struct {
	users UserDirectory
	log   zerolog.Logger
	m     recorder
}

func NewService(users UserDirectory, logger zerolog.Logger, m recorder) *Service {
	return &Service{
		users: users,
		log:   logger.With().Str("component", "AuthService").Logger(),
		m:     m,
	}
}

// Login matches the credentials verbatim. Passwords are stored in plain text.
func (s *Service) Login(ctx context.Context, email, password string) (models.SessionContext, error) {
	if email == "" || password == "" {
		s.m.RecordLogin("invalid")
		return models.SessionContext{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmailAndPassword(ctx, email, password)
	if errors.Is(err, models.ErrUserNotFound) {
		s.m.RecordLogin("invalid")
		return models.SessionContext{}, ErrInvalidCredentials
	}
	if err != nil {
		s.m.RecordLogin("error")
		s.log.Error().Err(err).Ctx(ctx).Msg("login lookup failed")
		return models.SessionContext{}, fmt.Errorf("find user: %w", err)
	}

	s.m.RecordLogin("ok")
	s.log.Info().Ctx(ctx).Str("user_id", user.ID).Msg("user logged in")
	return models.SessionContext{UserID: user.ID, Username: user.FirstName}, nil
}

// Register creates the account and returns the session of the new user.
// The existence check and the insert are not atomic; the store's unique index settles races.
func (s *Service) Register(ctx context.Context, data models.RegisterData) (models.SessionContext, error) {
	exists, err := s.users.ExistsByEmail(ctx, data.Email)
	if err != nil {
		s.m.RecordRegistration("error")
		s.log.Error().Err(err).Ctx(ctx).Msg("email existence check failed")
		return models.SessionContext{}, fmt.Errorf("%w: %w", ErrInsert, err)
	}
	if exists {
		s.m.RecordRegistration("duplicate")
		return models.SessionContext{}, ErrDuplicateEmail
	}

	id, err := s.users.Insert(ctx, models.User{
		FirstName:         data.FirstName,
		LastName:          data.LastName,
		Email:             data.Email,
		Password:          data.Password,
		TravelPreferences: data.TravelPreferences,
	})
	if errors.Is(err, models.ErrEmailTaken) {
		s.m.RecordRegistration("duplicate")
		return models.SessionContext{}, ErrDuplicateEmail
	}
	if err != nil {
		s.m.RecordRegistration("error")
		s.log.Error().Err(err).Ctx(ctx).Msg("user insert failed")
		return models.SessionContext{}, fmt.Errorf("%w: %w", ErrInsert, err)
	}

	s.m.RecordRegistration("ok")
	s.log.Info().Ctx(ctx).Str("user_id", id).Msg("user registered")
	return models.SessionContext{UserID: id, Username: data.FirstName}, nil
}
