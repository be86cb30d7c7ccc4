package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
	authService "github.com/Nazarious-ucu/travel-planner-api/internal/services/auth"
)

const (
	DashboardPath = "/dashboard"

	msgInvalidCredentials = "Invalid email or password."
	msgDuplicateEmail     = "Email already exists."
	msgRegisterFailed     = "An error occurred while registering."
	msgLoginFailed        = "An error occurred while logging in."
	msgMissingFields      = "Missing required fields"
)

type authenticator interface {
	Login(ctx context.Context, email, password string) (models.SessionContext, error)
	Register(ctx context.Context, data models.RegisterData) (models.SessionContext, error)
}

type sessionStarter interface {
	Start(c *gin.Context, sess models.SessionContext) error
}

type Handler struct {
	Service  authenticator
	Sessions sessionStarter
	log      zerolog.Logger
}

func NewHandler(svc authenticator, sessions sessionStarter, logger zerolog.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Sessions: sessions,
		log:      logger.With().Str("component", "AuthHandler").Logger(),
	}
}

// LoginForm
// @Summary Login page
// @Tags auth
// @Produce json
// @Success 200 {object} models.View
// @Router /login [get]
func (h *Handler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, models.View{View: models.ViewLogin})
}

// Login
// @Summary Log in
// @Description Authenticates by email and password and starts a session.
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email address"
// @Param password formData string true "Password"
// @Success 303
// @Failure 200 {object} models.View
// @Failure 500 {object} models.View
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var form models.LoginData
	if err := c.ShouldBind(&form); err != nil {
		h.log.Debug().Err(err).Msg("failed to bind login form")
	}

	sess, err := h.Service.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			c.JSON(http.StatusOK, models.View{View: models.ViewLogin, Error: msgInvalidCredentials})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, models.View{View: models.ViewLogin, Error: msgLoginFailed})
		return
	}

	if err := h.Sessions.Start(c, sess); err != nil {
		h.log.Error().Err(err).Msg("failed to start session after login")
		c.JSON(http.StatusInternalServerError, models.View{View: models.ViewLogin, Error: msgLoginFailed})
		return
	}

	c.Redirect(http.StatusSeeOther, DashboardPath)
}

// RegisterForm
// @Summary Registration page
// @Tags auth
// @Produce json
// @Success 200 {object} models.View
// @Router /register [get]
func (h *Handler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, models.View{View: models.ViewRegister})
}

// Register
// @Summary Register
// @Description Creates an account and starts a session for it.
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param email formData string true "Email address"
// @Param password formData string true "Password"
// @Param travelPreferences formData string false "Travel preferences"
// @Success 303
// @Failure 200 {object} models.View
// @Failure 400 {object} models.View
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var form models.RegisterData
	if err := c.ShouldBind(&form); err != nil {
		h.log.Debug().Err(err).Msg("failed to bind registration form")
		c.JSON(http.StatusBadRequest, models.View{View: models.ViewRegister, Error: msgMissingFields})
		return
	}

	sess, err := h.Service.Register(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, authService.ErrDuplicateEmail) {
			c.JSON(http.StatusOK, models.View{View: models.ViewRegister, Error: msgDuplicateEmail})
			return
		}
		h.log.Error().Err(err).Msg("registration failed")
		c.JSON(http.StatusOK, models.View{View: models.ViewRegister, Error: msgRegisterFailed})
		return
	}

	if err := h.Sessions.Start(c, sess); err != nil {
		h.log.Error().Err(err).Msg("failed to start session after registration")
		c.JSON(http.StatusOK, models.View{View: models.ViewRegister, Error: msgRegisterFailed})
		return
	}

	c.Redirect(http.StatusSeeOther, DashboardPath)
}
