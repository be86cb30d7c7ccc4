package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

const contextKey = "session"

// Manager binds stored sessions to requests through a cookie holding the session id.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	log        zerolog.Logger
}

func NewManager(store Store, cookieName string, ttl time.Duration, secure bool, logger zerolog.Logger) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		log:        logger.With().Str("component", "SessionManager").Logger(),
	}
}

// Middleware resolves the visitor's session before the handler runs.
// Unknown, expired or unreadable sessions leave the visitor anonymous.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess models.SessionContext

		if id, err := c.Cookie(m.cookieName); err == nil && id != "" {
			loaded, err := m.store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				sess = loaded
			case errors.Is(err, ErrNotFound):
				m.log.Debug().Ctx(c.Request.Context()).Msg("session cookie refers to unknown session")
			default:
				m.log.Error().Err(err).Ctx(c.Request.Context()).Msg("failed to load session")
			}
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// Start stores sess under a fresh id, replaces any previous session of the visitor
// and sends the id back in the session cookie.
func (m *Manager) Start(c *gin.Context, sess models.SessionContext) error {
	ctx := c.Request.Context()
	id := uuid.NewString()

	if err := m.store.Save(ctx, id, sess); err != nil {
		return err
	}

	if previous, err := c.Cookie(m.cookieName); err == nil && previous != "" {
		if err := m.store.Delete(ctx, previous); err != nil {
			m.log.Warn().Err(err).Ctx(ctx).Msg("failed to drop previous session")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, id, int(m.ttl.Seconds()), "/", "", m.secure, true)
	c.Set(contextKey, sess)
	return nil
}

// Current returns the session resolved by Middleware, or an anonymous one.
func Current(c *gin.Context) models.SessionContext {
	v, ok := c.Get(contextKey)
	if !ok {
		return models.SessionContext{}
	}
	sess, _ := v.(models.SessionContext)
	return sess
}
