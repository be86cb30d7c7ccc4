package dashboard

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
	"github.com/Nazarious-ucu/travel-planner-api/internal/session"
)

const msgNegativeBudget = "Budget cannot be negative."

type recommender interface {
	Recommend(ctx context.Context, budget int) []models.Recommendation
}

type Handler struct {
	Service recommender
	log     zerolog.Logger
}

func NewHandler(svc recommender, logger zerolog.Logger) *Handler {
	return &Handler{
		Service: svc,
		log:     logger.With().Str("component", "DashboardHandler").Logger(),
	}
}

// Show
// @Summary Dashboard
// @Description Greets the visitor. No recommendations are computed until a budget is submitted.
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardView
// @Router /dashboard [get]
func (h *Handler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, h.view(c))
}

// Recommend
// @Summary Recommend travel packages
// @Description Lists every city with at least one package tier within the budget.
// @Tags dashboard
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param budget formData integer false "Budget"
// @Success 200 {object} models.DashboardView
// @Router /dashboard [post]
func (h *Handler) Recommend(c *gin.Context) {
	view := h.view(c)

	budget, ok := parseBudget(c.PostForm("budget"))
	switch {
	case !ok:
		h.log.Debug().Str("budget", c.PostForm("budget")).Msg("budget missing or not an integer")
	case budget < 0:
		view.Error = msgNegativeBudget
	default:
		view.Recommendations = h.Service.Recommend(c.Request.Context(), budget)
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) view(c *gin.Context) models.DashboardView {
	return models.DashboardView{
		View:     models.ViewDashboard,
		Username: session.Current(c).DisplayName(),
	}
}

// parseBudget accepts any decimal integer. Values beyond the int range are
// clamped, so a huge budget still affords every priced tier.
func parseBudget(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	budget, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(raw, "-"):
		return math.MinInt, true
	case errors.Is(err, strconv.ErrRange):
		return math.MaxInt, true
	case err != nil:
		return 0, false
	}
	return budget, true
}
