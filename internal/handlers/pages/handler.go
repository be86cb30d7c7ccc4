package pages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Index
// @Summary Landing page
// @Tags pages
// @Produce json
// @Success 200 {object} models.View
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, models.View{View: models.ViewIndex})
}

// Service
// @Summary Service information page
// @Tags pages
// @Produce json
// @Success 200 {object} models.View
// @Router /service [get]
func (h *Handler) Service(c *gin.Context) {
	c.JSON(http.StatusOK, models.View{View: models.ViewService})
}

// About
// @Summary About page
// @Tags pages
// @Produce json
// @Success 200 {object} models.View
// @Router /about [get]
func (h *Handler) About(c *gin.Context) {
	c.JSON(http.StatusOK, models.View{View: models.ViewAbout})
}
