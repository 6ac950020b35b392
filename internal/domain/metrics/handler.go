package metrics

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler { return &Handler{repo: repo} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/metrics/overview", h.Overview)
}

func (h *Handler) Overview(c echo.Context) error {
	o, err := h.repo.Overview(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute metrics")
	}
	return c.JSON(http.StatusOK, o)
}
