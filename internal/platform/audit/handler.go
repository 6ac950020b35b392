package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hospitalos/hms/pkg/pagination"
)

// Handler serves the audit log listing endpoint.
type Handler struct {
	recorder Recorder
}

func NewHandler(recorder Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.List)
}

// List returns audit entries, newest first, filtered by entity, entity_id,
// user_id and action query parameters.
func (h *Handler) List(c echo.Context) error {
	filter := Filter{
		Entity: c.QueryParam("entity"),
		Action: c.QueryParam("action"),
	}

	if raw := c.QueryParam("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid entity_id")
		}
		filter.EntityID = &id
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		filter.UserID = &id
	}

	p := pagination.FromContext(c)
	entries, total, err := h.recorder.List(c.Request().Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit logs")
	}
	if entries == nil {
		entries = []Entry{}
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p.Limit, p.Offset))
}
