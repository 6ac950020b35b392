package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves the liveness endpoint, reporting database
// connectivity and pool statistics.
type HealthHandler struct {
	pool *pgxpool.Pool
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
	Pool     poolStats `json:"pool"`
}

type poolStats struct {
	TotalConns int32 `json:"total_conns"`
	IdleConns  int32 `json:"idle_conns"`
	MaxConns   int32 `json:"max_conns"`
}

// Health responds 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	stats := h.pool.Stat()
	resp := healthResponse{
		Status:   "ok",
		Database: "up",
		Time:     time.Now().UTC(),
		Pool: poolStats{
			TotalConns: stats.TotalConns(),
			IdleConns:  stats.IdleConns(),
			MaxConns:   stats.MaxConns(),
		},
	}

	if err := h.pool.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}
