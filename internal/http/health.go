package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/eventsync/internal/database"
)

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports whether the importer can reach its entry store.
// The queue is informational: with it disabled, CLI imports still work.
type HealthController struct {
	db           *database.Database
	version      string
	queueEnabled bool
}

func NewHealthController(db *database.Database, version string, queueEnabled bool) *HealthController {
	return &HealthController{db: db, version: version, queueEnabled: queueEnabled}
}

func (h *HealthController) Status(c *gin.Context) {
	dbCheck := h.checkDatabase(c.Request.Context())
	queueCheck := "disabled"
	if h.queueEnabled {
		queueCheck = "ok"
	}

	resp := HealthResponse{
		Status:  healthy,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": dbCheck, "task_queue": queueCheck},
	}
	code := http.StatusOK
	if dbCheck != "ok" && dbCheck != "not configured" {
		resp.Status = unhealthy
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
