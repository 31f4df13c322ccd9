package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/onboardai/internal/api"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health always answers 200; the database field says whether the store is
// reachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "connected"}
	if h.db == nil {
		resp.Database = "disconnected"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = "disconnected"
		}
	}
	api.Success(w, http.StatusOK, resp)
}
