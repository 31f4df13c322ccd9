package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/onboardai/internal/api"
	"github.com/cloo-solutions/onboardai/internal/domain"
)

type SyncService interface {
	Sync(ctx context.Context) (*domain.SyncResult, error)
	Status(ctx context.Context) (domain.SyncStatus, error)
}

type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, status)
}

// Trigger runs one ingestion pass and returns per-source counts.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Sync(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}
