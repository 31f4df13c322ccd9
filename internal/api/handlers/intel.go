package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/api"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/youcom"
)

type IntelService interface {
	Feed(ctx context.Context, cursor string, limit int) (*service.IntelFeedPage, error)
	Search(ctx context.Context, query string, count int, freshness string) youcom.LiveResult
	Refresh(ctx context.Context) (int, error)
}

type IntelHandler struct {
	svc IntelService
}

func NewIntelHandler(svc IntelService) *IntelHandler {
	return &IntelHandler{svc: svc}
}

type RefreshResponse struct {
	Added int `json:"added"`
}

func (h *IntelHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", service.DefaultFeedLimit)
	if !ok {
		api.Error(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	page, err := h.svc.Feed(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, page)
}

func (h *IntelHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}
	count, ok := intParam(r, "count", service.DefaultSearchCount)
	if !ok {
		api.Error(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	res := h.svc.Search(r.Context(), q, count, r.URL.Query().Get("freshness"))
	api.Success(w, http.StatusOK, res)
}

func (h *IntelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.Refresh(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, RefreshResponse{Added: added})
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
