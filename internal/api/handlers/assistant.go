package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/onboardai/internal/api"
	"github.com/cloo-solutions/onboardai/internal/domain"
)

// OutcomeHeader reports how a degradable response was produced.
const OutcomeHeader = "X-Onboard-Outcome"

type AssistantService interface {
	Ask(ctx context.Context, question string) *domain.Answer
	Brief(ctx context.Context) *domain.BriefResult
	LatestBrief(ctx context.Context) (*domain.BriefResult, error)
}

type AssistantHandler struct {
	svc AssistantService
}

func NewAssistantHandler(svc AssistantService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.BodyTooLarge(w, tooLarge.Limit)
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ans := h.svc.Ask(r.Context(), req.Question)
	w.Header().Set(OutcomeHeader, string(ans.Outcome))
	api.Success(w, http.StatusOK, ans)
}

// Brief compiles a fresh brief. The body is the six-section object.
func (h *AssistantHandler) Brief(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Brief(r.Context())
	w.Header().Set(OutcomeHeader, string(res.Outcome))
	api.Success(w, http.StatusOK, res.Brief)
}

func (h *AssistantHandler) LatestBrief(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.LatestBrief(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}
