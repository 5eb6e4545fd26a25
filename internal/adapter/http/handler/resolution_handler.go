package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/postingrules/internal/adapter/http/dto"
	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

// ResolutionService defines the behavior needed by ResolutionHandler.
type ResolutionService interface {
	Resolve(ctx context.Context, input usecase.ResolveInput) (*domain.RuleResolutionResult, error)
	Preview(ctx context.Context, input usecase.PreviewInput) (*domain.RuleResolutionResult, error)
}

// ResolutionHandler handles resolution HTTP requests.
type ResolutionHandler struct {
	resolutionUC ResolutionService
}

// NewResolutionHandler creates a new ResolutionHandler.
func NewResolutionHandler(resolutionUC ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{resolutionUC: resolutionUC}
}

// Resolve resolves a stored event for a posting date.
func (h *ResolutionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.resolutionUC.Resolve(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tenantID")))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve event", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResolutionFromDomain(result))
}

// Preview resolves an event supplied in the request body.
func (h *ResolutionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.resolutionUC.Preview(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tenantID")))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to preview event", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResolutionFromDomain(result))
}
