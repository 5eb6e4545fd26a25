package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/postingrules/internal/adapter/http/dto"
	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

// MappingService defines the behavior needed by MappingHandler.
type MappingService interface {
	CreateMapping(ctx context.Context, input usecase.CreateMappingInput) (*domain.MappingConfiguration, error)
	ListMappings(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error)
	ValidateTenant(ctx context.Context, tenantID, ruleFamily string) (*usecase.ValidationReport, error)
}

// MappingRecorder counts created mapping versions.
type MappingRecorder interface {
	MappingCreated()
}

// MappingHandler handles mapping configuration HTTP requests.
type MappingHandler struct {
	mappingUC MappingService
	recorder  MappingRecorder
}

// NewMappingHandler creates a new MappingHandler. recorder may be nil.
func NewMappingHandler(mappingUC MappingService, recorder MappingRecorder) *MappingHandler {
	return &MappingHandler{mappingUC: mappingUC, recorder: recorder}
}

// Create stores a new mapping version.
func (h *MappingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMappingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	mapping, err := h.mappingUC.CreateMapping(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tenantID")))
	if err != nil {
		status := mapDomainError(err)
		// A missing account is a problem with the body, not the URL.
		if errors.Is(err, domain.ErrAccountNotFound) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "failed to create mapping", err.Error())
		return
	}

	if h.recorder != nil {
		h.recorder.MappingCreated()
	}

	writeJSON(w, http.StatusCreated, dto.MappingFromDomain(mapping))
}

// List lists the tenant's mapping versions.
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappingUC.ListMappings(r.Context(), chi.URLParam(r, "tenantID"), r.URL.Query().Get("family"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list mappings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MappingsFromDomain(mappings))
}

// Validate reports overlapping mapping ranges and account cycles.
func (h *MappingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.mappingUC.ValidateTenant(r.Context(), chi.URLParam(r, "tenantID"), r.URL.Query().Get("family"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to validate mappings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ValidationFromReport(report))
}
