package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookrelay/internal/api/context"
	"hookrelay/internal/api/middleware"
	"hookrelay/internal/engine/endpoints"
	"hookrelay/internal/engine/registry"
	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/audit"
	"hookrelay/internal/platform/models"
)

type EndpointHandler struct {
	svc        *endpoints.Service
	reconciler *endpoints.Reconciler
	audit      *audit.Logger
}

func NewEndpointHandler(svc *endpoints.Service, reconciler *endpoints.Reconciler, auditLogger *audit.Logger) *EndpointHandler {
	return &EndpointHandler{svc: svc, reconciler: reconciler, audit: auditLogger}
}

type createEndpointRequest struct {
	URL               string            `json:"url"`
	ProjectID         *string           `json:"project_id,omitempty"`
	SendPayload       *bool             `json:"send_payload,omitempty"`
	SendForAllActions *bool             `json:"send_for_all_actions,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	Actions           []string          `json:"actions,omitempty"`
}

func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	org := r.Context().Value(apiContext.Org).(*middleware.OrgContext)

	var req createEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	endpoint, err := h.svc.Create(endpoints.CreateInput{
		OrganizationID:    org.OrgID,
		ProjectID:         req.ProjectID,
		URL:               req.URL,
		SendPayload:       req.SendPayload,
		SendForAllActions: req.SendForAllActions,
		Headers:           req.Headers,
	})
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	if len(req.Actions) > 0 {
		if err := h.reconciler.SetActions(endpoint, req.Actions); err != nil {
			// Roll the endpoint back so a rejected subscription set never
			// leaves a half-configured webhook behind.
			h.svc.Delete(endpoint.ID)
			errors.WriteDomainError(w, err)
			return
		}
	}

	h.audit.Log(r.Context(), "endpoint.created", "endpoint", endpoint.ID, map[string]interface{}{
		"url": endpoint.URL,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(endpoint)
}

func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	org := r.Context().Value(apiContext.Org).(*middleware.OrgContext)

	list, err := h.svc.List(org.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if list == nil {
		list = []*models.Endpoint{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// load fetches the endpoint and enforces the tenant boundary.
func (h *EndpointHandler) load(w http.ResponseWriter, r *http.Request) *models.Endpoint {
	org := r.Context().Value(apiContext.Org).(*middleware.OrgContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	endpoint, err := h.svc.Get(params.ByName("endpoint_id"))
	if err != nil {
		errors.WriteDomainError(w, err)
		return nil
	}
	if endpoint.OrganizationID != org.OrgID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return nil
	}
	return endpoint
}

func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	endpoint := h.load(w, r)
	if endpoint == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(endpoint)
}

type updateEndpointRequest struct {
	URL               string            `json:"url,omitempty"`
	SendPayload       *bool             `json:"send_payload,omitempty"`
	SendForAllActions *bool             `json:"send_for_all_actions,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	IsActive          *bool             `json:"is_active,omitempty"`
}

func (h *EndpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	endpoint := h.load(w, r)
	if endpoint == nil {
		return
	}

	var req updateEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	updated, err := h.svc.Update(endpoint.ID, endpoints.UpdateInput{
		URL:               req.URL,
		SendPayload:       req.SendPayload,
		SendForAllActions: req.SendForAllActions,
		Headers:           req.Headers,
		IsActive:          req.IsActive,
	})
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	h.audit.Log(r.Context(), "endpoint.updated", "endpoint", updated.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	endpoint := h.load(w, r)
	if endpoint == nil {
		return
	}

	if err := h.svc.Delete(endpoint.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.audit.Log(r.Context(), "endpoint.deleted", "endpoint", endpoint.ID, nil)

	w.WriteHeader(http.StatusOK)
}

type setActionsRequest struct {
	Actions []string `json:"actions"`
}

// SetActions replaces the endpoint's subscription set via the reconciler.
func (h *EndpointHandler) SetActions(w http.ResponseWriter, r *http.Request) {
	endpoint := h.load(w, r)
	if endpoint == nil {
		return
	}

	var req setActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.reconciler.SetActions(endpoint, req.Actions); err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	actions, err := h.reconciler.ListActions(endpoint.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.audit.Log(r.Context(), "endpoint.actions_set", "endpoint", endpoint.ID, map[string]interface{}{
		"actions": actions,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setActionsRequest{Actions: actions})
}

func (h *EndpointHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	endpoint := h.load(w, r)
	if endpoint == nil {
		return
	}

	actions, err := h.reconciler.ListActions(endpoint.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setActionsRequest{Actions: actions})
}

// Catalog lists every registered action with its payload metadata, for
// enumeration by management UIs.
func (h *EndpointHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registry.All())
}
