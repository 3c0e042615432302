package handlers

import (
	"encoding/json"
	"net/http"

	apiContext "hookrelay/internal/api/context"
	"hookrelay/internal/api/middleware"
	"hookrelay/internal/engine/dispatch"
	"hookrelay/internal/engine/routing"
	"hookrelay/internal/pkg/errors"
)

// EventHandler is the ingestion point for the host process: it routes a
// domain event through the matcher and hands the result to the dispatcher.
type EventHandler struct {
	matcher    *routing.Matcher
	dispatcher *dispatch.Dispatcher
}

func NewEventHandler(matcher *routing.Matcher, dispatcher *dispatch.Dispatcher) *EventHandler {
	return &EventHandler{matcher: matcher, dispatcher: dispatcher}
}

type ingestResponse struct {
	Matched int `json:"matched"`
}

func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	org := r.Context().Value(apiContext.Org).(*middleware.OrgContext)

	var event routing.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	// The tenant boundary comes from the request context, never the body.
	event.OrganizationID = org.OrgID

	matches, err := h.matcher.Match(event)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	h.dispatcher.Dispatch(event, matches, org.WebhookSecret)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(ingestResponse{Matched: len(matches)})
}
