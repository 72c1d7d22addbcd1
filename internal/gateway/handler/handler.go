// Package handler exposes the workflow pipeline over HTTP: one endpoint to
// run a workflow, one to inspect the last snapshot, and a websocket stream of
// run progress events.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"lecturelens/internal/document"
	"lecturelens/internal/statestore"
	"lecturelens/internal/workflow"
)

// Handler owns the HTTP surface around one orchestrator.
type Handler struct {
	Orchestrator *workflow.Orchestrator
	Docs         document.Store
	Snapshots    statestore.Store
	// Timeout caps one whole workflow run. Zero means no cap.
	Timeout time.Duration
}

// Register installs all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/run_workflow/", h.RunWorkflow)
	mux.HandleFunc("/get_workflow_state/", h.GetWorkflowState)
	if hub, ok := h.Orchestrator.Emitter.(*Hub); ok && hub != nil {
		mux.HandleFunc("/ws/runs", hub.HandleWS)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("gateway: write response: %v", err)
	}
}
