package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"lecturelens/internal/document"
	"lecturelens/internal/statestore"
	"lecturelens/internal/workflow"
)

type runWorkflowRequest struct {
	FileName  string `json:"file_name"`
	UserQuery string `json:"user_query"`
}

// RunWorkflow executes the full pipeline for a staged document. Partial
// results still return 200 with data.error set; HTTP error codes are reserved
// for input validation and handler-level failures.
func (h *Handler) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("gateway: run_workflow panic: %v", rec)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"detail": fmt.Sprint(rec),
			})
		}
	}()

	var req runWorkflowRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "file_name is required"})
		return
	}

	// Pre-flight existence check; the extraction stage resolves again.
	if _, err := h.Docs.Resolve(r.Context(), fileName); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"detail": fmt.Sprintf("Document not found: %s", fileName),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	state := workflow.NewState(fileName, req.UserQuery, nil)
	log.Printf("gateway: starting workflow %s for %s", state.ID, fileName)
	final := h.Orchestrator.Run(ctx, state)

	if h.Snapshots != nil {
		if err := h.Snapshots.Save(final); err != nil {
			log.Printf("gateway: persist snapshot: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   final,
	})
}

// GetWorkflowState returns the last persisted snapshot, a debugging
// affordance rather than part of the run contract.
func (h *Handler) GetWorkflowState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	state, err := h.Snapshots.Load()
	if err != nil {
		if errors.Is(err, statestore.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":  "not_found",
				"message": "no workflow state has been persisted yet",
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   state,
	})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}
