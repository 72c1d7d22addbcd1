package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturelens/internal/document"
	"lecturelens/internal/imagesearch"
	"lecturelens/internal/llm"
	"lecturelens/internal/statestore"
	"lecturelens/internal/workflow"
)

type noopSearcher struct{}

func (noopSearcher) Search(context.Context, string) ([]imagesearch.Image, error) {
	return []imagesearch.Image{{URL: "https://img.example/1.png"}}, nil
}

func newTestHandler(t *testing.T, cli llm.Client) *Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture.pdf"), []byte("%PDF-1.4"), 0o644))

	docs := document.NewLocalStore(dir)
	return &Handler{
		Orchestrator: &workflow.Orchestrator{
			Extractor: &workflow.ConceptExtractor{LLM: cli, Docs: docs, ConfidenceThreshold: 0.6, MaxConcepts: 10},
			Finder:    &workflow.ApplicationFinder{LLM: cli, Images: noopSearcher{}},
			Roadmaps:  &workflow.RoadmapGenerator{LLM: cli},
		},
		Docs:      docs,
		Snapshots: statestore.NewFileStore(filepath.Join(dir, "workflow_state.json")),
	}
}

func postWorkflow(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/run_workflow/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RunWorkflow(rec, req)
	return rec
}

func TestRunWorkflow_HappyPath(t *testing.T) {
	h := newTestHandler(t, llm.NewFakeClient())

	rec := postWorkflow(t, h, `{"file_name":"lecture.pdf","user_query":"signal processing"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string          `json:"status"`
		Data   *workflow.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Empty(t, resp.Data.Error)
	assert.Equal(t, workflow.StatusRoadmapsAttached, resp.Data.Status)
	require.Len(t, resp.Data.Concepts, 1)

	apps := resp.Data.Applications[resp.Data.Concepts[0].Name]
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].Roadmap)
	assert.NotEmpty(t, apps[0].Roadmap.Title)
}

func TestRunWorkflow_MissingDocumentIs404(t *testing.T) {
	h := newTestHandler(t, llm.NewFakeClient())

	rec := postWorkflow(t, h, `{"file_name":"ghost.pdf"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost.pdf")
}

func TestRunWorkflow_PipelineErrorStillReturns200(t *testing.T) {
	cli := llm.NewFakeClient()
	cli.ConceptsJSON = json.RawMessage(`definitely not json`)
	h := newTestHandler(t, cli)

	rec := postWorkflow(t, h, `{"file_name":"lecture.pdf"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string          `json:"status"`
		Data   *workflow.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Data.Error)
	assert.Equal(t, workflow.StatusErrored, resp.Data.Status)
}

func TestRunWorkflow_BadRequests(t *testing.T) {
	h := newTestHandler(t, llm.NewFakeClient())

	assert.Equal(t, http.StatusBadRequest, postWorkflow(t, h, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postWorkflow(t, h, `{"user_query":"q"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/run_workflow/", nil)
	rec := httptest.NewRecorder()
	h.RunWorkflow(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetWorkflowState(t *testing.T) {
	h := newTestHandler(t, llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodGet, "/get_workflow_state/", nil)
	rec := httptest.NewRecorder()
	h.GetWorkflowState(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)

	postWorkflow(t, h, `{"file_name":"lecture.pdf"}`)

	rec = httptest.NewRecorder()
	h.GetWorkflowState(rec, httptest.NewRequest(http.MethodGet, "/get_workflow_state/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string          `json:"status"`
		Data   *workflow.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "lecture.pdf", resp.Data.DocumentPath)
}
