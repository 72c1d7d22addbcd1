// Package workflow implements the lecture-enrichment pipeline: concept
// extraction, application discovery with image enrichment, and roadmap
// generation, sequenced over a single shared state per run.
package workflow

import (
	"github.com/google/uuid"

	"lecturelens/internal/imagesearch"
)

// Status tracks how far a run has progressed. ERRORED is terminal and is only
// reachable before applications are found; once applications exist the run
// always proceeds to roadmap attachment.
type Status string

const (
	StatusInitialized       Status = "INITIALIZED"
	StatusConceptsExtracted Status = "CONCEPTS_EXTRACTED"
	StatusApplicationsFound Status = "APPLICATIONS_FOUND"
	StatusRoadmapsAttached  Status = "ROADMAPS_ATTACHED"
	StatusErrored           Status = "ERRORED"
)

// State is the single mutable record threaded through every stage. Exactly one
// stage writes it at a time; fan-outs are sequential loops, so no locking.
type State struct {
	ID           string         `json:"id"`
	DocumentPath string         `json:"document_path"`
	UserQuery    string         `json:"user_query"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`

	Concepts []Concept `json:"relevant_concepts"`
	// Applications is keyed by concept name. Iteration order is always taken
	// from Concepts, never from map range order.
	Applications map[string][]*Application `json:"concept_applications"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Concept is a named theorem, principle, method or phenomenon identified in
// the source material.
type Concept struct {
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"`
	Domain       string  `json:"domain,omitempty"`
	Significance string  `json:"significance,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// Application is a real-world use case for one concept. Roadmap stays nil when
// generation fails for this application only.
type Application struct {
	Name             string              `json:"name"`
	BriefDescription string              `json:"brief_description,omitempty"`
	Description      string              `json:"description,omitempty"`
	Images           []imagesearch.Image `json:"images"`
	Roadmap          *Roadmap            `json:"roadmap,omitempty"`
}

// Roadmap is a three-phase learning plan, foundational to advanced. Phases are
// never reordered after parsing.
type Roadmap struct {
	Title           string        `json:"title"`
	ApplicationName string        `json:"application_name,omitempty"`
	Phase1          []RoadmapItem `json:"phase_1"`
	Phase2          []RoadmapItem `json:"phase_2"`
	Phase3          []RoadmapItem `json:"phase_3"`
}

// RoadmapItem is one step within a phase.
type RoadmapItem struct {
	Concept       string `json:"concept"`
	EstimatedTime string `json:"estimated_time,omitempty"`
	Description   string `json:"description,omitempty"`
}

// NewState creates the initial state for one run: collections empty, no error.
func NewState(documentPath, userQuery string, metadata map[string]any) *State {
	return &State{
		ID:           uuid.NewString(),
		DocumentPath: documentPath,
		UserQuery:    userQuery,
		UserMetadata: metadata,
		Concepts:     []Concept{},
		Applications: map[string][]*Application{},
		Status:       StatusInitialized,
	}
}

// setError records a pipeline-fatal failure and moves the run to ERRORED.
func (s *State) setError(msg string) {
	s.Error = msg
	s.Status = StatusErrored
}
