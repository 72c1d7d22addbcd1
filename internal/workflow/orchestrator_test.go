package workflow

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturelens/internal/imagesearch"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEmitter) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// newOrchestrator wires stages around one shared stub model so tests can
// script every stage response through jsonFn.
func newOrchestrator(cli *stubLLM, searcher *stubSearcher) *Orchestrator {
	return &Orchestrator{
		Extractor: &ConceptExtractor{LLM: cli, Docs: pdfDocs(), ConfidenceThreshold: 0.6, MaxConcepts: 10},
		Finder:    &ApplicationFinder{LLM: cli, Images: searcher},
		Roadmaps:  &RoadmapGenerator{LLM: cli},
	}
}

func scriptedLLM(applications, roadmap func(prompt string) (json.RawMessage, error)) *stubLLM {
	return &stubLLM{
		partsResp: json.RawMessage(`[{"name":"Fourier Transform","type":"theorem","domain":"mathematics","confidence":0.9}]`),
		jsonFn: func(prompt string) (json.RawMessage, error) {
			if strings.Contains(prompt, "real-world applications") {
				return applications(prompt)
			}
			return roadmap(prompt)
		},
	}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	cli := scriptedLLM(
		func(string) (json.RawMessage, error) {
			return json.RawMessage(`[{"name":"Shazam","brief_description":"identifies songs"}]`), nil
		},
		func(string) (json.RawMessage, error) {
			return json.RawMessage(roadmapObjectForm), nil
		},
	)
	searcher := &stubSearcher{images: []imagesearch.Image{{URL: "https://img.example/s.png"}}}
	emitter := &recordingEmitter{}
	o := newOrchestrator(cli, searcher)
	o.Emitter = emitter

	state := o.Run(context.Background(), NewState("lecture.pdf", "signal processing", nil))

	require.Empty(t, state.Error)
	assert.Equal(t, StatusRoadmapsAttached, state.Status)
	require.Len(t, state.Concepts, 1)
	assert.Equal(t, "Fourier Transform", state.Concepts[0].Name)

	apps := state.Applications["Fourier Transform"]
	require.Len(t, apps, 1)
	assert.Equal(t, "Shazam", apps[0].Name)
	require.Len(t, apps[0].Images, 1)

	require.NotNil(t, apps[0].Roadmap)
	assert.Equal(t, "Learning Shazam", apps[0].Roadmap.Title)
	assert.NotEmpty(t, apps[0].Roadmap.Phase1)
	assert.NotEmpty(t, apps[0].Roadmap.Phase2)
	assert.NotEmpty(t, apps[0].Roadmap.Phase3)

	types := emitter.types()
	assert.Contains(t, types, EventRoadmapReady)
	assert.Equal(t, EventRunCompleted, types[len(types)-1])
}

func TestOrchestrator_ShortCircuitsAfterExtractionError(t *testing.T) {
	cli := &stubLLM{partsResp: json.RawMessage(`not json`)}
	searcher := &stubSearcher{}
	o := newOrchestrator(cli, searcher)

	state := o.Run(context.Background(), NewState("lecture.pdf", "", nil))

	assert.NotEmpty(t, state.Error)
	assert.Equal(t, StatusErrored, state.Status)
	assert.Empty(t, state.Concepts)
	// Discovery and roadmap stages never ran.
	assert.Equal(t, 0, cli.jsonCalls)
	assert.Equal(t, 0, searcher.calls)
}

func TestOrchestrator_ShortCircuitsAfterDiscoveryError(t *testing.T) {
	cli := scriptedLLM(
		func(string) (json.RawMessage, error) {
			return nil, assert.AnError
		},
		func(string) (json.RawMessage, error) {
			t.Fatal("roadmap stage must not run")
			return nil, nil
		},
	)
	o := newOrchestrator(cli, &stubSearcher{})

	state := o.Run(context.Background(), NewState("lecture.pdf", "", nil))

	assert.NotEmpty(t, state.Error)
	assert.Equal(t, StatusErrored, state.Status)
}

func TestOrchestrator_RoadmapFailureIsolatedPerApplication(t *testing.T) {
	cli := scriptedLLM(
		func(string) (json.RawMessage, error) {
			return json.RawMessage(`[
				{"name":"X","brief_description":"fails"},
				{"name":"Y","brief_description":"works"}
			]`), nil
		},
		func(prompt string) (json.RawMessage, error) {
			if strings.Contains(prompt, `"X"`) {
				return json.RawMessage(`broken output`), nil
			}
			return json.RawMessage(roadmapObjectForm), nil
		},
	)
	o := newOrchestrator(cli, &stubSearcher{})

	state := o.Run(context.Background(), NewState("lecture.pdf", "", nil))

	require.Empty(t, state.Error)
	assert.Equal(t, StatusRoadmapsAttached, state.Status)
	apps := state.Applications["Fourier Transform"]
	require.Len(t, apps, 2)
	assert.Nil(t, apps[0].Roadmap)
	require.NotNil(t, apps[1].Roadmap)
	assert.Equal(t, "Y", apps[1].Roadmap.ApplicationName)
}

func TestOrchestrator_AllRoadmapsFailingStillCompletes(t *testing.T) {
	cli := scriptedLLM(
		func(string) (json.RawMessage, error) {
			return json.RawMessage(`[{"name":"X"}]`), nil
		},
		func(string) (json.RawMessage, error) {
			return nil, assert.AnError
		},
	)
	o := newOrchestrator(cli, &stubSearcher{})

	state := o.Run(context.Background(), NewState("lecture.pdf", "", nil))

	assert.Empty(t, state.Error)
	assert.Equal(t, StatusRoadmapsAttached, state.Status)
	assert.Nil(t, state.Applications["Fourier Transform"][0].Roadmap)
}

func TestOrchestrator_CancellationStopsFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cli := scriptedLLM(
		func(string) (json.RawMessage, error) {
			return json.RawMessage(`[{"name":"X"},{"name":"Y"}]`), nil
		},
		func(string) (json.RawMessage, error) {
			cancel()
			return json.RawMessage(roadmapObjectForm), nil
		},
	)
	o := newOrchestrator(cli, &stubSearcher{})

	state := o.Run(ctx, NewState("lecture.pdf", "", nil))

	apps := state.Applications["Fourier Transform"]
	require.Len(t, apps, 2)
	assert.NotNil(t, apps[0].Roadmap)
	assert.Nil(t, apps[1].Roadmap)
	assert.Equal(t, StatusApplicationsFound, state.Status)
}
