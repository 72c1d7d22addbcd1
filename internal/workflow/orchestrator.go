package workflow

import (
	"context"
	"log"
	"time"
)

// Orchestrator sequences concept extraction, application discovery and the
// roadmap fan-out over one State. Downstream stages are skipped once the state
// carries an error; individual roadmap failures never become pipeline errors.
type Orchestrator struct {
	Extractor *ConceptExtractor
	Finder    *ApplicationFinder
	Roadmaps  *RoadmapGenerator

	// RoadmapDelay throttles consecutive roadmap calls. Zero disables it.
	RoadmapDelay time.Duration
	// Emitter receives progress events; nil disables streaming.
	Emitter Emitter
}

// Run executes the pipeline to completion and returns the (possibly partial)
// state. It never returns an error: pipeline-fatal failures live in
// state.Error, per-item failures in the items themselves.
func (o *Orchestrator) Run(ctx context.Context, state *State) *State {
	emit(o.Emitter, state.ID, EventStageStarted, "extract_concepts", "", nil)
	state = o.Extractor.Run(ctx, state)
	if state.Error != "" {
		return o.errored(state)
	}
	state.Status = StatusConceptsExtracted
	emit(o.Emitter, state.ID, EventStageCompleted, "extract_concepts", "", state.Concepts)

	emit(o.Emitter, state.ID, EventStageStarted, "find_applications", "", nil)
	state = o.Finder.Run(ctx, state)
	if state.Error != "" {
		return o.errored(state)
	}
	state.Status = StatusApplicationsFound
	emit(o.Emitter, state.ID, EventStageCompleted, "find_applications", "", nil)

	// Roadmap fan-out. Applications exist now, so the run always reaches a
	// terminal success status even when every roadmap fails.
	emit(o.Emitter, state.ID, EventStageStarted, "generate_roadmaps", "", nil)
	o.attachRoadmaps(ctx, state)
	if ctx.Err() != nil {
		// Caller timed out or went away; the partial state is abandoned.
		return state
	}
	state.Status = StatusRoadmapsAttached
	emit(o.Emitter, state.ID, EventRunCompleted, "generate_roadmaps", "", nil)
	return state
}

// attachRoadmaps visits applications in concept order, then application order,
// generating one roadmap per application. A failure marks that application
// roadmap-less and moves on.
func (o *Orchestrator) attachRoadmaps(ctx context.Context, state *State) {
	generated := 0
	for _, concept := range state.Concepts {
		for _, app := range state.Applications[concept.Name] {
			if ctx.Err() != nil {
				log.Printf("workflow %s: roadmap fan-out canceled: %v", state.ID, ctx.Err())
				return
			}
			roadmap, err := o.Roadmaps.Generate(ctx, state, app.Name)
			if err != nil {
				log.Printf("workflow %s: roadmap for %q failed: %v", state.ID, app.Name, err)
				app.Roadmap = nil
				continue
			}
			app.Roadmap = roadmap
			generated++
			emit(o.Emitter, state.ID, EventRoadmapReady, "generate_roadmaps", app.Name, roadmap)

			if o.RoadmapDelay > 0 {
				if err := sleep(ctx, o.RoadmapDelay); err != nil {
					return
				}
			}
		}
	}
	log.Printf("workflow %s: generated %d roadmaps", state.ID, generated)
}

func (o *Orchestrator) errored(state *State) *State {
	log.Printf("workflow %s: halted: %s", state.ID, state.Error)
	emit(o.Emitter, state.ID, EventRunErrored, "", state.Error, nil)
	return state
}
