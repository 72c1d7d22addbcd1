package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lecturelens/internal/jsonutil"
	"lecturelens/internal/llm"
)

// RoadmapGenerator builds a three-phase learning roadmap for one application.
// Unlike the other stages it returns errors to the caller; the orchestrator
// absorbs them per application.
type RoadmapGenerator struct {
	LLM llm.Client
}

// roadmapEnvelope is the fixed wire contract. The phase keys are not
// renamable; each phase value arrives either as an array of objects or as an
// array of [concept, estimated_time, description] tuples depending on the
// model's mood, so they are decoded leniently.
type roadmapEnvelope struct {
	Title        string          `json:"title"`
	Description1 json.RawMessage `json:"description_1"`
	Description2 json.RawMessage `json:"description_2"`
	Description3 json.RawMessage `json:"description_3"`
}

// Generate asks the model for a roadmap decomposing applicationName into three
// increasing-difficulty phases of 1-4 steps each.
func (g *RoadmapGenerator) Generate(ctx context.Context, state *State, applicationName string) (*Roadmap, error) {
	applicationName = strings.TrimSpace(applicationName)
	if applicationName == "" {
		return nil, ErrNoApplicationName
	}

	raw, err := g.LLM.GenerateJSON(ctx, g.prompt(state, applicationName), nil)
	if err != nil {
		return nil, fmt.Errorf("workflow: generate roadmap for %q: %w", applicationName, err)
	}

	var env roadmapEnvelope
	if err := jsonutil.DecodeObject(raw, &env); err != nil {
		return nil, &RoadmapParseError{ApplicationName: applicationName, Err: err}
	}

	roadmap := &Roadmap{Title: env.Title}
	phases := []struct {
		raw  json.RawMessage
		dst  *[]RoadmapItem
		name string
	}{
		{env.Description1, &roadmap.Phase1, "description_1"},
		{env.Description2, &roadmap.Phase2, "description_2"},
		{env.Description3, &roadmap.Phase3, "description_3"},
	}
	for _, p := range phases {
		items, err := coercePhase(p.raw)
		if err != nil {
			return nil, &RoadmapParseError{
				ApplicationName: applicationName,
				Err:             fmt.Errorf("%s: %w", p.name, err),
			}
		}
		if len(items) < 1 || len(items) > 4 {
			return nil, &RoadmapParseError{
				ApplicationName: applicationName,
				Err:             fmt.Errorf("%s: expected 1-4 entries, got %d", p.name, len(items)),
			}
		}
		*p.dst = items
	}

	roadmap.ApplicationName = applicationName
	return roadmap, nil
}

// coercePhase accepts both shapes seen in the wild: an array of objects with
// concept/estimated_time/description keys, and an array of 3-element tuples.
func coercePhase(raw json.RawMessage) ([]RoadmapItem, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing phase")
	}
	var items []RoadmapItem
	if err := json.Unmarshal(raw, &items); err == nil && validItems(items) {
		return items, nil
	}
	var tuples [][]string
	if err := json.Unmarshal(raw, &tuples); err == nil {
		items = items[:0]
		for _, t := range tuples {
			if len(t) < 1 {
				continue
			}
			item := RoadmapItem{Concept: t[0]}
			if len(t) > 1 {
				item.EstimatedTime = t[1]
			}
			if len(t) > 2 {
				item.Description = t[2]
			}
			items = append(items, item)
		}
		if validItems(items) {
			return items, nil
		}
	}
	return nil, fmt.Errorf("unrecognized phase shape")
}

func validItems(items []RoadmapItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if strings.TrimSpace(it.Concept) == "" {
			return false
		}
	}
	return true
}

func (g *RoadmapGenerator) prompt(state *State, applicationName string) string {
	names := make([]string, 0, len(state.Concepts))
	for _, c := range state.Concepts {
		names = append(names, c.Name)
	}
	meta, _ := jsonutil.MarshalNoEscape(state.UserMetadata)

	return fmt.Sprintf(`You are an expert learning-path designer.

Create a learning roadmap for understanding how %q works, decomposed into exactly three phases of increasing difficulty:
- description_1: foundational steps
- description_2: intermediate steps
- description_3: advanced steps

Each phase must contain 1-4 entries. Each entry is an object with:
1. concept: the thing to learn
2. estimated_time: rough time estimate (e.g. "2 weeks")
3. description: one sentence on what this step covers

Related concepts from the source material: %s
Learner profile: %s

Return a single JSON object with exactly the keys: title, description_1, description_2, description_3.`,
		applicationName, strings.Join(names, ", "), string(meta))
}
