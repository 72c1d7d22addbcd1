package workflow

import "time"

// EventType classifies run progress events streamed to the frontend.
type EventType string

const (
	EventStageStarted   EventType = "stage_started"
	EventStageCompleted EventType = "stage_completed"
	EventRoadmapReady   EventType = "roadmap_ready"
	EventRunCompleted   EventType = "run_completed"
	EventRunErrored     EventType = "run_errored"
)

// Event is one progress notification for a run.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Emitter receives run progress events. Implementations must not block the
// pipeline; a nil Emitter disables streaming.
type Emitter interface {
	Emit(Event)
}

func emit(e Emitter, runID string, typ EventType, stage, message string, payload any) {
	if e == nil {
		return
	}
	e.Emit(Event{
		RunID:     runID,
		Type:      typ,
		Stage:     stage,
		Message:   message,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}
