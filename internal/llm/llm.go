package llm

import (
	"context"
	"encoding/json"
)

// Attachment is a binary payload (PDF page set or image) inlined into a
// multimodal request.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Client is the minimal model capability the pipeline stages depend on.
// GenerateJSON requests an application/json response for a text-only prompt;
// GenerateJSONParts does the same with inline document/image attachments.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	GenerateJSONParts(ctx context.Context, system, prompt string, attachments []Attachment) (json.RawMessage, error)
	Close() error
}
