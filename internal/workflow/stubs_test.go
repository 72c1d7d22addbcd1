package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"lecturelens/internal/document"
	"lecturelens/internal/imagesearch"
	"lecturelens/internal/llm"
)

// stubLLM is a deterministic model double with call counters.
type stubLLM struct {
	partsResp json.RawMessage
	partsErr  error
	// jsonFn decides text responses per prompt; falls back to jsonResp.
	jsonFn   func(prompt string) (json.RawMessage, error)
	jsonResp json.RawMessage
	jsonErr  error

	partsCalls int
	jsonCalls  int

	lastSystem      string
	lastPrompt      string
	lastAttachments int
}

func (s *stubLLM) Name() string { return "stub" }
func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ any) (json.RawMessage, error) {
	s.jsonCalls++
	s.lastPrompt = prompt
	if s.jsonFn != nil {
		return s.jsonFn(prompt)
	}
	return s.jsonResp, s.jsonErr
}

func (s *stubLLM) GenerateJSONParts(_ context.Context, system, prompt string, atts []llm.Attachment) (json.RawMessage, error) {
	s.partsCalls++
	s.lastSystem = system
	s.lastPrompt = prompt
	s.lastAttachments = len(atts)
	return s.partsResp, s.partsErr
}

// stubSearcher returns canned images or an error.
type stubSearcher struct {
	images []imagesearch.Image
	err    error
	calls  int
	seen   []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]imagesearch.Image, error) {
	s.calls++
	s.seen = append(s.seen, query)
	return s.images, s.err
}

// stubDocs resolves from an in-memory map.
type stubDocs struct {
	docs map[string]document.Document
}

func (s *stubDocs) Resolve(_ context.Context, name string) (document.Document, error) {
	if doc, ok := s.docs[name]; ok {
		return doc, nil
	}
	return document.Document{}, errors.New("stub: " + name + " not staged")
}
