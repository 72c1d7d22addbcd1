package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// FakeClient returns deterministic, minimal JSON payloads for offline runs and
// testing. Multimodal requests answer with concepts; text requests answer with
// applications or a roadmap depending on the prompt.
type FakeClient struct {
	ConceptsJSON     json.RawMessage
	ApplicationsJSON json.RawMessage
	RoadmapJSON      json.RawMessage
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		ConceptsJSON: json.RawMessage(`[
  {"name":"Fourier Transform","type":"theorem","domain":"mathematics",
   "significance":"Decomposes signals into frequencies","confidence":0.9}
]`),
		ApplicationsJSON: json.RawMessage(`[
  {"name":"Shazam","brief_description":"Shazam identifies songs from short audio clips",
   "description":"Audio fingerprinting built on frequency-domain analysis"}
]`),
		RoadmapJSON: json.RawMessage(`{
  "title":"Learning Shazam",
  "description_1":[{"concept":"Waves and frequency","estimated_time":"2 weeks","description":"What a frequency is"}],
  "description_2":[{"concept":"Fourier analysis","estimated_time":"4 weeks","description":"Transforms and spectra"}],
  "description_3":[{"concept":"Audio fingerprinting","estimated_time":"3 weeks","description":"Constellation maps"}]
}`),
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(_ context.Context, prompt string, _ any) (json.RawMessage, error) {
	if strings.Contains(prompt, "real-world applications") {
		return f.ApplicationsJSON, nil
	}
	return f.RoadmapJSON, nil
}

func (f *FakeClient) GenerateJSONParts(_ context.Context, _, _ string, _ []Attachment) (json.RawMessage, error) {
	return f.ConceptsJSON, nil
}
