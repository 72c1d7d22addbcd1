package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"lecturelens/internal/document"
	"lecturelens/internal/jsonutil"
	"lecturelens/internal/llm"
)

// maxDocumentAttachments bounds how many inline payloads one extraction
// request may carry. Extra payloads are logged and dropped, never an error.
const maxDocumentAttachments = 6

const conceptSystemPrompt = `You are an expert at identifying significant mathematical, scientific, and engineering concepts from academic material.

IMPORTANT: Extract concepts, theorems, phenomena, and advanced mathematical/scientific principles.
DO NOT extract basic elements like:
- Individual numbers, variables, or symbols
- Basic operations (+, -, x, /)
- Simple geometric shapes
- Elementary concepts

DO extract significant concepts like:
- Named theorems (Fourier Transform, Laplace Transform, etc.)
- Mathematical phenomena (Resonance, Interference, etc.)
- Advanced techniques (Convolution, Optimization, etc.)
- Scientific principles (Wave mechanics, Quantum effects, etc.)
- Engineering methods (Signal processing, Control theory, etc.)

For each significant concept, provide:
1. name: The official name of the theorem/concept/phenomenon
2. type: (theorem, principle, method, phenomenon, etc.)
3. domain: (mathematics, physics, engineering, computer science, etc.)
4. significance: Why this concept is important and powerful
5. confidence: Your confidence this is correctly identified (0.0-1.0)

Return a JSON array with only the most significant concepts. Quality over quantity.`

// ConceptExtractor identifies significant academic concepts in a staged
// document. It is the first stage; every failure is recorded on the state and
// never raised past the stage boundary.
type ConceptExtractor struct {
	LLM  llm.Client
	Docs document.Store

	ConfidenceThreshold float64
	MaxConcepts         int
}

// Run resolves the document, asks the model for concepts, filters by
// confidence and caps the survivors.
func (e *ConceptExtractor) Run(ctx context.Context, state *State) *State {
	log.Printf("workflow %s: extracting concepts from %s", state.ID, state.DocumentPath)

	doc, err := e.Docs.Resolve(ctx, state.DocumentPath)
	if err != nil {
		state.setError(fmt.Sprintf("resolve document %s: %v", state.DocumentPath, err))
		return state
	}

	meta, _ := jsonutil.MarshalNoEscape(state.UserMetadata)
	prompt := fmt.Sprintf(`Analyze this lecture material for significant mathematical/scientific concepts.

Additional context: %s
User background: %s

Focus on identifying theorems, principles, or phenomena that have real-world applications.`,
		state.UserQuery, string(meta))

	attachments := attachmentsFor(doc)
	if len(attachments) == 0 {
		log.Printf("workflow %s: no attachable payload for %s, sending text-only request", state.ID, doc.Name)
	}

	raw, err := e.LLM.GenerateJSONParts(ctx, conceptSystemPrompt, prompt, attachments)
	if err != nil {
		state.setError(fmt.Sprintf("extract concepts: %v", err))
		return state
	}

	var concepts []Concept
	if err := jsonutil.DecodeArray(raw, &concepts); err != nil {
		state.setError(fmt.Sprintf("parse concepts: %v", err))
		return state
	}

	kept := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if c.Confidence < e.ConfidenceThreshold {
			continue
		}
		kept = append(kept, c)
		if e.MaxConcepts > 0 && len(kept) >= e.MaxConcepts {
			break
		}
	}

	state.Concepts = kept
	log.Printf("workflow %s: extracted %d significant concepts", state.ID, len(kept))
	return state
}

// attachmentsFor converts a staged document into inline request payloads,
// truncating past the attachment cap.
func attachmentsFor(doc document.Document) []llm.Attachment {
	if doc.MIMEType == "" || len(doc.Data) == 0 {
		return nil
	}
	atts := []llm.Attachment{{MIMEType: doc.MIMEType, Data: doc.Data}}
	return truncateAttachments(atts)
}

func truncateAttachments(atts []llm.Attachment) []llm.Attachment {
	if len(atts) <= maxDocumentAttachments {
		return atts
	}
	log.Printf("workflow: truncating %d attachments to %d", len(atts), maxDocumentAttachments)
	return atts[:maxDocumentAttachments]
}
