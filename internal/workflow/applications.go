package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lecturelens/internal/imagesearch"
	"lecturelens/internal/jsonutil"
	"lecturelens/internal/llm"
)

const applicationSystemContext = `You are an expert at connecting abstract mathematical/scientific concepts to exciting real-world applications that inspire learning.`

// ApplicationFinder discovers real-world applications for each extracted
// concept and enriches them with image search results. Concepts are processed
// sequentially in extraction order.
type ApplicationFinder struct {
	LLM    llm.Client
	Images imagesearch.Searcher

	// MaxApplications tunes how many applications the prompt requests (1-5).
	MaxApplications int
	// Delay throttles consecutive concept iterations against provider rate
	// limits. Zero disables the throttle.
	Delay time.Duration
	// Policy decides whether a per-concept parse failure halts the stage
	// (FailFast) or records an empty list and continues (the default).
	Policy FailurePolicy
}

// Run fans out over state.Concepts. Model transport failures are
// pipeline-fatal; parse failures follow Policy; image search failures are
// always absorbed into an empty image list.
func (f *ApplicationFinder) Run(ctx context.Context, state *State) *State {
	if len(state.Concepts) == 0 {
		log.Printf("workflow %s: no concepts to find applications for", state.ID)
		return state
	}

	for i, concept := range state.Concepts {
		if err := ctx.Err(); err != nil {
			state.setError(fmt.Sprintf("find applications: %v", err))
			return state
		}

		raw, err := f.LLM.GenerateJSON(ctx, f.prompt(concept), nil)
		if err != nil {
			state.setError(fmt.Sprintf("find applications for %q: %v", concept.Name, err))
			return state
		}

		var apps []*Application
		if err := jsonutil.DecodeArray(raw, &apps); err != nil {
			if f.Policy == FailFast {
				state.setError(fmt.Sprintf("parse applications for %q: %v", concept.Name, err))
				return state
			}
			log.Printf("workflow %s: could not parse applications for %q: %v", state.ID, concept.Name, err)
			state.Applications[concept.Name] = []*Application{}
			continue
		}

		for _, app := range apps {
			app.Images = f.searchImages(ctx, app)
		}
		state.Applications[concept.Name] = apps
		log.Printf("workflow %s: found %d applications for %q", state.ID, len(apps), concept.Name)

		if f.Delay > 0 && i < len(state.Concepts)-1 {
			if err := sleep(ctx, f.Delay); err != nil {
				state.setError(fmt.Sprintf("find applications: %v", err))
				return state
			}
		}
	}
	return state
}

// searchImages queries by brief description, falling back to the application
// name. Failures are absorbed; an application without images is normal.
func (f *ApplicationFinder) searchImages(ctx context.Context, app *Application) []imagesearch.Image {
	query := strings.TrimSpace(app.BriefDescription)
	if query == "" {
		query = strings.TrimSpace(app.Name)
	}
	images, err := f.Images.Search(ctx, query)
	if err != nil {
		log.Printf("workflow: image search for %q failed: %v", query, err)
		return []imagesearch.Image{}
	}
	if images == nil {
		images = []imagesearch.Image{}
	}
	return images
}

func (f *ApplicationFinder) prompt(concept Concept) string {
	count := f.MaxApplications
	if count <= 0 || count > 5 {
		count = 5
	}
	return fmt.Sprintf(`%s

For the %s concept %q, find 1-%d fascinating real-world applications that would excite and motivate learners, especially young learners.

Focus on:
- Modern technology applications (apps, devices, systems)
- Surprising everyday applications
- Cutting-edge research or industry uses
- Applications that show the power and relevance of this concept

Examples of the kind of applications I want:
- Fourier Transform -> Shazam music recognition, JPEG compression, MRI imaging, noise cancellation
- Machine Learning -> Netflix recommendations, autonomous cars, medical diagnosis
- Graph Theory -> GPS navigation, social networks, supply chain optimization

For each application, provide:
1. name: Clear, recognizable name (company/product if applicable)
2. brief_description: 1 sentence summary of what it does (e.g. "Shazam identifies songs from short audio clips"), used as an image search query
3. description: Extended description of how this application uses the concept, its significance and any interesting details

Return as JSON array.`, applicationSystemContext, concept.Domain, concept.Name, count)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
