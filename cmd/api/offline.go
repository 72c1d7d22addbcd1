package main

import (
	"context"

	"lecturelens/internal/imagesearch"
)

// offlineSearcher backs the -offline flag with a canned image result so the
// full pipeline shape can be exercised without credentials.
type offlineSearcher struct{}

func (offlineSearcher) Search(_ context.Context, query string) ([]imagesearch.Image, error) {
	return []imagesearch.Image{{
		URL:   "https://example.invalid/offline.png",
		Title: query,
	}}, nil
}
