// Package imagesearch wraps Google Custom Search image queries behind a small
// interface so the pipeline can swap in test doubles.
package imagesearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Image describes one search hit. Every field is optional; providers routinely
// omit dimensions or thumbnails.
type Image struct {
	URL          string `json:"url,omitempty"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Context      string `json:"context_snippet,omitempty"`
	Width        int64  `json:"width,omitempty"`
	Height       int64  `json:"height,omitempty"`
}

// Searcher returns an ordered list of image hits for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Image, error)
}

// Config carries construction options for the Google client.
type Config struct {
	APIKey     string
	CSEID      string
	MaxResults int
	Safe       string
	RPS        float64
	CacheSize  int
	CacheTTL   time.Duration
}

// GoogleSearcher queries the Custom Search JSON API with a token-bucket rate
// limit and an expiring LRU cache keyed by query.
type GoogleSearcher struct {
	svc        *customsearch.Service
	cseID      string
	maxResults int64
	safe       string
	limiter    *rate.Limiter
	cache      *expirable.LRU[string, []Image]
}

func NewGoogleSearcher(ctx context.Context, cfg Config, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.CSEID) == "" {
		return nil, fmt.Errorf("imagesearch: api key and search engine id are required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("imagesearch: init service: %w", err)
	}

	maxResults := int64(cfg.MaxResults)
	if maxResults <= 0 {
		maxResults = 2
	}
	safe := cfg.Safe
	if safe == "" {
		safe = "active"
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	return &GoogleSearcher{
		svc:        svc,
		cseID:      cfg.CSEID,
		maxResults: maxResults,
		safe:       safe,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      expirable.NewLRU[string, []Image](cacheSize, nil, cacheTTL),
	}, nil
}

func (g *GoogleSearcher) Search(ctx context.Context, query string) ([]Image, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if hit, ok := g.cache.Get(query); ok {
		return hit, nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := g.svc.Cse.List().
		Cx(g.cseID).
		Q(query).
		SearchType("image").
		Safe(g.safe).
		Num(g.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("imagesearch: %q: %w", query, err)
	}

	images := make([]Image, 0, len(resp.Items))
	for _, item := range resp.Items {
		img := Image{
			URL:     item.Link,
			Title:   item.Title,
			Context: item.Snippet,
		}
		if item.Image != nil {
			img.ThumbnailURL = item.Image.ThumbnailLink
			img.Width = item.Image.Width
			img.Height = item.Image.Height
		}
		images = append(images, img)
	}
	g.cache.Add(query, images)
	return images, nil
}
