package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"lecturelens/internal/config"
	"lecturelens/internal/document"
	"lecturelens/internal/gateway/handler"
	"lecturelens/internal/gateway/middleware"
	"lecturelens/internal/imagesearch"
	"lecturelens/internal/llm"
	"lecturelens/internal/statestore"
	"lecturelens/internal/workflow"
)

func main() {
	port := flag.String("port", ":8000", "server port")
	offline := flag.Bool("offline", false, "run with canned model and search responses")
	flag.Parse()

	cfg := config.Load()
	if cfg.ListenAddr != "" {
		*port = cfg.ListenAddr
	}

	ctx := context.Background()

	var visionCli, textCli llm.Client
	var searcher imagesearch.Searcher
	if *offline {
		fake := llm.NewFakeClient()
		visionCli, textCli = fake, fake
		searcher = offlineSearcher{}
		log.Printf("running offline with canned responses")
	} else {
		if err := cfg.Validate(); err != nil {
			log.Fatal(err)
		}
		var err error
		visionCli, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiVisionModel,
			RPS:    cfg.LLMRPS,
			Burst:  cfg.LLMBurst,
		})
		if err != nil {
			log.Fatalf("init vision model client: %v", err)
		}
		defer visionCli.Close()

		textCli, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			RPS:    cfg.LLMRPS,
			Burst:  cfg.LLMBurst,
		})
		if err != nil {
			log.Fatalf("init text model client: %v", err)
		}
		defer textCli.Close()

		searcher, err = imagesearch.NewGoogleSearcher(ctx, imagesearch.Config{
			APIKey:     cfg.GoogleAPIKey,
			CSEID:      cfg.GoogleCSEID,
			MaxResults: cfg.MaxImageResults,
			Safe:       cfg.ImageSearchSafe,
			RPS:        cfg.ImageSearchRPS,
		})
		if err != nil {
			log.Fatalf("init image search: %v", err)
		}
	}

	docs := buildDocumentStore(cfg)
	snapshots, err := statestore.New(cfg.StateSnapshotPath, cfg.StateDatabaseURL)
	if err != nil {
		log.Fatalf("init state store: %v", err)
	}

	hub := handler.NewHub()
	h := &handler.Handler{
		Orchestrator: &workflow.Orchestrator{
			Extractor: &workflow.ConceptExtractor{
				LLM:                 visionCli,
				Docs:                docs,
				ConfidenceThreshold: cfg.ConfidenceThreshold,
				MaxConcepts:         cfg.MaxConcepts,
			},
			Finder: &workflow.ApplicationFinder{
				LLM:    textCli,
				Images: searcher,
				Delay:  cfg.ConceptDelay,
			},
			Roadmaps:     &workflow.RoadmapGenerator{LLM: textCli},
			RoadmapDelay: cfg.RoadmapDelay,
			Emitter:      hub,
		},
		Docs:      docs,
		Snapshots: snapshots,
		Timeout:   cfg.WorkflowTimeout,
	}

	mux := http.NewServeMux()
	h.Register(mux)

	srv := middleware.CORS(mux)
	log.Printf("listening on %s", *port)
	log.Fatal(http.ListenAndServe(*port, h2c.NewHandler(srv, &http2.Server{})))
}

func buildDocumentStore(cfg *config.Config) document.Store {
	if strings.TrimSpace(cfg.Staging.Endpoint) != "" {
		store, err := document.NewS3Store(document.S3Config{
			Endpoint:  cfg.Staging.Endpoint,
			Region:    cfg.Staging.Region,
			AccessKey: cfg.Staging.AccessKey,
			SecretKey: cfg.Staging.SecretKey,
			Bucket:    cfg.Staging.Bucket,
			UseSSL:    cfg.Staging.UseSSL,
		})
		if err != nil {
			log.Fatalf("init s3 staging: %v", err)
		}
		log.Printf("staging documents from s3 endpoint %s", cfg.Staging.Endpoint)
		return store
	}
	log.Printf("staging documents from %s", cfg.StagingDir)
	return document.NewLocalStore(cfg.StagingDir)
}
