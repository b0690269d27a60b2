package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"tendertriage/analysis"
	"tendertriage/config"
	"tendertriage/dedup"
	"tendertriage/feeds"
	"tendertriage/storage"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// RunOnce executes a single end-to-end cycle: fetch the tender feed, enrich,
// triage against the store, analyze what clears the gate, archive, summary.
func RunOnce(ctx context.Context) error {
	// Initialize logging
	log.SetOutput(os.Stderr)

	runID := uuid.NewString()[:8]
	log.Printf("=== Tender Triage Run %s ===", runID)

	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	// Step 1: Fetch the tender feed
	feedURL := feeds.ResolveFeedURL(getEnvOrDefault("FEED", feeds.DefaultFeedPreset))
	log.Printf("Fetching tender feed: %s", feedURL)
	records, err := feeds.FetchFeed(feedURL, config.DefaultFeedCount)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	log.Printf("Fetched %d notices from feed", len(records))

	// Step 2: Enrich notices with the full page text
	log.Printf("Enriching notices using %d workers...", config.ExtractWorkerCount)
	feeds.EnrichAllNotices(records)

	// Step 3: Connect the notice store
	store, err := dedup.NewRedisStore(dedup.RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	// Step 4: Optional analyzer and archive (skipped if not configured)
	analyzer := analysis.NewDefaultAnalyzer(os.Getenv("ANALYSIS_MODEL"))
	if analyzer == nil {
		log.Println("Analyzer not configured; gate verdicts will be recorded without briefings")
	}
	archive := initializeArchive(ctx)

	// Step 5: Triage the batch
	pipeline := NewPipeline(store, analyzer, archive)
	results, err := pipeline.TriageBatch(ctx, records)
	if err != nil {
		return err
	}

	for i, r := range results {
		switch r.Status {
		case "new":
			log.Printf("  [%d/%d] ✅ NEW NOTICE (score %d, %s) %s", i+1, len(results), r.Score.Score, r.Verdict.Priority, r.Record.Title)
		case "duplicate":
			log.Printf("  [%d/%d] 🔄 DUPLICATE of %s", i+1, len(results), r.Decision.ExistingID)
		case "gated":
			log.Printf("  [%d/%d] ⏭️  GATED: %s", i+1, len(results), r.Verdict.Reason)
		case "cancelled":
			log.Printf("  [%d/%d] 🗑️  CANCELLED notice %s", i+1, len(results), r.Decision.ExistingID)
		case "rectified":
			log.Printf("  [%d/%d] ✏️  RECTIFIED notice %s", i+1, len(results), r.Decision.ExistingID)
		case "error":
			log.Printf("  [%d/%d] ❌ Error: %s", i+1, len(results), r.Error)
		}
	}

	displaySummary(results)
	log.Printf("=== Run %s Complete ===", runID)
	return nil
}

// initializeArchive returns an S3-backed notice archive if configured via env.
// Required: S3_BUCKET. Optional: S3_REGION, S3_PROFILE, S3_USE_PATH_STYLE=true
func initializeArchive(ctx context.Context) NoticeArchive {
	bucket := strings.TrimSpace(os.Getenv("S3_BUCKET"))
	if bucket == "" {
		log.Println("S3 not configured; skipping archive")
		return nil
	}

	archive, err := storage.NewArchive(ctx, storage.ArchiveConfig{
		Bucket:       bucket,
		Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	})
	if err != nil {
		log.Printf("Warning: failed to init archive: %v (archiving disabled)", err)
		return nil
	}
	return archive
}

func displaySummary(results []NoticeResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
	}

	log.Println("\n=== Triage Summary ===")
	log.Printf("Total Notices:  %d", len(results))
	log.Printf("New:            %d", counts["new"])
	log.Printf("Gated:          %d", counts["gated"])
	log.Printf("Duplicates:     %d", counts["duplicate"])
	log.Printf("Rectified:      %d", counts["rectified"])
	log.Printf("Cancelled:      %d", counts["cancelled"])
	log.Printf("Errors:         %d", counts["error"])
	log.Println("======================")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
