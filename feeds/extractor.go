package feeds

import (
	"fmt"
	"log"
	"sync"
	"time"

	"tendertriage/config"
	"tendertriage/types"

	readability "github.com/go-shiori/go-readability"
)

const extractorTimeout = 30 * time.Second

// EnrichAllNotices fetches and extracts the full notice text for all records
// using a worker pool. Records whose pages cannot be read keep their feed
// summary; enrichment failures are logged and never fail the batch.
func EnrichAllNotices(records []*types.CanonicalRecord) {
	var wg sync.WaitGroup
	recordChan := make(chan *types.CanonicalRecord, len(records))

	// Start worker pool
	for i := 0; i < config.ExtractWorkerCount; i++ {
		go func(workerID int) {
			for record := range recordChan {
				if err := enrichNotice(record); err != nil {
					log.Printf("[Worker %d] Failed to enrich %s: %v", workerID, record.SourceURL, err)
				}
				wg.Done()
			}
		}(i)
	}

	// Queue records for enrichment
	for _, record := range records {
		wg.Add(1)
		recordChan <- record
	}

	// Wait for all enrichments to complete
	wg.Wait()
	close(recordChan)
}

// enrichNotice fetches the notice page and replaces the feed summary with the
// full extracted text when the page yields more than the summary did
func enrichNotice(record *types.CanonicalRecord) error {
	if record.SourceURL == "" {
		return fmt.Errorf("notice source URL is empty")
	}

	page, err := readability.FromURL(record.SourceURL, extractorTimeout)
	if err != nil {
		return fmt.Errorf("readability extraction failed: %w", err)
	}

	if len(page.TextContent) > len(record.Description) {
		record.Description = page.TextContent
	}

	// A deadline buried in the page body beats none at all
	if record.Deadline == nil {
		record.Deadline = parseDeadline(page.TextContent)
	}

	log.Printf("✓ Enriched: %s", record.Title)
	return nil
}
