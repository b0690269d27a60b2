package feeds

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	types "tendertriage/types"

	"github.com/mmcdole/gofeed"
)

// BOAMP-style descriptions carry the response deadline as free text, e.g.
// "Date limite de réponse : 17/03/2025".
var deadlinePattern = regexp.MustCompile(`(?i)date limite[^:]*:\s*(\d{2}/\d{2}/\d{4})`)

// FetchFeed retrieves and parses a tender feed, returning notice records
func FetchFeed(feedURL string, maxCount int) ([]*types.CanonicalRecord, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxCount)
	records := make([]*types.CanonicalRecord, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]
		records = append(records, itemToRecord(item))
	}

	return records, nil
}

// itemToRecord maps a single feed item to a canonical notice record
func itemToRecord(item *gofeed.Item) *types.CanonicalRecord {
	// The GUID is the source's procedure identifier when present
	procedureID := item.GUID

	// Stable notice ID from GUID, falling back to the link
	id := procedureID
	if id == "" && item.Link != "" {
		id = item.Link
	}
	id = types.GenerateID(id)

	// Parse published date
	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	// BOAMP titles lead with the buyer: "VILLE DE BREST : Mission de conseil..."
	buyer, title := splitBuyerTitle(item.Title)
	if buyer == "" && item.Author != nil {
		buyer = item.Author.Name
	}

	// Get description/summary
	description := item.Description
	if description == "" {
		description = item.Content
	}

	keywords := make([]string, len(item.Categories))
	copy(keywords, item.Categories)

	record := &types.CanonicalRecord{
		ID:          id,
		Title:       title,
		BuyerName:   buyer,
		SourceURL:   item.Link,
		ProcedureID: procedureID,
		PublishedAt: publishedAt,
		FetchedAt:   time.Now(),
		Description: description,
		Keywords:    keywords,
		Deadline:    parseDeadline(description),
	}

	return record
}

// splitBuyerTitle separates "BUYER : object" style titles. Titles without the
// separator are returned whole with an empty buyer.
func splitBuyerTitle(raw string) (buyer, title string) {
	parts := strings.SplitN(raw, " : ", 2)
	if len(parts) != 2 {
		return "", strings.TrimSpace(raw)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// parseDeadline extracts a response deadline from free-text descriptions
func parseDeadline(description string) *time.Time {
	m := deadlinePattern.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	d, err := time.Parse("02/01/2006", m[1])
	if err != nil {
		return nil
	}
	return &d
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
