package feeds

// DefaultFeedPreset is the feed used when none is configured
const DefaultFeedPreset = "boamp"

// FeedPresets maps friendly names to tender feed URLs
var FeedPresets = map[string]string{
	"boamp":     "https://www.boamp.fr/flux/rss/avis-marches-publics",
	"boamp-svc": "https://www.boamp.fr/flux/rss/avis-marches-publics-services",
	"ted":       "https://ted.europa.eu/fr/rss/notices",
	"aws":       "https://www.marches-publics.gouv.fr/rss/avis.xml",
}

// ResolveFeedURL resolves a feed identifier to a URL
// If the input is a preset name, returns the corresponding URL
// Otherwise, returns the input as-is (assuming it's a direct URL)
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}
