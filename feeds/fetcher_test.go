package feeds

import (
	"testing"
	"time"
)

func TestSplitBuyerTitle(t *testing.T) {
	buyer, title := splitBuyerTitle("VILLE DE BREST : Mission de conseil RSE")
	if buyer != "VILLE DE BREST" || title != "Mission de conseil RSE" {
		t.Errorf("got buyer=%q title=%q", buyer, title)
	}

	buyer, title = splitBuyerTitle("Mission de conseil RSE")
	if buyer != "" || title != "Mission de conseil RSE" {
		t.Errorf("title without separator: got buyer=%q title=%q", buyer, title)
	}
}

func TestParseDeadline(t *testing.T) {
	d := parseDeadline("Objet du marché. Date limite de réponse : 17/03/2025 à 12h00.")
	if d == nil {
		t.Fatal("expected a parsed deadline")
	}
	want := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("deadline = %v, want %v", d, want)
	}

	if d := parseDeadline("Aucune date mentionnée."); d != nil {
		t.Errorf("expected nil deadline, got %v", d)
	}

	if d := parseDeadline("Date limite de réponse : 45/99/2025"); d != nil {
		t.Errorf("invalid date must yield nil, got %v", d)
	}
}

func TestResolveFeedURL(t *testing.T) {
	if got := ResolveFeedURL("boamp"); got != FeedPresets["boamp"] {
		t.Errorf("preset resolution failed: %q", got)
	}
	direct := "https://example.org/custom.rss"
	if got := ResolveFeedURL(direct); got != direct {
		t.Errorf("direct URL must pass through, got %q", got)
	}
}
