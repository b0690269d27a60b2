package analysis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"tendertriage/types"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// Analyzer abstracts the expensive generation step that runs only for notices
// the gate lets through.
type Analyzer interface {
	Analyze(ctx context.Context, record *types.CanonicalRecord, score types.ScoreResult) (*Result, error)
	ModelName() string
}

// Result is the generated briefing for one analyzed notice
type Result struct {
	NoticeID    string    `json:"notice_id"`
	Summary     string    `json:"summary"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewDefaultAnalyzer returns an analyzer if configured via env
// Currently supports Cohere when COHERE_API_KEY is set.
func NewDefaultAnalyzer(preferredModel string) Analyzer {
	cohereKey := os.Getenv("COHERE_API_KEY")
	if cohereKey == "" {
		return nil
	}

	model := preferredModel
	if model == "" {
		model = "command-r-08-2024"
	}

	// Create a custom HTTP client that forces HTTP/1.1 to avoid HTTP/2 protocol errors
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(cohereKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereAnalyzer{client: client, model: model}
}

// CohereAnalyzer implements Analyzer using the Cohere Chat API
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereAnalyzer struct {
	client *cohereclient.Client
	model  string
}

func (c *CohereAnalyzer) ModelName() string { return c.model }

func (c *CohereAnalyzer) Analyze(ctx context.Context, record *types.CanonicalRecord, score types.ScoreResult) (*Result, error) {
	if record == nil {
		return nil, errors.New("nil notice record")
	}

	// Use a short per-request timeout to avoid hanging
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	prompt := buildPrompt(record, score)
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   &c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Text == "" {
		return nil, errors.New("cohere chat returned empty response")
	}

	return &Result{
		NoticeID:    record.ID,
		Summary:     resp.Text,
		Model:       c.model,
		GeneratedAt: time.Now(),
	}, nil
}

// buildPrompt assembles the briefing request from the notice and its scoring
func buildPrompt(record *types.CanonicalRecord, score types.ScoreResult) string {
	var b strings.Builder
	b.WriteString("Tu es un analyste d'appels d'offres publics français.\n")
	b.WriteString("Rédige une note de synthèse courte pour l'avis suivant : ")
	b.WriteString("objet du marché, acheteur, échéance, et pourquoi il correspond ")
	b.WriteString("(ou non) à un cabinet de conseil RSE / société à mission.\n\n")

	fmt.Fprintf(&b, "Titre : %s\n", record.Title)
	fmt.Fprintf(&b, "Acheteur : %s\n", record.BuyerName)
	if record.Region != "" {
		fmt.Fprintf(&b, "Région : %s\n", record.Region)
	}
	if record.Budget > 0 {
		fmt.Fprintf(&b, "Budget estimé : %.0f EUR\n", record.Budget)
	}
	if record.Deadline != nil {
		fmt.Fprintf(&b, "Date limite : %s\n", record.Deadline.Format("02/01/2006"))
	}
	fmt.Fprintf(&b, "Score de pertinence : %d/100 (%s)\n", score.Score, score.Confidence)
	for _, m := range score.CategoryMatches {
		fmt.Fprintf(&b, "- %s : %s\n", m.Category, strings.Join(m.Terms, ", "))
	}
	b.WriteString("\nDescription :\n")
	b.WriteString(record.Description)
	return b.String()
}
