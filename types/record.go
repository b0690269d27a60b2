package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// CanonicalRecord represents a single normalized tender notice as produced by
// the fetch layer. It is immutable once fetched; the triage core only reads it.
type CanonicalRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	BuyerName   string `json:"buyer_name"`
	Region      string `json:"region,omitempty"`
	SourceURL   string `json:"source_url"`
	ProcedureID string `json:"procedure_id,omitempty"` // source-global identifier (e.g. BOAMP idweb), may be empty
	BuyerSiret  string `json:"buyer_siret,omitempty"`

	// Lifecycle
	State           string     `json:"state,omitempty"` // e.g. "published", "cancelled"
	NatureLabel     string     `json:"nature_label,omitempty"`
	NatureCode      string     `json:"nature_code,omitempty"`
	LinkedNoticeRef string     `json:"linked_notice_ref,omitempty"`
	PriorNoticesRef string     `json:"prior_notices_ref,omitempty"`
	PublishedAt     time.Time  `json:"published_at"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	FetchedAt       time.Time  `json:"fetched_at"`

	// Content
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`

	// Classification
	MarketType    string `json:"market_type,omitempty"` // SERVICES, TRAVAUX, FOURNITURES
	ProcedureType string `json:"procedure_type,omitempty"`
	Family        string `json:"family,omitempty"`

	// Metadata
	Budget        float64  `json:"budget,omitempty"`
	BuyerEmail    string   `json:"buyer_email,omitempty"`
	BuyerPhone    string   `json:"buyer_phone,omitempty"`
	AwardCriteria string   `json:"award_criteria,omitempty"`
	Flags         []string `json:"flags,omitempty"`

	// Source-specific payload, parsed at the fetch boundary
	Payload RawPayload `json:"payload,omitempty"`
}

// StateCancelled is the lifecycle state set by sources that flag withdrawn notices explicitly.
const StateCancelled = "cancelled"

// PayloadKind identifies which sub-shape of RawPayload is populated.
type PayloadKind string

const (
	PayloadBoamp  PayloadKind = "boamp"
	PayloadTED    PayloadKind = "ted"
	PayloadOpaque PayloadKind = "opaque"
)

// RawPayload carries the source-specific portion of a notice. Known shapes are
// parsed at the fetch boundary; anything else is kept opaque and never
// interpreted by the triage core.
type RawPayload struct {
	Kind   PayloadKind     `json:"kind,omitempty"`
	Boamp  *BoampPayload   `json:"boamp,omitempty"`
	TED    *TEDPayload     `json:"ted,omitempty"`
	Opaque json.RawMessage `json:"opaque,omitempty"`
}

// BoampPayload holds the BOAMP-specific fields the classifier cares about.
type BoampPayload struct {
	FinancialCriteria string `json:"financial_criteria,omitempty"`
	TechnicalCriteria string `json:"technical_criteria,omitempty"`
	AnnonceRef        string `json:"annonce_ref,omitempty"`
}

// TEDPayload holds the TED-specific fields the classifier cares about.
type TEDPayload struct {
	SelectionCriteria string `json:"selection_criteria,omitempty"`
	NoticeType        string `json:"notice_type,omitempty"`
}

// FinancialCriteria returns the financial eligibility text block, or "" when
// the payload does not carry one (malformed blocks are parsed to "" upstream).
func (r *CanonicalRecord) FinancialCriteria() string {
	if r.Payload.Kind == PayloadBoamp && r.Payload.Boamp != nil {
		return r.Payload.Boamp.FinancialCriteria
	}
	if r.Payload.Kind == PayloadTED && r.Payload.TED != nil {
		return r.Payload.TED.SelectionCriteria
	}
	return ""
}

// TechnicalCriteria returns the technical eligibility text block, if any.
func (r *CanonicalRecord) TechnicalCriteria() string {
	if r.Payload.Kind == PayloadBoamp && r.Payload.Boamp != nil {
		return r.Payload.Boamp.TechnicalCriteria
	}
	return ""
}

// StoredRecord is the persisted projection of a notice that already went
// through triage: its id, the three dedup keys, and the fields the change
// classifier diffs against on a later revision.
type StoredRecord struct {
	ID           string `json:"id"`
	UUIDKey      string `json:"uuid_key,omitempty"`
	CompositeKey string `json:"composite_key"`
	SecondaryKey string `json:"secondary_key,omitempty"`

	Title             string     `json:"title"`
	BuyerName         string     `json:"buyer_name"`
	Region            string     `json:"region,omitempty"`
	MarketType        string     `json:"market_type,omitempty"`
	Budget            float64    `json:"budget,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	FinancialCriteria string     `json:"financial_criteria,omitempty"`
	TechnicalCriteria string     `json:"technical_criteria,omitempty"`

	Score      int       `json:"score"`
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
