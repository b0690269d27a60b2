package kafka

import (
	"context"
	"encoding/json"
	"log"

	"tendertriage/types"
)

// TriageFunc runs the full triage pipeline for one incoming notice
type TriageFunc func(ctx context.Context, record *types.CanonicalRecord) error

// NoticeHandler decodes notice messages and hands them to the triage pipeline.
// Malformed or empty messages are marked and dropped; pipeline failures leave
// the message unmarked so the broker redelivers it.
type NoticeHandler struct {
	Triage TriageFunc
}

// HandleMessage implements MessageHandler
func (h *NoticeHandler) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var record types.CanonicalRecord
	if err := json.Unmarshal(message, &record); err != nil {
		log.Printf("❌ Failed to unmarshal notice: %v", err)
		return true, nil // Mark to skip invalid messages
	}

	if record.Title == "" && record.SourceURL == "" {
		log.Println("Skipping notice with neither title nor source URL")
		return true, nil
	}

	if record.ID == "" {
		id := record.ProcedureID
		if id == "" {
			id = record.SourceURL
		}
		record.ID = types.GenerateID(id)
	}

	if err := h.Triage(ctx, &record); err != nil {
		return false, err // Don't mark - allow retry
	}

	return true, nil
}
