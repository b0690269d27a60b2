package kafka

import (
	"context"
	"errors"
	"testing"

	"tendertriage/types"
)

func TestHandleMessageRunsTriage(t *testing.T) {
	var got *types.CanonicalRecord
	h := &NoticeHandler{Triage: func(ctx context.Context, record *types.CanonicalRecord) error {
		got = record
		return nil
	}}

	mark, err := h.HandleMessage(context.Background(), []byte(`{"title":"Mission RSE","source_url":"https://boamp.fr/avis/1","procedure_id":"25-1001"}`))
	if err != nil || !mark {
		t.Fatalf("mark=%v err=%v, want marked success", mark, err)
	}
	if got == nil || got.Title != "Mission RSE" {
		t.Fatalf("triage did not receive the decoded record: %+v", got)
	}
	if got.ID == "" {
		t.Error("handler must assign an ID from the procedure identifier")
	}
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	called := false
	h := &NoticeHandler{Triage: func(ctx context.Context, record *types.CanonicalRecord) error {
		called = true
		return nil
	}}

	mark, err := h.HandleMessage(context.Background(), []byte(`{not json`))
	if err != nil || !mark {
		t.Errorf("malformed messages must be marked and dropped, mark=%v err=%v", mark, err)
	}

	mark, err = h.HandleMessage(context.Background(), []byte(`{}`))
	if err != nil || !mark {
		t.Errorf("empty notices must be marked and dropped, mark=%v err=%v", mark, err)
	}
	if called {
		t.Error("triage must not run for dropped messages")
	}
}

func TestHandleMessageLeavesFailedTriageUnmarked(t *testing.T) {
	boom := errors.New("store unavailable")
	h := &NoticeHandler{Triage: func(ctx context.Context, record *types.CanonicalRecord) error {
		return boom
	}}

	mark, err := h.HandleMessage(context.Background(), []byte(`{"title":"Mission RSE","source_url":"https://boamp.fr/avis/1"}`))
	if mark {
		t.Error("failed triage must leave the message unmarked for redelivery")
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the triage error", err)
	}
}
