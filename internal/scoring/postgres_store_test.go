//go:build integration

package scoring

import (
	"context"
	"testing"

	"github.com/riskdesk/riskdesk/internal/testutil"
)

func TestPostgresScoring_RecordAndList(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	rec := &Record{
		BookingID:  "BK-100",
		Verdict:    VerdictReview,
		RiskScore:  61,
		Confidence: 0.72,
		Subscores:  Subscores{Fraud: 0.8, Chargeback: 0.4, Credit: 0.5, Network: 0.6},
	}
	if err := store.Record(ctx, rec); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected id to be assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	if err := store.Record(ctx, &Record{BookingID: "BK-200", Verdict: VerdictApprove, RiskScore: 12, Confidence: 0.85}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	all, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all[0].BookingID != "BK-200" {
		t.Errorf("expected newest first, got %s", all[0].BookingID)
	}

	filtered, err := store.List(ctx, "BK-100", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected 1 record, got %d", len(filtered))
	}
	got := filtered[0]
	if got.Verdict != VerdictReview || got.RiskScore != 61 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Subscores.Fraud != 0.8 || got.Subscores.Network != 0.6 {
		t.Errorf("unexpected subscores: %+v", got.Subscores)
	}
}
