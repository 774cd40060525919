package override

import (
	"context"
	"sync"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_AppendAssignsLedgerIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i, want := range []string{"OVR-0001", "OVR-0002", "OVR-0003"} {
		saved, err := store.Append(ctx, &Record{Rationale: "confirm"})
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if saved.ID != want {
			t.Errorf("append %d: id = %s, want %s", i, saved.ID, want)
		}
		if saved.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	}
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "OVR-0001"},
		{42, "OVR-0042"},
		{9999, "OVR-9999"},
		{10000, "OVR-10000"},
	}
	for _, tt := range tests {
		if got := FormatID(tt.seq); got != tt.want {
			t.Errorf("FormatID(%d) = %s, want %s", tt.seq, got, tt.want)
		}
	}
}

func TestMemoryStore_ListMostRecentFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, &Record{}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "OVR-0003" || records[1].ID != "OVR-0002" {
		t.Errorf("unexpected order: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestMemoryStore_ListDefaultLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < DefaultListLimit+10; i++ {
		if _, err := store.Append(ctx, &Record{}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != DefaultListLimit {
		t.Errorf("expected %d records, got %d", DefaultListLimit, len(records))
	}
}

func TestMemoryStore_RecordsAreImmutable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := &Record{
		CaseID: strPtr("CASE-1"),
		Meta:   map[string]any{"k": "v"},
	}
	saved, err := store.Append(ctx, in)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Mutating inputs and outputs must not touch the ledger.
	*in.CaseID = "tampered"
	in.Meta["k"] = "tampered"
	*saved.CaseID = "tampered"
	saved.Meta["k"] = "tampered"

	records, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := *records[0].CaseID; got != "CASE-1" {
		t.Errorf("caseId mutated to %q", got)
	}
	if got := records[0].Meta["k"]; got != "v" {
		t.Errorf("meta mutated to %v", got)
	}
}

func TestMemoryStore_ConcurrentAppendsKeepIDsUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Append(ctx, &Record{}); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	records, err := store.List(ctx, 200)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 100 {
		t.Fatalf("expected 100 records, got %d", len(records))
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		if seen[rec.ID] {
			t.Errorf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
	}
	if !seen["OVR-0001"] || !seen["OVR-0100"] {
		t.Error("expected ids to cover OVR-0001 through OVR-0100")
	}
}
