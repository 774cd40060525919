// Package override implements the append-only ledger of human review
// decisions that confirm or overturn an automated verdict.
//
// Records are immutable once written and ids are assigned exactly once, in
// strict insertion order (OVR-0001, OVR-0002, …). There is no update or
// delete operation; the ledger only grows. History feeds later audits and
// model training, so losing or renumbering an entry is never acceptable.
package override

import (
	"context"
	"fmt"
	"time"
)

// Record is one human override. The nullable fields mirror what reviewers
// actually submit: a quick confirm often carries no case or booking id.
type Record struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	CaseID    *string        `json:"caseId"`
	BookingID *string        `json:"bookingId"`
	Label     *string        `json:"label"`
	Rationale string         `json:"rationale"`
	Meta      map[string]any `json:"meta"`
}

// FormatID renders the ledger id for a 1-based sequence number. Four-digit
// zero padding; sequences past 9999 widen naturally.
func FormatID(seq int64) string {
	return fmt.Sprintf("OVR-%04d", seq)
}

// Store is the append/list contract. Append assigns the next sequential id
// and insertion timestamp and returns the stored copy; implementations must
// serialize id assignment so ids are strictly increasing and never reused.
type Store interface {
	Append(ctx context.Context, rec *Record) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
}

// DefaultListLimit is used when a caller does not name a limit.
const DefaultListLimit = 50
