// Package scoring implements the booking risk decision engine.
//
// Every scoring call fuses four category sub-scores (fraud, chargeback,
// credit, network), each a weighted linear combination of normalized
// signals, into a single fused score, derives a confidence estimate from
// signal coverage and sub-score disagreement, and maps (fused, confidence)
// to a three-way verdict. The engine is pure and stateless: the same bundle
// always produces the same decision, and concurrent callers need no
// coordination.
//
// The model is monotonic. No signal can lower the fused score, which is why
// every explainability factor carries the increases_risk direction tag.
package scoring

import (
	"context"
	"time"
)

// Verdict is the engine's three-way decision on a booking.
type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReview  Verdict = "REVIEW"
	VerdictReject  Verdict = "REJECT"
)

// Decision thresholds, checked in priority order: reject first, then the
// review clause (either score or uncertainty is enough), approve otherwise.
const (
	RejectThreshold      = 0.82
	ReviewThreshold      = 0.55
	LowConfidenceCeiling = 0.55
)

// Subscores holds the four category aggregates, rounded to 2 decimals.
type Subscores struct {
	Fraud      float64 `json:"fraud"`
	Chargeback float64 `json:"chargeback"`
	Credit     float64 `json:"credit"`
	Network    float64 `json:"network"`
}

// Factor is one ranked explainability term. Contribution is the weighted
// signal contribution on the 0–100 scale, rounded to 2 decimals. Direction
// is always "increases_risk": the additive model has no risk-reducing
// signals, and the tag is kept explicit so a future bidirectional model
// has somewhere to land.
type Factor struct {
	Key          string  `json:"key"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

// Coverage reports how much of the signal bundle was actually supplied.
// Total is the raw key count of the caller's bundle, deliberately not the
// floored denominator the confidence penalty uses.
type Coverage struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

// Explainability is the human-auditable half of a decision.
type Explainability struct {
	TopFactors     []Factor `json:"topFactors"`
	Notes          []string `json:"notes"`
	SignalCoverage Coverage `json:"signalCoverage"`
}

// Decision is the result of one scoring call.
type Decision struct {
	Decision       Verdict        `json:"decision"`
	RiskScore      int            `json:"riskScore"`
	Confidence     float64        `json:"confidence"`
	Subscores      Subscores      `json:"subscores"`
	Explainability Explainability `json:"explainability"`
}

// Record is a persisted decision, kept as an audit trail so reviewers can
// see what the engine said at the time, not what it would say now.
type Record struct {
	ID         int64     `json:"id"`
	BookingID  string    `json:"bookingId,omitempty"`
	Verdict    Verdict   `json:"decision"`
	RiskScore  int       `json:"riskScore"`
	Confidence float64   `json:"confidence"`
	Subscores  Subscores `json:"subscores"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists decision records for audit. Writes are best-effort and
// never on the scoring path.
type Store interface {
	Record(ctx context.Context, rec *Record) error
	List(ctx context.Context, bookingID string, limit int) ([]*Record, error)
}
