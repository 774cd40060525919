// Package creditpolicy maps a (trust, risk) pair to a bounded credit-limit
// action with a multiplier applied to the agency's current limit.
//
// The policy is an explicit ordered rule list. Rules are evaluated in
// sequence and a later match overrides an earlier one, so the
// highest-severity condition (PAUSE) always wins last. Keeping the chain as
// data makes the override semantics auditable and testable apart from the
// arithmetic.
package creditpolicy

import (
	"math"
	"strconv"

	"github.com/riskdesk/riskdesk/internal/signal"
)

// Action is the recommended credit-limit move.
type Action string

const (
	ActionExpand   Action = "EXPAND"
	ActionHold     Action = "HOLD"
	ActionContract Action = "CONTRACT"
	ActionPause    Action = "PAUSE"
)

// Policy thresholds on normalized trust and risk.
const (
	expandMinTrust  = 0.78
	expandMaxRisk   = 0.28
	contractMinRisk = 0.55
	contractMaxRisk = 0.75
	pauseMaxTrust   = 0.42
	pauseMinRisk    = 0.75
)

// multipliers maps each action to the factor applied to the current limit.
var multipliers = map[Action]float64{
	ActionExpand:   1.15,
	ActionHold:     1.0,
	ActionContract: 0.75,
	ActionPause:    0,
}

// Multiplier returns the credit-limit factor for an action.
func Multiplier(a Action) float64 {
	return multipliers[a]
}

// rule is one entry in the ordered policy chain.
type rule struct {
	action  Action
	applies func(trust, risk float64) bool
}

// rules in evaluation order. The conditions can overlap; order is the
// override semantics, so do not reorder.
var rules = []rule{
	{ActionExpand, func(trust, risk float64) bool {
		return trust >= expandMinTrust && risk <= expandMaxRisk
	}},
	{ActionContract, func(_, risk float64) bool {
		return risk >= contractMinRisk && risk < contractMaxRisk
	}},
	{ActionPause, func(trust, risk float64) bool {
		return trust <= pauseMaxTrust || risk >= pauseMinRisk
	}},
}

// Recommendation is the policy output for one agency.
type Recommendation struct {
	Action                 Action   `json:"action"`
	CurrentCreditLimit     int64    `json:"currentCreditLimit"`
	RecommendedCreditLimit int64    `json:"recommendedCreditLimit"`
	Rationale              []string `json:"rationale"`
}

// Recommend evaluates the policy chain for the given trust score, risk
// score, and current credit limit. Inputs pass through the signal
// normalizer, so percentage-form values are accepted. The function is
// total: any input yields a well-formed recommendation.
func Recommend(trustScore, riskScore, currentCreditLimit any) *Recommendation {
	trust := signal.Normalize(trustScore)
	risk := signal.Normalize(riskScore)

	action := ActionHold
	for _, r := range rules {
		if r.applies(trust, risk) {
			action = r.action
		}
	}

	current := safeInt(currentCreditLimit)
	recommended := int64(math.Round(float64(current) * Multiplier(action)))
	if recommended < 0 {
		recommended = 0
	}

	return &Recommendation{
		Action:                 action,
		CurrentCreditLimit:     current,
		RecommendedCreditLimit: recommended,
		Rationale: []string{
			"trust=" + formatScore(signal.Round2(trust)),
			"risk=" + formatScore(signal.Round2(risk)),
			"policy=" + string(action),
		},
	}
}

// safeInt coerces an arbitrary value to a rounded integer, 0 on garbage.
func safeInt(v any) int64 {
	n := 0.0
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int64(math.Round(n))
}

// formatScore renders a rounded score without trailing zeros ("0.9", not
// "0.90"), matching what reviewers see elsewhere in the audit trail.
func formatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
