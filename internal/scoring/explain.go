package scoring

import (
	"sort"

	"github.com/riskdesk/riskdesk/internal/signal"
)

// directionIncreases is the only direction the additive model can produce.
const directionIncreases = "increases_risk"

// maxFactors caps the ranked factor list.
const maxFactors = 6

// explainedTerms is the curated set of weighted terms the ranker considers,
// spanning all four categories. Not every aggregation term is explained:
// the low-weight tail (dispute text, agency age, shared device graph) adds
// noise without changing what a reviewer acts on.
var explainedTerms = []weightedTerm{
	{signal.DeviceRisk, 0.35},
	{signal.IPReputationRisk, 0.25},
	{signal.GeoVelocityRisk, 0.25},
	{signal.SharedPaymentInstrumentRisk, 0.15},
	{signal.HistoricalChargebackRisk, 0.45},
	{signal.CancellationSpikeRisk, 0.25},
	{signal.BookingVelocityRisk, 0.20},
	{signal.CreditUtilizationRisk, 0.55},
	{signal.OutstandingExposureRisk, 0.30},
	{signal.RingConnectivityRisk, 0.60},
}

// topFactors ranks the per-term weighted contributions, drops the
// non-positive ones, and returns the top entries in descending order.
// Contributions are reported on the 0–100 scale.
func topFactors(bundle signal.Bundle) []Factor {
	type contribution struct {
		key   string
		value float64
	}

	contribs := make([]contribution, 0, len(explainedTerms))
	for _, t := range explainedTerms {
		c := t.Weight * bundle.Get(t.Name)
		if c > 0 {
			contribs = append(contribs, contribution{key: t.Name, value: c})
		}
	}

	// Stable so equal contributions keep the curated-list order.
	sort.SliceStable(contribs, func(i, j int) bool {
		return contribs[i].value > contribs[j].value
	})

	if len(contribs) > maxFactors {
		contribs = contribs[:maxFactors]
	}

	factors := make([]Factor, 0, len(contribs))
	for _, c := range contribs {
		factors = append(factors, Factor{
			Key:          c.key,
			Contribution: signal.Round2(c.value * 100),
			Direction:    directionIncreases,
		})
	}
	return factors
}

// Qualitative note thresholds. networkRingNote fires on the network
// sub-score, not the fused score.
const networkRingThreshold = 0.70

// buildNotes emits every qualifying note; the checks are independent,
// not a first-match chain.
func buildNotes(fused, confidence, network float64) []string {
	notes := []string{}
	if confidence <= LowConfidenceCeiling {
		notes = append(notes, "Low confidence: route to human review (uncertainty handling).")
	}
	if network >= networkRingThreshold {
		notes = append(notes, "Network signals suggest possible ring behavior.")
	}
	if fused >= RejectThreshold {
		notes = append(notes, "Risk above rejection threshold (policy guardrail).")
	}
	return notes
}
