package scoring

import (
	"math"

	"github.com/riskdesk/riskdesk/internal/signal"
)

// weightedTerm binds a signal name to its coefficient within a category.
type weightedTerm struct {
	Name   string
	Weight float64
}

// Category weight tables. Each table's weights sum to 1.0, so the raw
// weighted sum of normalized signals is already in [0,1].
var (
	fraudTerms = []weightedTerm{
		{signal.DeviceRisk, 0.35},
		{signal.IPReputationRisk, 0.25},
		{signal.GeoVelocityRisk, 0.25},
		{signal.SharedPaymentInstrumentRisk, 0.15},
	}
	chargebackTerms = []weightedTerm{
		{signal.HistoricalChargebackRisk, 0.45},
		{signal.CancellationSpikeRisk, 0.25},
		{signal.BookingVelocityRisk, 0.20},
		{signal.DisputeTextAnomalyRisk, 0.10},
	}
	creditTerms = []weightedTerm{
		{signal.CreditUtilizationRisk, 0.55},
		{signal.OutstandingExposureRisk, 0.30},
		{signal.AgencyAgeRisk, 0.15},
	}
	networkTerms = []weightedTerm{
		{signal.RingConnectivityRisk, 0.60},
		{signal.SharedDeviceGraphRisk, 0.40},
	}
)

// Fusion weights across the four categories. Sum to 1.0.
const (
	fusedWeightFraud      = 0.34
	fusedWeightChargeback = 0.26
	fusedWeightCredit     = 0.25
	fusedWeightNetwork    = 0.15
)

// Confidence model: start from a base and subtract penalties for missing
// signals and for disagreement between the four sub-scores.
const (
	confidenceBase     = 0.85
	missingWeight      = 0.35
	disagreementWeight = 0.25
	disagreementScale  = 2.5
)

// Engine scores booking signal bundles. Zero-value construction would work
// too; New exists so the server wires it the same way as stateful services.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score evaluates a signal bundle and returns the full decision.
// Pure in-memory computation; safe for arbitrarily many concurrent callers.
func (e *Engine) Score(bundle signal.Bundle) *Decision {
	fraud := subscore(bundle, fraudTerms)
	chargeback := subscore(bundle, chargebackTerms)
	credit := subscore(bundle, creditTerms)
	network := subscore(bundle, networkTerms)

	fused := signal.Clamp01(
		fusedWeightFraud*fraud +
			fusedWeightChargeback*chargeback +
			fusedWeightCredit*credit +
			fusedWeightNetwork*network,
	)

	confidence := signal.Clamp01(
		confidenceBase -
			missingWeight*signal.MissingPenalty(bundle) -
			disagreementWeight*disagreementPenalty(fraud, chargeback, credit, network),
	)

	// First match wins: a fused score past the reject line is terminal,
	// and uncertainty alone is enough to defeat an auto-approve.
	verdict := VerdictApprove
	switch {
	case fused >= RejectThreshold:
		verdict = VerdictReject
	case fused >= ReviewThreshold || confidence <= LowConfidenceCeiling:
		verdict = VerdictReview
	}

	return &Decision{
		Decision:   verdict,
		RiskScore:  int(math.Round(fused * 100)),
		Confidence: signal.Round2(confidence),
		Subscores: Subscores{
			Fraud:      signal.Round2(fraud),
			Chargeback: signal.Round2(chargeback),
			Credit:     signal.Round2(credit),
			Network:    signal.Round2(network),
		},
		Explainability: Explainability{
			TopFactors: topFactors(bundle),
			Notes:      buildNotes(fused, confidence, network),
			SignalCoverage: Coverage{
				Present: signal.CountPresent(bundle),
				Total:   signal.CountTotal(bundle),
			},
		},
	}
}

// subscore computes a category aggregate: the weighted sum of normalized
// signals, clamped to [0,1].
func subscore(bundle signal.Bundle, terms []weightedTerm) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t.Weight * bundle.Get(t.Name)
	}
	return signal.Clamp01(sum)
}

// disagreementPenalty scales the population variance of the four sub-scores.
// Near-identical sub-scores yield near-zero penalty; sub-scores spread
// across [0,1] approach the ceiling.
func disagreementPenalty(scores ...float64) float64 {
	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	return signal.Clamp01(disagreementScale * variance)
}
