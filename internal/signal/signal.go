// Package signal defines the risk signal vocabulary and the total
// normalization function that converts caller-supplied signal values into
// the canonical [0,1] risk unit.
//
// Callers send signals as a loose JSON object. Values may be absent, null,
// numeric (in [0,1] or percentage form), numeric strings, or garbage. The
// normalizer is total: every input maps to a value in [0,1], nothing ever
// errors. Downstream aggregation only ever sees canonical risk units.
package signal

import (
	"encoding/json"
	"math"
	"strconv"
)

// Known signal names. Unknown keys in a bundle are ignored by the
// aggregators but still count toward raw coverage.
const (
	DeviceRisk                  = "deviceRisk"
	IPReputationRisk            = "ipReputationRisk"
	GeoVelocityRisk             = "geoVelocityRisk"
	SharedPaymentInstrumentRisk = "sharedPaymentInstrumentRisk"
	HistoricalChargebackRisk    = "historicalChargebackRateRisk"
	CancellationSpikeRisk       = "cancellationSpikeRisk"
	BookingVelocityRisk         = "bookingVelocityRisk"
	DisputeTextAnomalyRisk      = "disputeTextAnomalyRisk"
	CreditUtilizationRisk       = "creditUtilizationRisk"
	OutstandingExposureRisk     = "outstandingExposureRisk"
	AgencyAgeRisk               = "agencyAgeRisk"
	RingConnectivityRisk        = "ringConnectivityRisk"
	SharedDeviceGraphRisk       = "sharedDeviceGraphRisk"
)

// Names lists the full known vocabulary in a stable order.
var Names = []string{
	DeviceRisk,
	IPReputationRisk,
	GeoVelocityRisk,
	SharedPaymentInstrumentRisk,
	HistoricalChargebackRisk,
	CancellationSpikeRisk,
	BookingVelocityRisk,
	DisputeTextAnomalyRisk,
	CreditUtilizationRisk,
	OutstandingExposureRisk,
	AgencyAgeRisk,
	RingConnectivityRisk,
	SharedDeviceGraphRisk,
}

// Bundle is a caller-supplied signal object, decoded straight from JSON.
// A key with a JSON null decodes to a nil value; an absent key is simply
// not in the map. Both normalize to 0, but a null key still counts toward
// the raw key total for coverage reporting.
type Bundle map[string]any

// Get returns the normalized risk value for a named signal.
// Absent keys yield 0.
func (b Bundle) Get(name string) float64 {
	return Normalize(b[name])
}

// Normalize coerces an arbitrary value into a risk unit in [0,1].
//
// Non-numeric or non-finite input yields 0. Values above 1 are treated as
// percentages and divided by 100 before clamping. Negative values floor
// at 0. Numeric strings are accepted the way the rest of the API accepts
// them (callers forward spreadsheet exports more often than you'd hope).
func Normalize(v any) float64 {
	n, ok := toFloat(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	if n > 1 {
		return Clamp01(n / 100)
	}
	return Clamp01(n)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CountPresent counts keys whose value is neither absent nor null.
// Non-numeric present values still count: presence is about the caller
// having supplied something, not about it being usable.
func CountPresent(b Bundle) int {
	n := 0
	for _, v := range b {
		if v != nil {
			n++
		}
	}
	return n
}

// CountTotal is the raw key count of the bundle, null-valued keys included.
// This is what signalCoverage.total reports.
func CountTotal(b Bundle) int {
	return len(b)
}

// coverageFloor is the minimum denominator for the missing-signal penalty.
// A caller supplying the full canonical vocabulary is not penalized for
// "completeness" relative to a smaller ad hoc bundle; a caller supplying
// very few signals is penalized against this floor.
const coverageFloor = 10

// MissingPenalty measures how incomplete a bundle is, in [0,1].
// Note the denominator floors at coverageFloor and is intentionally NOT
// the same total that CountTotal reports.
func MissingPenalty(b Bundle) float64 {
	total := CountTotal(b)
	if total < coverageFloor {
		total = coverageFloor
	}
	present := CountPresent(b)
	return Clamp01(float64(total-present) / float64(total))
}
