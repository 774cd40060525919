package creditpolicy

import (
	"reflect"
	"testing"
)

func TestRecommend_Expand(t *testing.T) {
	rec := Recommend(0.9, 0.1, 100000)

	if rec.Action != ActionExpand {
		t.Fatalf("expected EXPAND, got %s", rec.Action)
	}
	if rec.CurrentCreditLimit != 100000 {
		t.Errorf("expected current 100000, got %d", rec.CurrentCreditLimit)
	}
	if rec.RecommendedCreditLimit != 115000 {
		t.Errorf("expected recommended 115000, got %d", rec.RecommendedCreditLimit)
	}
	want := []string{"trust=0.9", "risk=0.1", "policy=EXPAND"}
	if !reflect.DeepEqual(rec.Rationale, want) {
		t.Errorf("rationale = %v, want %v", rec.Rationale, want)
	}
}

func TestRecommend_HoldIsTheDefault(t *testing.T) {
	// Middling trust, low-but-not-expandable risk: no rule fires.
	rec := Recommend(0.6, 0.4, 50000)

	if rec.Action != ActionHold {
		t.Fatalf("expected HOLD, got %s", rec.Action)
	}
	if rec.RecommendedCreditLimit != 50000 {
		t.Errorf("expected limit unchanged at 50000, got %d", rec.RecommendedCreditLimit)
	}
}

func TestRecommend_Contract(t *testing.T) {
	rec := Recommend(0.7, 0.6, 80000)

	if rec.Action != ActionContract {
		t.Fatalf("expected CONTRACT, got %s", rec.Action)
	}
	if rec.RecommendedCreditLimit != 60000 {
		t.Errorf("expected 60000, got %d", rec.RecommendedCreditLimit)
	}
}

func TestRecommend_Pause(t *testing.T) {
	tests := []struct {
		name  string
		trust any
		risk  any
	}{
		{"low trust alone", 0.3, 0.2},
		{"high risk alone", 0.9, 0.8},
		{"risk at pause threshold", 0.9, 0.75},
		{"trust at pause threshold", 0.42, 0.2},
		{"both bad", 0.1, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.trust, tt.risk, 120000)
			if rec.Action != ActionPause {
				t.Fatalf("expected PAUSE, got %s", rec.Action)
			}
			if rec.RecommendedCreditLimit != 0 {
				t.Errorf("expected 0, got %d", rec.RecommendedCreditLimit)
			}
		})
	}
}

func TestRecommend_LaterRuleOverridesEarlier(t *testing.T) {
	rec := Recommend(0.8, 0.28, 10000)
	if rec.Action != ActionExpand {
		t.Fatalf("expected EXPAND at the risk boundary, got %s", rec.Action)
	}

	// Low trust with expandable risk: PAUSE is evaluated after EXPAND and
	// wins even though risk is minimal.
	rec = Recommend(0.4, 0.05, 10000)
	if rec.Action != ActionPause {
		t.Fatalf("expected PAUSE to override, got %s", rec.Action)
	}
}

func TestRecommend_ContractBandBoundaries(t *testing.T) {
	if rec := Recommend(0.6, 0.55, 1000); rec.Action != ActionContract {
		t.Errorf("risk 0.55 should CONTRACT, got %s", rec.Action)
	}
	// The band is half-open: 0.75 falls through to PAUSE.
	if rec := Recommend(0.6, 0.75, 1000); rec.Action != ActionPause {
		t.Errorf("risk 0.75 should PAUSE, got %s", rec.Action)
	}
	if rec := Recommend(0.6, 0.54, 1000); rec.Action != ActionHold {
		t.Errorf("risk 0.54 should HOLD, got %s", rec.Action)
	}
}

func TestRecommend_PercentageAndStringInputs(t *testing.T) {
	// 90 and 10 are percentage-form; "100000" is a numeric string.
	rec := Recommend(90.0, 10.0, "100000")

	if rec.Action != ActionExpand {
		t.Fatalf("expected EXPAND, got %s", rec.Action)
	}
	if rec.RecommendedCreditLimit != 115000 {
		t.Errorf("expected 115000, got %d", rec.RecommendedCreditLimit)
	}
}

func TestRecommend_GarbageInputs(t *testing.T) {
	rec := Recommend("very trustworthy", nil, "lots")

	// Garbage normalizes to zero: trust 0 triggers PAUSE, limit 0.
	if rec.Action != ActionPause {
		t.Fatalf("expected PAUSE, got %s", rec.Action)
	}
	if rec.CurrentCreditLimit != 0 || rec.RecommendedCreditLimit != 0 {
		t.Errorf("expected zero limits, got %d -> %d",
			rec.CurrentCreditLimit, rec.RecommendedCreditLimit)
	}
}

func TestRecommend_NegativeLimitFloorsAtZero(t *testing.T) {
	rec := Recommend(0.9, 0.1, -5000)
	if rec.RecommendedCreditLimit != 0 {
		t.Errorf("expected floor at 0, got %d", rec.RecommendedCreditLimit)
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		action Action
		want   float64
	}{
		{ActionExpand, 1.15},
		{ActionHold, 1.0},
		{ActionContract, 0.75},
		{ActionPause, 0},
	}
	for _, tt := range tests {
		if got := Multiplier(tt.action); got != tt.want {
			t.Errorf("Multiplier(%s) = %v, want %v", tt.action, got, tt.want)
		}
	}
}
