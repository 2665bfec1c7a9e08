package types

import "testing"

func TestOutcomeKind(t *testing.T) {
	tests := []struct {
		kind      OutcomeKind
		str       string
		attempted bool
	}{
		{OutcomeNoPath, "no_path", false},
		{OutcomeNotEligible, "not_eligible", false},
		{OutcomeBackoff, "backoff", false},
		{OutcomeInFlight, "in_flight", false},
		{OutcomeSaturated, "saturated", false},
		{OutcomeSucceeded, "succeeded", true},
		{OutcomeFailed, "failed", true},
		{OutcomeDiscarded, "discarded", true},
		{OutcomeKind(42), "unknown", false},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.kind.Attempted(); got != tt.attempted {
			t.Errorf("%s.Attempted() = %v, want %v", tt.str, got, tt.attempted)
		}
	}
}
