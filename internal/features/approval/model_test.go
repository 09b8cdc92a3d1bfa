package approval

import "testing"

func TestNormalizeDecision(t *testing.T) {
	cases := []struct {
		raw  string
		want Decision
	}{
		{"", DecisionPending},
		{"pending", DecisionPending},
		{"Pending", DecisionPending},
		{"approve", DecisionApproved},
		{"APPROVE", DecisionApproved},
		{"Approved", DecisionApproved},
		{"reject", DecisionRejected},
		{"Rejected", DecisionRejected},
		{"  approve  ", DecisionApproved},
	}
	for _, tc := range cases {
		got, err := NormalizeDecision(tc.raw)
		if err != nil {
			t.Errorf("NormalizeDecision(%q): unexpected error %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDecision(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"maybe", "escalate", "approved!", "0"} {
		if _, err := NormalizeDecision(raw); err == nil {
			t.Errorf("NormalizeDecision(%q): expected error", raw)
		}
	}
}

func TestDecisionIsTerminal(t *testing.T) {
	if DecisionPending.IsTerminal() {
		t.Error("Pending must not be terminal")
	}
	if !DecisionApproved.IsTerminal() || !DecisionRejected.IsTerminal() {
		t.Error("Approved and Rejected must be terminal")
	}
}
