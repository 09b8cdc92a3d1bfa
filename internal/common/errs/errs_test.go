package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validation("amount %d", 5), KindValidation},
		{NotFound("gone"), KindNotFound},
		{Conflict("busy"), KindConflict},
		{Authorization("no"), KindAuthorization},
		{Invariant("broken"), KindInvariant},
		{Transient("db", errors.New("timeout")), KindTransient},
		{errors.New("plain"), KindInvariant},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Conflict("approval already decided")
	wrapped := fmt.Errorf("submit decision: %w", inner)

	if KindOf(wrapped) != KindConflict {
		t.Errorf("KindOf(wrapped) = %s, want %s", KindOf(wrapped), KindConflict)
	}
	if !IsKinded(wrapped) {
		t.Error("wrapped error must still be kinded")
	}
	if IsKinded(errors.New("plain")) {
		t.Error("plain error must not be kinded")
	}
}

func TestTransientUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("unit of work failed", cause)

	if !errors.Is(err, cause) {
		t.Error("transient error must unwrap to its cause")
	}
}
