package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindAlreadyOwned, "streak freeze already held")
	if KindOf(err) != KindAlreadyOwned {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindAlreadyOwned)
	}

	wrapped := fmt.Errorf("purchase failed: %w", err)
	if KindOf(wrapped) != KindAlreadyOwned {
		t.Errorf("wrapped KindOf = %s, want %s", KindOf(wrapped), KindAlreadyOwned)
	}

	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("plain errors should report KindInternal")
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(KindAlreadyCompletedThisPeriod, "quest already completed this %s", "daily")
	if err.Error() != "quest already completed this daily" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
