package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFoundf("part %d not found", 7)); got != NotFound {
		t.Errorf("KindOf(NotFoundf) = %v, want NotFound", got)
	}
	if got := KindOf(Conflictf("duplicate")); got != Conflict {
		t.Errorf("KindOf(Conflictf) = %v, want Conflict", got)
	}
	if got := KindOf(Internalf("invariant broken for part %d", 3)); got != Internal {
		t.Errorf("KindOf(Internalf) = %v, want Internal", got)
	}
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Errorf("KindOf(plain error) = %v, want Internal", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("record usage: %w", Insufficient(3, 5))
	if got := KindOf(err); got != InsufficientStock {
		t.Errorf("KindOf(wrapped) = %v, want InsufficientStock", got)
	}
	fe, ok := As(err)
	if !ok {
		t.Fatal("As(wrapped) = false, want true")
	}
	if fe.Available != 3 || fe.Requested != 5 {
		t.Errorf("amounts = %d/%d, want 3/5", fe.Available, fe.Requested)
	}
}

func TestInsufficientMessage(t *testing.T) {
	e := Insufficient(2, 10)
	want := "insufficient quantity: 2 available, 10 requested"
	if e.Error() != want {
		t.Errorf("message = %q, want %q", e.Error(), want)
	}
}
