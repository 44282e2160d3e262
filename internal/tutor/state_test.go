package tutor

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateReceived, StateValidated, true},
		{StateReceived, StateErrored, true},
		{StateReceived, StateDispatched, false},
		{StateValidated, StateDispatched, true},
		{StateValidated, StateSent, false},
		{StateDispatched, StateAssembled, true},
		{StateDispatched, StateValidated, false},
		{StateAssembled, StateSent, true},
		{StateAssembled, StateDispatched, false},
		{StateSent, StateErrored, false},
		{StateErrored, StateReceived, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s to %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateReceived, StateValidated, StateDispatched, StateAssembled} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []State{StateSent, StateErrored} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestTracker(t *testing.T) {
	t.Run("starts received", func(t *testing.T) {
		tr := NewTracker(domain.ActionExplain)
		if tr.State() != StateReceived {
			t.Errorf("State() = %s, want received", tr.State())
		}
		if tr.Action() != domain.ActionExplain {
			t.Errorf("Action() = %s", tr.Action())
		}
		if tr.ID() == uuid.Nil {
			t.Error("ID() should be set")
		}
	})

	t.Run("valid transitions advance", func(t *testing.T) {
		tr := NewTracker(domain.ActionFix)
		for _, next := range []State{StateValidated, StateDispatched, StateAssembled, StateSent} {
			tr.To(next)
			if tr.State() != next {
				t.Fatalf("State() = %s, want %s", tr.State(), next)
			}
		}
	})

	t.Run("invalid transition leaves state unchanged", func(t *testing.T) {
		tr := NewTracker(domain.ActionPractice)
		tr.To(StateSent)
		if tr.State() != StateReceived {
			t.Errorf("State() = %s, want received after rejected transition", tr.State())
		}
	})

	t.Run("elapsed grows", func(t *testing.T) {
		tr := NewTracker(domain.ActionExplain)
		time.Sleep(time.Millisecond)
		if tr.Elapsed() <= 0 {
			t.Error("Elapsed() should be positive")
		}
	})
}
