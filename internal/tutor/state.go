package tutor

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// State names a phase in the life of one analysis
type State string

const (
	StateReceived   State = "received"
	StateValidated  State = "validated"
	StateDispatched State = "dispatched"
	StateAssembled  State = "assembled"
	StateSent       State = "sent"
	StateErrored    State = "errored"
)

var transitions = map[State][]State{
	StateReceived:   {StateValidated, StateErrored},
	StateValidated:  {StateDispatched, StateErrored},
	StateDispatched: {StateAssembled, StateErrored},
	StateAssembled:  {StateSent, StateErrored},
}

// CanTransition reports whether moving from s to next is allowed
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state ends an analysis
func (s State) Terminal() bool {
	return s == StateSent || s == StateErrored
}

// Tracker follows a single analysis through its states and logs each
// transition. Trackers are request-scoped and not safe for concurrent use.
type Tracker struct {
	id      uuid.UUID
	action  domain.Action
	state   State
	started time.Time
	logger  *slog.Logger
}

// NewTracker starts tracking a new analysis in StateReceived
func NewTracker(action domain.Action) *Tracker {
	return &Tracker{
		id:      uuid.New(),
		action:  action,
		state:   StateReceived,
		started: time.Now(),
		logger:  slog.Default(),
	}
}

// ID returns the analysis identifier
func (t *Tracker) ID() uuid.UUID {
	return t.id
}

// Action returns the analysis action
func (t *Tracker) Action() domain.Action {
	return t.action
}

// State returns the current state
func (t *Tracker) State() State {
	return t.state
}

// Elapsed returns the time since the analysis was received
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.started)
}

// To advances the analysis. An invalid transition is a programming error;
// it is logged and the state left unchanged.
func (t *Tracker) To(next State) {
	if !t.state.CanTransition(next) {
		t.logger.Error("invalid analysis transition",
			"analysis_id", t.id,
			"action", t.action,
			"from", t.state,
			"to", next)
		return
	}

	t.logger.Debug("analysis transition",
		"analysis_id", t.id,
		"action", t.action,
		"from", t.state,
		"to", next)
	t.state = next
}
