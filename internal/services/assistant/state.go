package assistant

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is the client-visible outcome of the most recent submission
type State struct {
	Phase  Phase  `json:"phase"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s State) Loading() bool {
	return s.Phase == PhaseRunning
}

type EventKind string

const (
	EventSubmit  EventKind = "submit"
	EventSucceed EventKind = "succeed"
	EventFail    EventKind = "fail"
	EventReset   EventKind = "reset"
)

// Event drives Transition. Text is the result for succeed and the message for fail.
type Event struct {
	Kind EventKind
	Text string
}

// Transition returns the next state and whether the event was accepted.
// Rejected events leave the state untouched.
func Transition(s State, ev Event) (State, bool) {
	switch ev.Kind {
	case EventSubmit:
		if s.Phase == PhaseRunning {
			return s, false
		}
		return State{Phase: PhaseRunning}, true

	case EventSucceed:
		if s.Phase != PhaseRunning {
			return s, false
		}
		return State{Phase: PhaseSucceeded, Result: ev.Text}, true

	case EventFail:
		if s.Phase != PhaseRunning {
			return s, false
		}
		return State{Phase: PhaseFailed, Error: ev.Text}, true

	case EventReset:
		if s.Phase != PhaseSucceeded && s.Phase != PhaseFailed {
			return s, false
		}
		return State{Phase: PhaseIdle}, true
	}

	return s, false
}
