package recorder

import "fmt"

type State int

const (
	StateNotStarted State = iota
	StateSelectingExercise
	StateRecordingSets
	// StateFinishPending: the final write failed, only a retry of the same
	// write or a discard is accepted
	StateFinishPending
	StateFinished
	StateDiscarded
)

var stateNames = map[State]string{
	StateNotStarted:        "not_started",
	StateSelectingExercise: "selecting_exercise",
	StateRecordingSets:     "recording_sets",
	StateFinishPending:     "finish_pending",
	StateFinished:          "finished",
	StateDiscarded:         "discarded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

func (s State) Terminal() bool {
	return s == StateFinished || s == StateDiscarded
}

// Started reports whether the workout clock is running.
func (s State) Started() bool {
	return s != StateNotStarted && s != StateDiscarded
}
