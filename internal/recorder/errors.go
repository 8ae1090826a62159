package recorder

import "errors"

var (
	ErrNotSignedIn       = errors.New("not signed in")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownExercise   = errors.New("exercise is not a candidate of the routine")
	ErrSetNotFound       = errors.New("set not found")
	ErrInvalidSetField   = errors.New("invalid set field")
	ErrSessionFinished   = errors.New("workout session already finished")
	ErrSessionDiscarded  = errors.New("workout session discarded")
	ErrPersistence       = errors.New("workout could not be saved")
	ErrSessionNotFound   = errors.New("workout session not found")
)
