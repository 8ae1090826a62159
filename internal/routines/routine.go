package routines

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRoutineNotFound = errors.New("routine not found")
	ErrInvalidRoutine  = errors.New("invalid routine")
)

// Routine is a named, ordered list of exercise names. Names are plain strings
// and are matched against the exercise catalog only when a workout is recorded.
type Routine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Exercises []string  `json:"exercises"`
	CreatedAt time.Time `json:"createdAt"`
}

// ParseExerciseList splits a comma separated list of exercise names,
// trimming spaces and dropping empty entries.
func ParseExerciseList(raw string) []string {
	exercises := []string{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			exercises = append(exercises, name)
		}
	}
	return exercises
}

func (r Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoutine)
	}
	return nil
}

// ExercisesFor returns the exercise names of the routine when userID owns it.
// Routines of other users are reported as not found.
func (r Routine) ExercisesFor(userID string) ([]string, error) {
	if userID == "" || r.UserID != userID {
		return nil, ErrRoutineNotFound
	}
	return r.Exercises, nil
}

// WithExercise returns a copy of the routine with name appended.
func (r Routine) WithExercise(name string) Routine {
	name = strings.TrimSpace(name)
	if name == "" {
		return r
	}
	exercises := make([]string, 0, len(r.Exercises)+1)
	exercises = append(exercises, r.Exercises...)
	r.Exercises = append(exercises, name)
	return r
}

// WithoutExercise returns a copy of the routine with every occurrence of name removed.
func (r Routine) WithoutExercise(name string) Routine {
	exercises := make([]string, 0, len(r.Exercises))
	for _, e := range r.Exercises {
		if e != name {
			exercises = append(exercises, e)
		}
	}
	r.Exercises = exercises
	return r
}
