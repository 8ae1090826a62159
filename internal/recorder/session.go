package recorder

import (
	"fmt"
	"time"

	"github.com/2beens/workoutnotes/internal/workouts"
)

type SetField string

const (
	FieldWeight  SetField = "weight"
	FieldReps    SetField = "reps"
	FieldComment SetField = "comment"
)

func ParseSetField(s string) (SetField, error) {
	switch f := SetField(s); f {
	case FieldWeight, FieldReps, FieldComment:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSetField, s)
	}
}

// Session is the in-progress workout. Every transition produces a new value,
// a Session handed out is never changed afterwards.
type Session struct {
	RoutineID          string
	StartTime          time.Time
	EndTime            time.Time
	CompletedExercises []workouts.ExerciseRecord
	CurrentExercise    *workouts.ExerciseRecord

	nextSetNumber int
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	c := s
	c.CompletedExercises = cloneExercises(s.CompletedExercises)
	if s.CurrentExercise != nil {
		current := cloneExercise(*s.CurrentExercise)
		c.CurrentExercise = &current
	}
	return c
}

func (s Session) withStart(t time.Time) Session {
	c := s.Clone()
	c.StartTime = t
	return c
}

func (s Session) withCurrentExercise(name string) Session {
	c := s.Clone()
	c.CurrentExercise = &workouts.ExerciseRecord{
		ExerciseName: name,
		Sets:         []workouts.SetRecord{},
	}
	c.nextSetNumber = 1
	return c
}

func (s Session) withSetAdded() Session {
	c := s.Clone()
	c.CurrentExercise.Sets = append(c.CurrentExercise.Sets, workouts.SetRecord{
		SetNumber: c.nextSetNumber,
	})
	c.nextSetNumber++
	return c
}

func (s Session) withSetField(setNumber int, field SetField, value string) (Session, error) {
	idx := -1
	for i, set := range s.CurrentExercise.Sets {
		if set.SetNumber == setNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrSetNotFound, setNumber)
	}

	c := s.Clone()
	set := &c.CurrentExercise.Sets[idx]
	switch field {
	case FieldWeight:
		set.Weight = value
	case FieldReps:
		set.Reps = value
	case FieldComment:
		set.Comment = value
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidSetField, field)
	}
	return c, nil
}

func (s Session) withExerciseEnded() Session {
	c := s.Clone()
	c.CompletedExercises = append(c.CompletedExercises, *c.CurrentExercise)
	c.CurrentExercise = nil
	c.nextSetNumber = 0
	return c
}

func (s Session) withEnd(t time.Time) Session {
	c := s.Clone()
	c.EndTime = t
	return c
}

func cloneExercises(exercises []workouts.ExerciseRecord) []workouts.ExerciseRecord {
	if exercises == nil {
		return nil
	}
	c := make([]workouts.ExerciseRecord, len(exercises))
	for i, e := range exercises {
		c[i] = cloneExercise(e)
	}
	return c
}

func cloneExercise(e workouts.ExerciseRecord) workouts.ExerciseRecord {
	sets := make([]workouts.SetRecord, len(e.Sets))
	copy(sets, e.Sets)
	return workouts.ExerciseRecord{
		ExerciseName: e.ExerciseName,
		Sets:         sets,
	}
}
