package workouts

import (
	"errors"
	"time"
)

var ErrWorkoutNotFound = errors.New("workout not found")

// SetRecord values are kept exactly as the user typed them.
type SetRecord struct {
	SetNumber int    `json:"setNumber"`
	Weight    string `json:"weight"`
	Reps      string `json:"reps"`
	Comment   string `json:"comment"`
}

type ExerciseRecord struct {
	ExerciseName string      `json:"exerciseName"`
	Sets         []SetRecord `json:"sets"`
}

// Record is a finished workout as it is persisted.
type Record struct {
	ID        string           `json:"id,omitempty"`
	RoutineID string           `json:"routineId"`
	UserID    string           `json:"userId"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Exercises []ExerciseRecord `json:"exercises"`
}

func (r Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

func (r Record) Validate() error {
	if r.UserID == "" {
		return errors.New("workout owner missing")
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return errors.New("workout start or end time missing")
	}
	if r.EndTime.Before(r.StartTime) {
		return errors.New("workout ends before it starts")
	}
	return nil
}

// Summary is one row of the workout history list.
type Summary struct {
	ID        string    `json:"id"`
	RoutineID string    `json:"routineId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}
