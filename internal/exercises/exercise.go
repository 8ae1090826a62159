package exercises

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const minNameLength = 4

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidExercise  = errors.New("invalid exercise")
)

type Exercise struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	BuiltIn     bool      `json:"builtIn"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate checks the fields a user has to fill in when adding a custom exercise.
func (e Exercise) Validate() error {
	name := strings.TrimSpace(e.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		return fmt.Errorf("%w: name must have at least %d characters", ErrInvalidExercise, minNameLength)
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidExercise)
	}
	return nil
}

var builtIn = []Exercise{
	{ID: "1", Name: "Push-up", Description: "A basic push-up exercise.", ImageURL: "https://example.com/pushup.jpg", BuiltIn: true},
	{ID: "2", Name: "Squat", Description: "A basic squat exercise.", ImageURL: "https://example.com/squat.jpg", BuiltIn: true},
	{ID: "3", Name: "Lunge", Description: "A basic lunge exercise.", ImageURL: "https://example.com/lunge.jpg", BuiltIn: true},
	{ID: "4", Name: "Pull-up", Description: "A basic pull-up exercise.", ImageURL: "https://example.com/pullup.jpg", BuiltIn: true},
	{ID: "5", Name: "Plank", Description: "A basic plank exercise.", ImageURL: "https://example.com/plank.jpg", BuiltIn: true},
}

// BuiltIn returns a copy of the catalog every user gets.
func BuiltIn() []Exercise {
	exercises := make([]Exercise, len(builtIn))
	copy(exercises, builtIn)
	return exercises
}

func builtInByID(id string) (Exercise, bool) {
	for _, e := range builtIn {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}
