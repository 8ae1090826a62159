package recorder

import "github.com/2beens/workoutnotes/internal/exercises"

// Candidates keeps the routine's exercise names that are also available to the
// user, in routine order. A name listed twice in the routine is offered once.
func Candidates(routineExercises []string, available []exercises.Exercise) []string {
	availableNames := make(map[string]bool, len(available))
	for _, e := range available {
		availableNames[e.Name] = true
	}

	seen := make(map[string]bool, len(routineExercises))
	candidates := []string{}
	for _, name := range routineExercises {
		if availableNames[name] && !seen[name] {
			seen[name] = true
			candidates = append(candidates, name)
		}
	}
	return candidates
}
