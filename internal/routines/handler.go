package routines

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routines_test

type routinesRepo interface {
	Add(ctx context.Context, routine Routine) (*Routine, error)
	Get(ctx context.Context, id string) (*Routine, error)
	List(ctx context.Context, userID string) ([]Routine, error)
	Update(ctx context.Context, routine Routine) error
	Delete(ctx context.Context, id string) error
}

// AddRoutineRequest accepts the exercises either as a list or as the
// comma separated text typed into the add-routine form.
type AddRoutineRequest struct {
	Name         string   `json:"name"`
	Exercises    []string `json:"exercises"`
	ExerciseList string   `json:"exerciseList"`
}

// UpdateRoutineRequest: a nil Exercises keeps the current list, the add/remove
// fields are applied on top of it.
type UpdateRoutineRequest struct {
	Name           string   `json:"name"`
	Exercises      []string `json:"exercises"`
	AddExercise    string   `json:"addExercise"`
	RemoveExercise string   `json:"removeExercise"`
}

type ListResponse struct {
	Routines []Routine `json:"routines"`
	Total    int       `json:"total"`
}

type Handler struct {
	repo routinesRepo
}

func NewHandler(repo routinesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	routines, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list routines for [%s]: %s", userID, err)
		http.Error(w, "failed to get routines", http.StatusInternalServerError)
		return
	}
	if len(routines) == 0 {
		routines = []Routine{}
	}

	pkg.WriteJSON(w, ListResponse{Routines: routines, Total: len(routines)}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.add")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req AddRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new routine, unmarshal json params: %s", err)
		http.Error(w, "add routine failed", http.StatusBadRequest)
		return
	}

	exercises := req.Exercises
	if req.ExerciseList != "" {
		exercises = ParseExerciseList(req.ExerciseList)
	}

	added, err := handler.repo.Add(ctx, Routine{
		UserID:    userID,
		Name:      req.Name,
		Exercises: exercises,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRoutine) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add routine [%s]: %s", req.Name, err)
		http.Error(w, "error, failed to add routine", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	routine, ok := handler.ownedRoutine(ctx, w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	pkg.WriteJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	var req UpdateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update routine, unmarshal json params: %s", err)
		http.Error(w, "update routine failed", http.StatusBadRequest)
		return
	}

	routine, ok := handler.ownedRoutine(ctx, w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	updated := *routine
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Exercises != nil {
		updated.Exercises = req.Exercises
	}
	if req.RemoveExercise != "" {
		updated = updated.WithoutExercise(req.RemoveExercise)
	}
	if req.AddExercise != "" {
		updated = updated.WithExercise(req.AddExercise)
	}

	if err := handler.repo.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, ErrInvalidRoutine):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrRoutineNotFound):
			http.Error(w, "routine not found", http.StatusNotFound)
		default:
			log.Errorf("failed to update routine [%s]: %s", updated.ID, err)
			http.Error(w, "error, failed to update routine", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	routine, ok := handler.ownedRoutine(ctx, w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, routine.ID); err != nil && !errors.Is(err, ErrRoutineNotFound) {
		log.Errorf("failed to delete routine %s: %s", routine.ID, err)
		http.Error(w, "error, routine not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, map[string]string{"deletedId": routine.ID}, http.StatusOK)
}

// ownedRoutine loads the routine and makes sure it belongs to the signed-in user.
// On failure the response is already written.
func (handler *Handler) ownedRoutine(ctx context.Context, w http.ResponseWriter, id string) (*Routine, bool) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return nil, false
	}
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return nil, false
	}

	routine, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRoutineNotFound) {
			http.Error(w, "routine not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get routine [%s]: %s", id, err)
		http.Error(w, "failed to get routine", http.StatusInternalServerError)
		return nil, false
	}

	if routine.UserID != userID {
		http.Error(w, "routine not found", http.StatusNotFound)
		return nil, false
	}

	return routine, true
}
