package exercises

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

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

type exerciseCatalog interface {
	ListAvailable(ctx context.Context, userID string) ([]Exercise, error)
	Get(ctx context.Context, userID, id string) (*Exercise, error)
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Delete(ctx context.Context, userID, id string) error
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type AddExerciseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type Handler struct {
	catalog exerciseCatalog
}

func NewHandler(catalog exerciseCatalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	exercises, err := handler.catalog.ListAvailable(ctx, userID)
	if err != nil {
		log.Errorf("list exercises for [%s]: %s", userID, err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	exercise, err := handler.catalog.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise [%s]: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, exercise, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	added, err := handler.catalog.Add(ctx, Exercise{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidExercise) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add new exercise [%s]: %s", req.Name, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: %s [%s]", added.ID, added.Name)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.catalog.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete exercise [%s]: %s", id, err)
		http.Error(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise [%s] deleted by [%s]", id, userID)
	pkg.WriteJSON(w, map[string]string{"deletedId": id}, http.StatusOK)
}
