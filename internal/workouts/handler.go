package workouts

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Get(ctx context.Context, id string) (*Record, error)
	ListByUser(ctx context.Context, userID string) ([]Summary, error)
	CalendarDates(ctx context.Context, userID string) ([]string, error)
}

type HistoryResponse struct {
	Workouts []Summary `json:"workouts"`
	Total    int       `json:"total"`
}

type CalendarResponse struct {
	Dates []string `json:"dates"`
}

type Handler struct {
	repo workoutsRepo
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	summaries, err := handler.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for [%s]: %s", userID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}
	if len(summaries) == 0 {
		summaries = []Summary{}
	}

	pkg.WriteJSON(w, HistoryResponse{Workouts: summaries, Total: len(summaries)}, http.StatusOK)
}

func (handler *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.details")
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

	record, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout [%s]: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}
	if record.UserID != userID {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	pkg.WriteJSON(w, record, http.StatusOK)
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.calendar")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	dates, err := handler.repo.CalendarDates(ctx, userID)
	if err != nil {
		log.Errorf("workout calendar for [%s]: %s", userID, err)
		http.Error(w, "failed to get workout dates", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, CalendarResponse{Dates: dates}, http.StatusOK)
}
