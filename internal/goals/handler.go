package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=goals_test

type goalsRepo interface {
	Add(ctx context.Context, goal Goal) (*Goal, error)
	List(ctx context.Context, userID string) ([]Goal, error)
}

type AddGoalRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate"`
}

type ListResponse struct {
	Goals []Goal `json:"goals"`
	Total int    `json:"total"`
}

type Handler struct {
	repo goalsRepo
}

func NewHandler(repo goalsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	goals, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list goals for [%s]: %s", userID, err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	if len(goals) == 0 {
		goals = []Goal{}
	}

	pkg.WriteJSON(w, ListResponse{Goals: goals, Total: len(goals)}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req AddGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	goal := Goal{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}
	if err := goal.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, goal)
	if err != nil {
		if errors.Is(err, ErrInvalidGoal) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("add goal for [%s]: %s", userID, err)
		http.Error(w, "failed to add goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}
