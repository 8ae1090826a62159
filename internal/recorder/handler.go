package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/telemetry/metrics"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/internal/workouts"
	"github.com/2beens/workoutnotes/pkg"
)

type NewSessionRequest struct {
	RoutineID string `json:"routineId"`
	AutoStart bool   `json:"autoStart"`
}

type BeginExerciseRequest struct {
	ExerciseName string `json:"exerciseName"`
}

type EditSetRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type SessionResponse struct {
	ID                 string                    `json:"id"`
	State              State                     `json:"state"`
	RoutineID          string                    `json:"routineId"`
	StartTime          *time.Time                `json:"startTime,omitempty"`
	EndTime            *time.Time                `json:"endTime,omitempty"`
	CompletedExercises []workouts.ExerciseRecord `json:"completedExercises"`
	CurrentExercise    *workouts.ExerciseRecord  `json:"currentExercise,omitempty"`
	Candidates         []string                  `json:"candidates"`
	DefaultSelection   string                    `json:"defaultSelection,omitempty"`
	WorkoutID          string                    `json:"workoutId,omitempty"`
}

type AddSetResponse struct {
	SetNumber int `json:"setNumber"`
}

type FinishResponse struct {
	WorkoutID string `json:"workoutId"`
}

type Handler struct {
	registry *Registry
	deps     Deps
	opts     []Option
	metrics  *metrics.Manager
}

func NewHandler(registry *Registry, deps Deps, metricsManager *metrics.Manager, opts ...Option) *Handler {
	return &Handler{
		registry: registry,
		deps:     deps,
		opts:     opts,
		metrics:  metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts/sessions", handler.HandleNew).Methods("POST", "OPTIONS").Name("new-workout-session")
	r.HandleFunc("/workouts/sessions/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout-session")
	r.HandleFunc("/workouts/sessions/{id}", handler.HandleDiscard).Methods("DELETE", "OPTIONS").Name("discard-workout-session")
	r.HandleFunc("/workouts/sessions/{id}/start", handler.HandleStart).Methods("POST", "OPTIONS").Name("start-workout")
	r.HandleFunc("/workouts/sessions/{id}/exercise", handler.HandleBeginExercise).Methods("POST", "OPTIONS").Name("begin-exercise")
	r.HandleFunc("/workouts/sessions/{id}/exercise/end", handler.HandleEndExercise).Methods("POST", "OPTIONS").Name("end-exercise")
	r.HandleFunc("/workouts/sessions/{id}/sets", handler.HandleAddSet).Methods("POST", "OPTIONS").Name("add-set")
	r.HandleFunc("/workouts/sessions/{id}/sets/{setNumber}", handler.HandleEditSet).Methods("PUT", "OPTIONS").Name("edit-set")
	r.HandleFunc("/workouts/sessions/{id}/finish", handler.HandleFinish).Methods("POST", "OPTIONS").Name("finish-workout")
}

func (handler *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.new")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req NewSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout session, unmarshal json params: %s", err)
		http.Error(w, "new workout session failed", http.StatusBadRequest)
		return
	}
	if req.RoutineID == "" {
		http.Error(w, "error, routine id empty", http.StatusBadRequest)
		return
	}

	opts := append([]Option{WithAutoStart(req.AutoStart)}, handler.opts...)
	rec := New(req.RoutineID, handler.deps, opts...)
	if _, err := rec.LoadCandidates(ctx); err != nil {
		log.Errorf("new workout session for routine [%s]: %s", req.RoutineID, err)
		http.Error(w, "failed to load routine exercises", http.StatusInternalServerError)
		return
	}

	id := handler.registry.Open(userID, rec)
	log.Debugf("workout session [%s] opened by [%s] for routine [%s]", id, userID, req.RoutineID)

	pkg.WriteJSON(w, sessionResponse(id, rec), http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.get", func(_ context.Context, id string, rec *Recorder) (any, error) {
		return sessionResponse(id, rec), nil
	})
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.start", func(_ context.Context, id string, rec *Recorder) (any, error) {
		if err := rec.Start(); err != nil {
			return nil, err
		}
		return sessionResponse(id, rec), nil
	})
}

func (handler *Handler) HandleBeginExercise(w http.ResponseWriter, r *http.Request) {
	var req BeginExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("begin exercise, unmarshal json params: %s", err)
		http.Error(w, "begin exercise failed", http.StatusBadRequest)
		return
	}

	handler.withSession(w, r, "handler.sessions.beginExercise", func(ctx context.Context, id string, rec *Recorder) (any, error) {
		if err := rec.BeginExercise(ctx, req.ExerciseName); err != nil {
			return nil, err
		}
		return sessionResponse(id, rec), nil
	})
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.addSet", func(_ context.Context, _ string, rec *Recorder) (any, error) {
		setNumber, err := rec.AddSet()
		if err != nil {
			return nil, err
		}
		return AddSetResponse{SetNumber: setNumber}, nil
	})
}

func (handler *Handler) HandleEditSet(w http.ResponseWriter, r *http.Request) {
	setNumber, err := strconv.Atoi(mux.Vars(r)["setNumber"])
	if err != nil {
		http.Error(w, "error, set number NaN", http.StatusBadRequest)
		return
	}

	var req EditSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("edit set, unmarshal json params: %s", err)
		http.Error(w, "edit set failed", http.StatusBadRequest)
		return
	}

	handler.withSession(w, r, "handler.sessions.editSet", func(_ context.Context, id string, rec *Recorder) (any, error) {
		field, err := ParseSetField(req.Field)
		if err != nil {
			return nil, err
		}
		if err := rec.EditSet(setNumber, field, req.Value); err != nil {
			return nil, err
		}
		return sessionResponse(id, rec), nil
	})
}

func (handler *Handler) HandleEndExercise(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.endExercise", func(_ context.Context, id string, rec *Recorder) (any, error) {
		if err := rec.EndExercise(); err != nil {
			return nil, err
		}
		return sessionResponse(id, rec), nil
	})
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.finish", func(ctx context.Context, _ string, rec *Recorder) (any, error) {
		workoutID, err := rec.EndWorkout(ctx)
		if err != nil {
			if errors.Is(err, ErrPersistence) && handler.metrics != nil {
				handler.metrics.CounterWorkoutSaveFailures.Inc()
			}
			return nil, err
		}

		if handler.metrics != nil {
			session := rec.Session()
			handler.metrics.CounterWorkoutsSaved.Inc()
			handler.metrics.HistWorkoutDuration.Observe(session.EndTime.Sub(session.StartTime).Minutes())
		}
		log.Infof("workout [%s] saved for routine [%s]", workoutID, rec.Session().RoutineID)

		return FinishResponse{WorkoutID: workoutID}, nil
	})
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	handler.withSession(w, r, "handler.sessions.discard", func(_ context.Context, id string, rec *Recorder) (any, error) {
		if err := rec.Discard(); err != nil {
			return nil, err
		}
		return sessionResponse(id, rec), nil
	})
}

// withSession runs action on the caller's session, under the handler span,
// and writes either its result or the mapped error.
func (handler *Handler) withSession(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	action func(ctx context.Context, id string, rec *Recorder) (any, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, session id empty", http.StatusBadRequest)
		return
	}

	var resp any
	err := handler.registry.With(id, userID, func(rec *Recorder) error {
		var actionErr error
		resp, actionErr = action(ctx, id, rec)
		return actionErr
	})
	if err != nil {
		writeError(w, id, err)
		return
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func writeError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "workout session not found", http.StatusNotFound)
	case errors.Is(err, ErrNotSignedIn):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrUnknownExercise),
		errors.Is(err, ErrSetNotFound),
		errors.Is(err, ErrInvalidSetField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrSessionFinished),
		errors.Is(err, ErrSessionDiscarded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrPersistence):
		log.Errorf("workout session [%s]: %s", sessionID, err)
		http.Error(w, "workout could not be saved, try again", http.StatusBadGateway)
	default:
		log.Errorf("workout session [%s]: %s", sessionID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func sessionResponse(id string, rec *Recorder) SessionResponse {
	session := rec.Session()
	resp := SessionResponse{
		ID:                 id,
		State:              rec.State(),
		RoutineID:          session.RoutineID,
		CompletedExercises: session.CompletedExercises,
		CurrentExercise:    session.CurrentExercise,
		Candidates:         rec.Candidates(),
		DefaultSelection:   rec.DefaultSelection(),
		WorkoutID:          rec.WorkoutID(),
	}
	if !session.StartTime.IsZero() {
		resp.StartTime = &session.StartTime
	}
	if !session.EndTime.IsZero() {
		resp.EndTime = &session.EndTime
	}
	if resp.CompletedExercises == nil {
		resp.CompletedExercises = []workouts.ExerciseRecord{}
	}
	if resp.Candidates == nil {
		resp.Candidates = []string{}
	}
	return resp
}
