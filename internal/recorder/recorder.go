package recorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/exercises"
	"github.com/2beens/workoutnotes/internal/routines"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=recorder_mocks_test.go -package=recorder_test

type IdentityProvider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type RoutineCatalog interface {
	// RoutineExercises fails with routines.ErrRoutineNotFound for unknown routines
	// and for routines userID does not own.
	RoutineExercises(ctx context.Context, userID, routineID string) ([]string, error)
}

type ExerciseCatalog interface {
	ListAvailable(ctx context.Context, userID string) ([]exercises.Exercise, error)
}

type WorkoutStore interface {
	SaveWorkout(ctx context.Context, record workouts.Record) (string, error)
}

type Deps struct {
	Identity  IdentityProvider
	Routines  RoutineCatalog
	Exercises ExerciseCatalog
	Store     WorkoutStore
}

type Option func(*Recorder)

// WithAutoStart starts the workout as soon as the recorder is created.
func WithAutoStart(autoStart bool) Option {
	return func(r *Recorder) {
		r.autoStart = autoStart
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithOpenExerciseCommit makes EndWorkout keep an exercise that is still being
// recorded. By default it is dropped and only ended exercises are saved.
func WithOpenExerciseCommit(commit bool) Option {
	return func(r *Recorder) {
		r.commitOpenExercise = commit
	}
}

// Recorder walks a user through one workout of a routine and produces the
// record that is handed to the WorkoutStore. It has a single owner and is not
// safe for concurrent use.
type Recorder struct {
	deps               Deps
	clock              func() time.Time
	autoStart          bool
	commitOpenExercise bool

	state      State
	session    Session
	candidates []string
	loaded     bool

	// pending is the record of a failed final write, retried as is
	pending   *workouts.Record
	workoutID string
}

func New(routineID string, deps Deps, opts ...Option) *Recorder {
	r := &Recorder{
		deps:    deps,
		clock:   time.Now,
		state:   StateNotStarted,
		session: Session{RoutineID: routineID},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.autoStart {
		_ = r.Start()
	}

	return r
}

func (r *Recorder) State() State {
	return r.state
}

// Session returns a copy of the current session value.
func (r *Recorder) Session() Session {
	return r.session.Clone()
}

// WorkoutID is set once the workout has been saved.
func (r *Recorder) WorkoutID() string {
	return r.workoutID
}

func (r *Recorder) Candidates() []string {
	return slices.Clone(r.candidates)
}

// DefaultSelection is the first candidate, empty when there are none.
func (r *Recorder) DefaultSelection() string {
	if len(r.candidates) == 0 {
		return ""
	}
	return r.candidates[0]
}

func (r *Recorder) checkNotTerminal() error {
	switch r.state {
	case StateFinished:
		return ErrSessionFinished
	case StateDiscarded:
		return ErrSessionDiscarded
	default:
		return nil
	}
}

// Start stamps the start time. Repeated calls on a started workout are no-ops.
func (r *Recorder) Start() error {
	if err := r.checkNotTerminal(); err != nil {
		return err
	}
	if r.state != StateNotStarted {
		return nil
	}

	r.session = r.session.withStart(r.clock())
	r.state = StateSelectingExercise
	return nil
}

// LoadCandidates computes the exercises the user can pick from. An unknown
// routine yields an empty list, not an error.
func (r *Recorder) LoadCandidates(ctx context.Context) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recorder.loadCandidates")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := r.checkNotTerminal(); err != nil {
		return nil, err
	}

	// custom exercises and routines need a user, without one only built-ins are offered
	userID, _ := r.deps.Identity.CurrentUserID(ctx)

	var routineExercises []string
	if userID != "" {
		routineExercises, err = r.deps.Routines.RoutineExercises(ctx, userID, r.session.RoutineID)
		if err != nil {
			if !errors.Is(err, routines.ErrRoutineNotFound) {
				return nil, fmt.Errorf("fetch routine exercises: %w", err)
			}
			log.Debugf("recorder: routine [%s] not found for [%s], no candidates", r.session.RoutineID, userID)
			routineExercises = nil
		}
	}

	available, err := r.deps.Exercises.ListAvailable(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list available exercises: %w", err)
	}

	r.candidates = Candidates(routineExercises, available)
	r.loaded = true

	return r.Candidates(), nil
}

// BeginExercise starts recording sets for one of the candidates.
func (r *Recorder) BeginExercise(ctx context.Context, name string) error {
	if err := r.checkNotTerminal(); err != nil {
		return err
	}
	if r.state != StateSelectingExercise {
		return fmt.Errorf("%w: begin exercise in state %s", ErrInvalidTransition, r.state)
	}

	if !r.loaded {
		if _, err := r.LoadCandidates(ctx); err != nil {
			return err
		}
	}
	if !r.isCandidate(name) {
		return fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}

	r.session = r.session.withCurrentExercise(name)
	r.state = StateRecordingSets
	return nil
}

func (r *Recorder) isCandidate(name string) bool {
	for _, c := range r.candidates {
		if c == name {
			return true
		}
	}
	return false
}

// AddSet appends an empty set and returns its set number.
func (r *Recorder) AddSet() (int, error) {
	if err := r.requireRecording("add set"); err != nil {
		return 0, err
	}

	r.session = r.session.withSetAdded()
	sets := r.session.CurrentExercise.Sets
	return sets[len(sets)-1].SetNumber, nil
}

// EditSet updates one field of the set with the given set number.
func (r *Recorder) EditSet(setNumber int, field SetField, value string) error {
	if err := r.requireRecording("edit set"); err != nil {
		return err
	}

	session, err := r.session.withSetField(setNumber, field, value)
	if err != nil {
		return err
	}
	r.session = session
	return nil
}

// EndExercise moves the current exercise to the completed ones, even without sets.
func (r *Recorder) EndExercise() error {
	if err := r.requireRecording("end exercise"); err != nil {
		return err
	}

	r.session = r.session.withExerciseEnded()
	r.state = StateSelectingExercise
	return nil
}

func (r *Recorder) requireRecording(action string) error {
	if err := r.checkNotTerminal(); err != nil {
		return err
	}
	if r.state != StateRecordingSets {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, r.state)
	}
	return nil
}

// EndWorkout assembles the final record and saves it. Without a signed-in user
// nothing is saved and the session is left as it was. A failed write leaves the
// session untouched in StateFinishPending, and calling EndWorkout again retries
// the exact same record.
func (r *Recorder) EndWorkout(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recorder.endWorkout")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := r.checkNotTerminal(); err != nil {
		return "", err
	}
	switch r.state {
	case StateSelectingExercise, StateRecordingSets, StateFinishPending:
	default:
		return "", fmt.Errorf("%w: end workout in state %s", ErrInvalidTransition, r.state)
	}

	userID, ok := r.deps.Identity.CurrentUserID(ctx)
	if !ok {
		return "", ErrNotSignedIn
	}

	record := r.pending
	if record == nil || record.UserID != userID {
		assembled := r.assemble(userID)
		record = &assembled
	}

	workoutID, err := r.deps.Store.SaveWorkout(ctx, *record)
	if err != nil {
		r.pending = record
		r.state = StateFinishPending
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.session = r.session.withEnd(record.EndTime)
	if r.commitOpenExercise && r.session.CurrentExercise != nil {
		r.session = r.session.withExerciseEnded()
	}
	r.pending = nil
	r.workoutID = workoutID
	r.state = StateFinished

	return workoutID, nil
}

func (r *Recorder) assemble(userID string) workouts.Record {
	endTime := r.clock()
	if endTime.Before(r.session.StartTime) {
		endTime = r.session.StartTime
	}

	completed := cloneExercises(r.session.CompletedExercises)
	if current := r.session.CurrentExercise; current != nil {
		if r.commitOpenExercise {
			completed = append(completed, cloneExercise(*current))
		} else {
			log.Warnf(
				"recorder: routine [%s], exercise [%s] still open at workout end, dropping its %d sets",
				r.session.RoutineID, current.ExerciseName, len(current.Sets),
			)
		}
	}
	if completed == nil {
		completed = []workouts.ExerciseRecord{}
	}

	return workouts.Record{
		RoutineID: r.session.RoutineID,
		UserID:    userID,
		StartTime: r.session.StartTime,
		EndTime:   endTime,
		Exercises: completed,
	}
}

// Discard abandons the workout. Nothing is saved.
func (r *Recorder) Discard() error {
	if r.state == StateFinished {
		return ErrSessionFinished
	}
	r.pending = nil
	r.state = StateDiscarded
	return nil
}
