package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

const calendarDateLayout = "2006-01-02"

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// SaveWorkout persists the record and returns the generated workout id.
func (r *Repo) SaveWorkout(ctx context.Context, record Record) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.save")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := record.Validate(); err != nil {
		return "", err
	}

	exercises := record.Exercises
	if exercises == nil {
		exercises = []ExerciseRecord{}
	}
	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		return "", fmt.Errorf("marshal workout exercises: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO workout (id, routine_id, user_id, start_time, end_time, exercises)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		id, record.RoutineID, record.UserID, record.StartTime, record.EndTime, exercisesJson,
	); err != nil {
		return "", fmt.Errorf("insert workout: %w", err)
	}

	return id, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer tracing.EndSpanWithErrCheck(span, &err)

	var record Record
	var exercisesJson []byte
	err = r.db.QueryRow(
		ctx,
		`SELECT id, routine_id, user_id, start_time, end_time, exercises FROM workout WHERE id = $1;`,
		id,
	).Scan(&record.ID, &record.RoutineID, &record.UserID, &record.StartTime, &record.EndTime, &exercisesJson)
	if errors.Is(err, pgx.ErrNoRows) || pkg.IsInvalidTextRepresentationError(err) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(exercisesJson, &record.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshal workout exercises: %w", err)
	}

	return &record, nil
}

// ListByUser returns the workout history of a user, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) (_ []Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, routine_id, start_time, end_time
			FROM workout
			WHERE user_id = $1
			ORDER BY start_time DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.RoutineID, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// CalendarDates returns the distinct days (YYYY-MM-DD, UTC) on which the user started a workout.
func (r *Repo) CalendarDates(ctx context.Context, userID string) ([]string, error) {
	summaries, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CalendarDates(summaries), nil
}

// CalendarDates returns the distinct start days of the given workouts in ascending order.
func CalendarDates(summaries []Summary) []string {
	seen := make(map[string]bool, len(summaries))
	dates := make([]string, 0, len(summaries))
	for _, s := range summaries {
		d := s.StartTime.UTC().Format(calendarDateLayout)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	// the layout sorts lexicographically
	slices.Sort(dates)
	return dates
}
