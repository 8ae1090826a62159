package routines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.add")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := routine.Validate(); err != nil {
		return nil, err
	}

	routine.ID = uuid.NewString()
	if routine.CreatedAt.IsZero() {
		routine.CreatedAt = time.Now()
	}
	if routine.Exercises == nil {
		routine.Exercises = []string{}
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO routine (id, user_id, name, exercises, created_at) VALUES ($1, $2, $3, $4, $5);`,
		routine.ID, routine.UserID, routine.Name, routine.Exercises, routine.CreatedAt,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%w: unknown owner [%s]", ErrInvalidRoutine, routine.UserID)
		}
		return nil, fmt.Errorf("insert routine: %w", err)
	}

	return &routine, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer tracing.EndSpanWithErrCheck(span, &err)

	var routine Routine
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, exercises, created_at FROM routine WHERE id = $1;`,
		id,
	).Scan(&routine.ID, &routine.UserID, &routine.Name, &routine.Exercises, &routine.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || pkg.IsInvalidTextRepresentationError(err) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}

	return &routine, nil
}

// RoutineExercises returns the ordered exercise names of a routine owned by userID.
func (r *Repo) RoutineExercises(ctx context.Context, userID, routineID string) ([]string, error) {
	routine, err := r.Get(ctx, routineID)
	if err != nil {
		return nil, err
	}
	return routine.ExercisesFor(userID)
}

func (r *Repo) List(ctx context.Context, userID string) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, name, exercises, created_at
			FROM routine
			WHERE user_id = $1
			ORDER BY created_at;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []Routine
	for rows.Next() {
		var routine Routine
		if err := rows.Scan(&routine.ID, &routine.UserID, &routine.Name, &routine.Exercises, &routine.CreatedAt); err != nil {
			return nil, err
		}
		routines = append(routines, routine)
	}

	return routines, rows.Err()
}

func (r *Repo) Update(ctx context.Context, routine Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := routine.Validate(); err != nil {
		return err
	}
	if routine.Exercises == nil {
		routine.Exercises = []string{}
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE routine SET name = $1, exercises = $2 WHERE id = $3;`,
		routine.Name, routine.Exercises, routine.ID,
	)
	if err != nil {
		if pkg.IsInvalidTextRepresentationError(err) {
			return ErrRoutineNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer tracing.EndSpanWithErrCheck(span, &err)

	tag, err := r.db.Exec(ctx, `DELETE FROM routine WHERE id = $1`, id)
	if err != nil {
		if pkg.IsInvalidTextRepresentationError(err) {
			return ErrRoutineNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}
