package exercises

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

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer tracing.EndSpanWithErrCheck(span, &err)

	exercise.ID = uuid.NewString()
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO exercise (id, user_id, name, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		exercise.ID, exercise.UserID, exercise.Name, exercise.Description, exercise.ImageURL, exercise.CreatedAt,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%w: unknown owner [%s]", ErrInvalidExercise, exercise.UserID)
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer tracing.EndSpanWithErrCheck(span, &err)

	var e Exercise
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, description, image_url, created_at FROM exercise WHERE id = $1;`,
		id,
	).Scan(&e.ID, &e.UserID, &e.Name, &e.Description, &e.ImageURL, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || pkg.IsInvalidTextRepresentationError(err) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer tracing.EndSpanWithErrCheck(span, &err)

	tag, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id = $1;`, id)
	if err != nil {
		if pkg.IsInvalidTextRepresentationError(err) {
			return ErrExerciseNotFound
		}
		return fmt.Errorf("delete exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, name, description, image_url, created_at
			FROM exercise
			WHERE user_id = $1
			ORDER BY created_at;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Description, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}

	return exercises, rows.Err()
}
