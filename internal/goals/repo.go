package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer tracing.EndSpanWithErrCheck(span, &err)

	var targetDate *time.Time
	if goal.TargetDate != "" {
		t, err := time.Parse(targetDateLayout, goal.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidGoal, err)
		}
		targetDate = &t
	}

	goal.ID = uuid.NewString()
	goal.CreatedAt = time.Now()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO goal (id, user_id, name, description, target_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		goal.ID, goal.UserID, goal.Name, goal.Description, targetDate, goal.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	return &goal, nil
}

func (r *Repo) List(ctx context.Context, userID string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, name, description, COALESCE(to_char(target_date, 'YYYY-MM-DD'), ''), created_at
			FROM goal
			WHERE user_id = $1
			ORDER BY created_at;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetDate, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}
