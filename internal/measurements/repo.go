package measurements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func (r *Repo) Add(ctx context.Context, snapshot Snapshot) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer tracing.EndSpanWithErrCheck(span, &err)

	takenOn, err := time.Parse(DateLayout, snapshot.Date)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot date: %w", err)
	}

	measurementsJson, err := json.Marshal(snapshot.Measurements)
	if err != nil {
		return nil, fmt.Errorf("marshal measurements: %w", err)
	}

	snapshot.ID = uuid.NewString()
	snapshot.CreatedAt = time.Now()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO measurement_snapshot (id, user_id, taken_on, measurements, created_at)
		VALUES ($1, $2, $3, $4, $5);`,
		snapshot.ID, snapshot.UserID, takenOn, measurementsJson, snapshot.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert measurement snapshot: %w", err)
	}

	return &snapshot, nil
}

// List returns all snapshots of the user, oldest first.
func (r *Repo) List(ctx context.Context, userID string) (_ []Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.list")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, to_char(taken_on, 'YYYY-MM-DD'), measurements, created_at
			FROM measurement_snapshot
			WHERE user_id = $1
			ORDER BY taken_on, created_at;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}

	return snapshots, rows.Err()
}

// Latest returns the most recent snapshot, ErrNoMeasurements when there is none.
func (r *Repo) Latest(ctx context.Context, userID string) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.latest")
	defer tracing.EndSpanWithErrCheck(span, &err)

	row := r.db.QueryRow(
		ctx,
		`
			SELECT
				id, user_id, to_char(taken_on, 'YYYY-MM-DD'), measurements, created_at
			FROM measurement_snapshot
			WHERE user_id = $1
			ORDER BY taken_on DESC, created_at DESC
			LIMIT 1;`,
		userID,
	)
	s, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoMeasurements
	}
	return s, err
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	var measurementsJson []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &measurementsJson, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(measurementsJson, &s.Measurements); err != nil {
		return nil, fmt.Errorf("unmarshal measurements: %w", err)
	}
	return &s, nil
}
