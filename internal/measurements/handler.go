package measurements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=measurements_test

type measurementsRepo interface {
	Add(ctx context.Context, snapshot Snapshot) (*Snapshot, error)
	List(ctx context.Context, userID string) ([]Snapshot, error)
	Latest(ctx context.Context, userID string) (*Snapshot, error)
}

type TemplateResponse struct {
	Measurements []Measurement `json:"measurements"`
}

// AddSnapshotRequest takes the date of the snapshot, today (UTC) when empty.
type AddSnapshotRequest struct {
	Date         string        `json:"date"`
	Measurements []Measurement `json:"measurements"`
}

type Handler struct {
	repo  measurementsRepo
	clock func() time.Time
}

func NewHandler(repo measurementsRepo) *Handler {
	return &Handler{
		repo:  repo,
		clock: time.Now,
	}
}

func (handler *Handler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, TemplateResponse{Measurements: Template()}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req AddSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add measurements, unmarshal json params: %s", err)
		http.Error(w, "add measurements failed", http.StatusBadRequest)
		return
	}

	snapshot := Snapshot{
		UserID:       userID,
		Date:         req.Date,
		Measurements: req.Measurements,
	}
	if snapshot.Date == "" {
		snapshot.Date = handler.clock().UTC().Format(DateLayout)
	}
	if err := snapshot.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, snapshot)
	if err != nil {
		log.Errorf("add measurements for [%s]: %s", userID, err)
		http.Error(w, "failed to add measurements", http.StatusInternalServerError)
		return
	}

	log.Debugf("measurements for [%s] added on %s", userID, added.Date)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.latest")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	latest, err := handler.repo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoMeasurements) {
			http.Error(w, "no measurements found", http.StatusNotFound)
			return
		}
		log.Errorf("get latest measurements for [%s]: %s", userID, err)
		http.Error(w, "failed to get measurements", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, latest, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.stats")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	snapshots, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list measurements for [%s]: %s", userID, err)
		http.Error(w, "failed to get measurements", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ComputeStats(snapshots), http.StatusOK)
}
