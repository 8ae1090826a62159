package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/telemetry/metrics"
)

type registryEntry struct {
	mu          sync.Mutex
	ownerID     string
	recorder    *Recorder
	lastTouched time.Time
	removed     bool
}

// Registry keeps the in-memory recorders of the server, one per open workout.
// Calls on the same session are serialized, so a duplicate "end workout"
// waits for the first one and then finds the session gone.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*registryEntry
	idleTimeout time.Duration
	clock       func() time.Time
	metrics     *metrics.Manager
}

func NewRegistry(idleTimeout time.Duration, metricsManager *metrics.Manager) *Registry {
	return &Registry{
		sessions:    map[string]*registryEntry{},
		idleTimeout: idleTimeout,
		clock:       time.Now,
		metrics:     metricsManager,
	}
}

// SetClock replaces the clock used for idle tracking.
func (r *Registry) SetClock(clock func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
}

// Open registers the recorder for ownerID and returns the new session id.
func (r *Registry) Open(ownerID string, rec *Recorder) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &registryEntry{
		ownerID:     ownerID,
		recorder:    rec,
		lastTouched: r.clock(),
	}
	if r.metrics != nil {
		r.metrics.CounterSessionsStarted.Inc()
		r.metrics.GaugeActiveSessions.Set(float64(len(r.sessions)))
	}

	return id
}

// With runs fn with exclusive access to the recorder of the session. Sessions
// of other users are reported as not found. Once the recorder reaches a terminal
// state the session is dropped from the registry.
func (r *Registry) With(id, ownerID string, fn func(rec *Recorder) error) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed || entry.ownerID != ownerID {
		return ErrSessionNotFound
	}
	entry.lastTouched = r.clock()

	err := fn(entry.recorder)

	if state := entry.recorder.State(); state.Terminal() {
		r.remove(id, entry)
		if state == StateDiscarded && r.metrics != nil {
			r.metrics.CounterSessionsDiscarded.Inc()
		}
	}

	return err
}

// must be called with entry.mu held
func (r *Registry) remove(id string, entry *registryEntry) {
	entry.removed = true

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	if r.metrics != nil {
		r.metrics.GaugeActiveSessions.Set(float64(len(r.sessions)))
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ScanAndClean drops sessions nobody touched for longer than the idle timeout,
// which is what happens to a workout the user walked away from.
func (r *Registry) ScanAndClean(ctx context.Context) int {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if ctx.Err() != nil {
			break
		}
		// busy sessions are clearly not idle
		if !entry.mu.TryLock() {
			continue
		}
		if now.Sub(entry.lastTouched) > r.idleTimeout {
			entry.removed = true
			delete(r.sessions, id)
			removed++
			log.Debugf("workout session [%s] of [%s] expired in state %s", id, entry.ownerID, entry.recorder.State())
		}
		entry.mu.Unlock()
	}

	if r.metrics != nil {
		r.metrics.GaugeActiveSessions.Set(float64(len(r.sessions)))
		r.metrics.CounterSessionsDiscarded.Add(float64(removed))
	}
	if removed > 0 {
		log.Infof("workout sessions scan and clean: removed %d, left %d", removed, len(r.sessions))
	}

	return removed
}
