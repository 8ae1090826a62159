package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=exercises_test

type customExercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id string) (*Exercise, error)
	ListByUser(ctx context.Context, userID string) ([]Exercise, error)
	Delete(ctx context.Context, id string) error
}

// Catalog merges the built-in exercises with the custom ones of a user.
// The custom part is kept per user in a freecache cache until the user adds or
// deletes an exercise, or the entry expires. Built-ins are never cached.
type Catalog struct {
	repo       customExercisesRepo
	cache      *freecache.Cache
	ttlSeconds int
}

func NewCatalog(repo customExercisesRepo, cache *freecache.Cache, ttlSeconds int) *Catalog {
	return &Catalog{
		repo:       repo,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

func cacheKey(userID string) []byte {
	return []byte("custom-exercises::" + userID)
}

// ListAvailable returns the built-in exercises followed by the user's custom exercises.
func (c *Catalog) ListAvailable(ctx context.Context, userID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.exercises.available")
	defer tracing.EndSpanWithErrCheck(span, &err)

	available := BuiltIn()
	if userID == "" {
		return available, nil
	}

	custom, ok := c.fromCache(userID)
	if !ok {
		custom, err = c.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list custom exercises: %w", err)
		}
		c.toCache(userID, custom)
	}

	return append(available, custom...), nil
}

func (c *Catalog) Get(ctx context.Context, userID, id string) (*Exercise, error) {
	if e, ok := builtInByID(id); ok {
		return &e, nil
	}

	e, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// custom exercises are private
	if e.UserID != userID {
		return nil, ErrExerciseNotFound
	}

	return e, nil
}

func (c *Catalog) Add(ctx context.Context, exercise Exercise) (*Exercise, error) {
	if err := exercise.Validate(); err != nil {
		return nil, err
	}
	if exercise.UserID == "" {
		return nil, errors.New("exercise owner missing")
	}
	exercise.BuiltIn = false

	added, err := c.repo.Add(ctx, exercise)
	if err != nil {
		return nil, err
	}

	c.invalidate(exercise.UserID)

	return added, nil
}

// Delete removes a custom exercise of the user. Built-ins and exercises of
// other users are reported as not found.
func (c *Catalog) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.exercises.delete")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if _, ok := builtInByID(id); ok {
		return ErrExerciseNotFound
	}

	e, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return ErrExerciseNotFound
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}

	c.invalidate(userID)
	return nil
}

func (c *Catalog) invalidate(userID string) {
	if c.cache != nil {
		c.cache.Del(cacheKey(userID))
	}
}

func (c *Catalog) fromCache(userID string) ([]Exercise, bool) {
	if c.cache == nil {
		return nil, false
	}

	payload, err := c.cache.Get(cacheKey(userID))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("exercises catalog cache get [%s]: %s", userID, err)
		}
		return nil, false
	}

	var exercises []Exercise
	if err := json.Unmarshal(payload, &exercises); err != nil {
		log.Warnf("exercises catalog cache unmarshal [%s]: %s", userID, err)
		return nil, false
	}

	return exercises, true
}

func (c *Catalog) toCache(userID string, exercises []Exercise) {
	if c.cache == nil {
		return
	}

	payload, err := json.Marshal(exercises)
	if err != nil {
		log.Warnf("exercises catalog cache marshal [%s]: %s", userID, err)
		return
	}

	if err := c.cache.Set(cacheKey(userID), payload, c.ttlSeconds); err != nil {
		// too many custom exercises for one cache slot, they are read from the db instead
		if errors.Is(err, freecache.ErrLargeEntry) {
			log.Debugf("exercises catalog cache set [%s]: %d bytes not cached", userID, len(payload))
			return
		}
		log.Warnf("exercises catalog cache set [%s]: %s", userID, err)
	}
}
