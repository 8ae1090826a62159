//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workoutnotes/internal/auth"
	"github.com/2beens/workoutnotes/internal/exercises"
	"github.com/2beens/workoutnotes/internal/goals"
	"github.com/2beens/workoutnotes/internal/measurements"
	"github.com/2beens/workoutnotes/internal/recorder"
	"github.com/2beens/workoutnotes/internal/routines"
	"github.com/2beens/workoutnotes/internal/workouts"
)

func (s *IntegrationTestSuite) TestAuth() {
	ctx := context.Background()
	email, token := s.newUser(ctx)

	// same email again
	status, _ := s.do(ctx, http.MethodPost, "/auth/signup", "", auth.Credentials{
		Email:    email,
		Password: testPassword,
	})
	s.Equal(http.StatusConflict, status)

	status, _ = s.do(ctx, http.MethodPost, "/auth/signin", "", auth.Credentials{
		Email:    email,
		Password: "wrong-password",
	})
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.do(ctx, http.MethodGet, "/routines", token, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(ctx, http.MethodGet, "/auth/signout", token, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(ctx, http.MethodGet, "/routines", token, nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestRecordWorkout() {
	ctx := context.Background()
	_, token := s.newUser(ctx)

	var custom exercises.Exercise
	s.doJSON(ctx, http.MethodPost, "/exercises", token, exercises.AddExerciseRequest{
		Name:        "Kettlebell swing",
		Description: gofakeit.Sentence(6),
	}, http.StatusCreated, &custom)
	require.NotEmpty(s.T(), custom.ID)

	var routine routines.Routine
	s.doJSON(ctx, http.MethodPost, "/routines", token, routines.AddRoutineRequest{
		Name:         "Monday",
		ExerciseList: "Push-up, Deadlift, Kettlebell swing, Squat",
	}, http.StatusCreated, &routine)
	require.NotEmpty(s.T(), routine.ID)

	var session recorder.SessionResponse
	s.doJSON(ctx, http.MethodPost, "/workouts/sessions", token, recorder.NewSessionRequest{
		RoutineID: routine.ID,
		AutoStart: true,
	}, http.StatusCreated, &session)
	require.NotEmpty(s.T(), session.ID)
	assert.Equal(s.T(), recorder.StateSelectingExercise, session.State)
	assert.Equal(s.T(), []string{"Push-up", "Kettlebell swing", "Squat"}, session.Candidates)
	assert.Equal(s.T(), "Push-up", session.DefaultSelection)

	sessionPath := fmt.Sprintf("/workouts/sessions/%s", session.ID)

	// not a candidate
	status, _ := s.do(ctx, http.MethodPost, sessionPath+"/exercise", token, recorder.BeginExerciseRequest{
		ExerciseName: "Deadlift",
	})
	assert.Equal(s.T(), http.StatusBadRequest, status)

	s.doJSON(ctx, http.MethodPost, sessionPath+"/exercise", token, recorder.BeginExerciseRequest{
		ExerciseName: "Push-up",
	}, http.StatusOK, nil)
	for i := 1; i <= 2; i++ {
		var added recorder.AddSetResponse
		s.doJSON(ctx, http.MethodPost, sessionPath+"/sets", token, nil, http.StatusOK, &added)
		assert.Equal(s.T(), i, added.SetNumber)
	}
	s.doJSON(ctx, http.MethodPut, sessionPath+"/sets/2", token, recorder.EditSetRequest{
		Field: "reps",
		Value: "12",
	}, http.StatusOK, nil)
	s.doJSON(ctx, http.MethodPost, sessionPath+"/exercise/end", token, nil, http.StatusOK, nil)

	// another user can't see the session
	_, otherToken := s.newUser(ctx)
	status, _ = s.do(ctx, http.MethodGet, sessionPath, otherToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	var finished recorder.FinishResponse
	s.doJSON(ctx, http.MethodPost, sessionPath+"/finish", token, nil, http.StatusOK, &finished)
	require.NotEmpty(s.T(), finished.WorkoutID)

	// persisted sessions are gone from the registry
	status, _ = s.do(ctx, http.MethodPost, sessionPath+"/finish", token, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	var history workouts.HistoryResponse
	s.doJSON(ctx, http.MethodGet, "/workouts", token, nil, http.StatusOK, &history)
	require.Equal(s.T(), 1, history.Total)
	assert.Equal(s.T(), finished.WorkoutID, history.Workouts[0].ID)

	var record workouts.Record
	s.doJSON(ctx, http.MethodGet, "/workouts/"+finished.WorkoutID, token, nil, http.StatusOK, &record)
	assert.Equal(s.T(), routine.ID, record.RoutineID)
	require.Len(s.T(), record.Exercises, 1)
	assert.Equal(s.T(), "Push-up", record.Exercises[0].ExerciseName)
	assert.Equal(s.T(), []workouts.SetRecord{
		{SetNumber: 1},
		{SetNumber: 2, Reps: "12"},
	}, record.Exercises[0].Sets)
	assert.False(s.T(), record.EndTime.Before(record.StartTime))

	var calendar workouts.CalendarResponse
	s.doJSON(ctx, http.MethodGet, "/workouts/calendar", token, nil, http.StatusOK, &calendar)
	assert.Equal(s.T(), []string{record.StartTime.UTC().Format("2006-01-02")}, calendar.Dates)

	var count int
	require.NoError(s.T(), s.DB.QueryRowContext(ctx,
		"SELECT count(*) FROM workout WHERE id = $1", finished.WorkoutID,
	).Scan(&count))
	assert.Equal(s.T(), 1, count)
}

func (s *IntegrationTestSuite) TestMeasurementsAndGoals() {
	ctx := context.Background()
	_, token := s.newUser(ctx)

	var latest measurements.Snapshot
	status, _ := s.do(ctx, http.MethodGet, "/measurements/latest", token, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	for _, snap := range []struct {
		date   string
		weight string
	}{
		{"2024-02-01", "81.5"},
		{"2024-01-01", "83"},
	} {
		s.doJSON(ctx, http.MethodPost, "/measurements", token, measurements.AddSnapshotRequest{
			Date: snap.date,
			Measurements: []measurements.Measurement{
				{Name: "Weight", Value: snap.weight, Unit: "kg"},
			},
		}, http.StatusCreated, nil)
	}

	s.doJSON(ctx, http.MethodGet, "/measurements/latest", token, nil, http.StatusOK, &latest)
	assert.Equal(s.T(), "2024-02-01", latest.Date)

	var stats measurements.Stats
	s.doJSON(ctx, http.MethodGet, "/measurements/stats", token, nil, http.StatusOK, &stats)
	assert.Equal(s.T(), []string{"2024-01-01", "2024-02-01"}, stats.Dates)
	assert.Equal(s.T(), []float64{83, 81.5}, stats.Series["Weight"])

	status, _ = s.do(ctx, http.MethodPost, "/measurements", token, measurements.AddSnapshotRequest{
		Date: "2024-03-01",
		Measurements: []measurements.Measurement{
			{Name: "Weight", Value: "-1", Unit: "kg"},
		},
	})
	assert.Equal(s.T(), http.StatusBadRequest, status)

	s.doJSON(ctx, http.MethodPost, "/goals", token, goals.AddGoalRequest{
		Name:       "Run a half marathon",
		TargetDate: "2025-05-01",
	}, http.StatusCreated, nil)

	var goalsList goals.ListResponse
	s.doJSON(ctx, http.MethodGet, "/goals", token, nil, http.StatusOK, &goalsList)
	require.Len(s.T(), goalsList.Goals, 1)
	assert.Equal(s.T(), "2025-05-01", goalsList.Goals[0].TargetDate)
}

func (s *IntegrationTestSuite) TestCustomExercises() {
	ctx := context.Background()
	_, token := s.newUser(ctx)
	_, otherToken := s.newUser(ctx)

	var custom exercises.Exercise
	s.doJSON(ctx, http.MethodPost, "/exercises", token, exercises.AddExerciseRequest{
		Name:        "Farmer carry",
		Description: gofakeit.Sentence(6),
	}, http.StatusCreated, &custom)
	require.NotEmpty(s.T(), custom.ID)

	var list exercises.ListResponse
	s.doJSON(ctx, http.MethodGet, "/exercises", token, nil, http.StatusOK, &list)
	assert.Equal(s.T(), 6, list.Total)

	// routines are private too, another user gets no candidates
	var routine routines.Routine
	s.doJSON(ctx, http.MethodPost, "/routines", token, routines.AddRoutineRequest{
		Name:         "Carries",
		ExerciseList: "Farmer carry, Plank",
	}, http.StatusCreated, &routine)
	var otherSession recorder.SessionResponse
	s.doJSON(ctx, http.MethodPost, "/workouts/sessions", otherToken, recorder.NewSessionRequest{
		RoutineID: routine.ID,
	}, http.StatusCreated, &otherSession)
	assert.Empty(s.T(), otherSession.Candidates)

	// built-ins and other users' exercises cannot be deleted
	status, _ := s.do(ctx, http.MethodDelete, "/exercises/1", token, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)
	status, _ = s.do(ctx, http.MethodDelete, "/exercises/"+custom.ID, otherToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)
	status, _ = s.do(ctx, http.MethodDelete, "/exercises/not-a-uuid", token, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	s.doJSON(ctx, http.MethodDelete, "/exercises/"+custom.ID, token, nil, http.StatusOK, nil)

	s.doJSON(ctx, http.MethodGet, "/exercises", token, nil, http.StatusOK, &list)
	assert.Equal(s.T(), 5, list.Total)
	status, _ = s.do(ctx, http.MethodDelete, "/exercises/"+custom.ID, token, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestAddExercise_OwnerGone() {
	ctx := context.Background()
	email, token := s.newUser(ctx)

	// the auth session outlives the user row
	_, err := s.DB.ExecContext(ctx, "DELETE FROM app_user WHERE email = $1", email)
	require.NoError(s.T(), err)

	status, _ := s.do(ctx, http.MethodPost, "/exercises", token, exercises.AddExerciseRequest{
		Name:        "Turkish get-up",
		Description: gofakeit.Sentence(6),
	})
	assert.Equal(s.T(), http.StatusBadRequest, status)

	status, _ = s.do(ctx, http.MethodPost, "/routines", token, routines.AddRoutineRequest{
		Name:         "Orphan",
		ExerciseList: "Plank",
	})
	assert.Equal(s.T(), http.StatusBadRequest, status)
}
