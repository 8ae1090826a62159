//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workoutnotes/internal/auth"
)

const testPassword = "testpass"

// do sends a JSON request and returns the status code and the raw body.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte) {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

// doJSON is do that expects the given status and decodes the response into out.
func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path, token string, body any, expectedStatus int, out any) {
	status, respBytes := s.do(ctx, method, path, token, body)
	require.Equal(s.T(), expectedStatus, status, string(respBytes))
	if out != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, out))
	}
}

// newUser signs up a random user and returns its email and a fresh token.
func (s *IntegrationTestSuite) newUser(ctx context.Context) (string, string) {
	creds := auth.Credentials{
		Email:    gofakeit.Email(),
		Password: testPassword,
	}

	var user auth.User
	s.doJSON(ctx, http.MethodPost, "/auth/signup", "", creds, http.StatusCreated, &user)
	require.NotEmpty(s.T(), user.ID)

	var loginResp auth.LoginResponse
	s.doJSON(ctx, http.MethodPost, "/auth/signin", "", creds, http.StatusOK, &loginResp)
	require.NotEmpty(s.T(), loginResp.Token)

	return creds.Email, loginResp.Token
}
