package auth

import "context"

// LoginTestChecker resolves tokens from an in-memory map of token to user id.
type LoginTestChecker struct {
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]string{},
	}
}

func (c *LoginTestChecker) IsLogged(_ context.Context, token string) (string, bool, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok || userID == "" {
		return "", false, nil
	}
	return userID, true, nil
}
