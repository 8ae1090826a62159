package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// IsLogged resolves the token to the id of the signed-in user. Unknown and
// expired tokens are not an error.
func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (string, bool, error) {
	cmd := lc.redisClient.HGetAll(ctx, SessionKey(token))
	if err := cmd.Err(); err != nil {
		return "", false, err
	}

	session := cmd.Val()
	userID := session[sessionFieldUserID]
	if userID == "" {
		return "", false, nil
	}

	createdAtUnix, err := strconv.ParseInt(session[sessionFieldCreatedAt], 10, 64)
	if err != nil {
		return "", false, fmt.Errorf("parse session created at: %w", err)
	}

	if time.Since(time.Unix(createdAtUnix, 0)) > lc.ttl {
		return "", false, nil
	}

	return userID, true, nil
}
