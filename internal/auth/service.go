package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

const (
	DefaultTTL        = 24 * 7 * time.Hour
	minPasswordLength = 6
	sessionKeyPrefix  = "workoutnotes-session||"
	TokensSetKey      = "workoutnotes-sessions"

	sessionFieldUserID    = "user_id"
	sessionFieldCreatedAt = "created_at"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordTooShort = fmt.Errorf("password must have at least %d characters", minPasswordLength)
	ErrWrongCredentials = errors.New("wrong credentials")
)

type usersRepo interface {
	Add(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	redisClient *redis.Client
	users       usersRepo
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	// bcrypt with the production cost takes about a second, tests replace it
	HashPasswordFunc func(password string) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	redisClient *redis.Client,
	users usersRepo,
) *Service {
	return &Service{
		ttl:              ttl,
		redisClient:      redisClient,
		users:            users,
		RandStringFunc:   pkg.GenerateRandomString,
		HashPasswordFunc: pkg.HashPassword,
	}
}

func SessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (as *Service) SignUp(ctx context.Context, email, password string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.signUp")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := as.HashPasswordFunc(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return as.users.Add(ctx, email, hash)
}

// Login checks the credentials and opens a new session, returning its token.
func (as *Service) Login(ctx context.Context, email, password string, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer tracing.EndSpanWithErrCheck(span, &err)

	user, err := as.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrWrongCredentials
		}
		return "", err
	}
	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrWrongCredentials
	}

	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	cmdHSet := as.redisClient.HSet(
		ctx, SessionKey(token),
		sessionFieldUserID, user.ID,
		sessionFieldCreatedAt, createdAt.Unix(),
	)
	if err := cmdHSet.Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	cmdSAdd := as.redisClient.SAdd(ctx, TokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Logout drops the session. It reports false when there was no such session.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	cmdDel := as.redisClient.Del(ctx, SessionKey(token))
	if err := cmdDel.Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	cmdSRem := as.redisClient.SRem(ctx, TokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return false, err
	}

	return cmdDel.Val() > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old.
// It returns the number of removed sessions.
func (as *Service) ScanAndClean(ctx context.Context) int {
	cmd := as.redisClient.SMembers(ctx, TokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return 0
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return 0
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		cmd := as.redisClient.HGet(ctx, SessionKey(token), sessionFieldCreatedAt)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// session hash is gone, only the set entry is left
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	removed := 0
	for _, token := range toRemove {
		cmdDel := as.redisClient.Del(ctx, SessionKey(token))
		if err := cmdDel.Err(); err != nil {
			log.Errorf("=> auth service, clean token: %s", err)
			continue
		}

		// remove token from the list of sessions
		cmdSRem := as.redisClient.SRem(ctx, TokensSetKey, token)
		if err := cmdSRem.Err(); err != nil {
			log.Errorf("=> auth service, clean token: %s", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Infof("=> auth service, scan and clean removed %d sessions", removed)
	}
	return removed
}
