package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/middleware"
	"github.com/2beens/workoutnotes/internal/telemetry/metrics"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	authService authService
}

func NewHandler(authService authService) *Handler {
	return &Handler{
		authService: authService,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) {
	authSubrouter := mainRouter.PathPrefix("/auth").Subrouter()
	authSubrouter.HandleFunc("/signup", handler.HandleSignUp).Methods("POST", "OPTIONS").Name("signup")
	authSubrouter.HandleFunc("/signin", handler.HandleSignIn).Methods("POST", "OPTIONS").Name("signin")
	authSubrouter.HandleFunc("/signout", handler.HandleSignOut).Methods("GET", "OPTIONS").Name("signout")

	// rate limit the auth endpoints to slow down credential guessing
	authSubrouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, metricsManager))
}

func decodeCredentials(r *http.Request) (Credentials, error) {
	var creds Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return creds, err
		}
		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return creds, err
	}
	return Credentials{
		Email:    r.Form.Get("email"),
		Password: r.Form.Get("password"),
	}, nil
}

func (handler *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signUp")
	defer span.End()

	creds, err := decodeCredentials(r)
	if err != nil {
		log.Tracef("sign up, read params: %s", err)
		http.Error(w, "sign up failed", http.StatusBadRequest)
		return
	}

	user, err := handler.authService.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrPasswordTooShort):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Errorf("sign up [%s]: %s", creds.Email, err)
			http.Error(w, "sign up failed", http.StatusInternalServerError)
		}
		return
	}

	log.Infof("new user signed up: %s", user.ID)
	pkg.WriteJSON(w, user, http.StatusCreated)
}

func (handler *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signIn")
	defer span.End()

	creds, err := decodeCredentials(r)
	if err != nil {
		log.Tracef("sign in, read params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}
	if creds.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if creds.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(ctx, creds.Email, creds.Password, time.Now())
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) {
			log.Tracef("failed login attempt for user: %s", creds.Email)
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login failed: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	pkg.WriteJSON(w, LoginResponse{Token: token}, http.StatusOK)
}

func (handler *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signOut")
	defer span.End()

	authToken := middleware.BearerToken(r)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}
