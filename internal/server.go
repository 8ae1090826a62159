package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/workoutnotes/internal/auth"
	"github.com/2beens/workoutnotes/internal/config"
	"github.com/2beens/workoutnotes/internal/db"
	"github.com/2beens/workoutnotes/internal/exercises"
	"github.com/2beens/workoutnotes/internal/goals"
	"github.com/2beens/workoutnotes/internal/identity"
	"github.com/2beens/workoutnotes/internal/measurements"
	"github.com/2beens/workoutnotes/internal/middleware"
	"github.com/2beens/workoutnotes/internal/recorder"
	"github.com/2beens/workoutnotes/internal/routines"
	"github.com/2beens/workoutnotes/internal/telemetry/metrics"
	"github.com/2beens/workoutnotes/internal/telemetry/tracing"
	"github.com/2beens/workoutnotes/internal/workouts"
	"github.com/2beens/workoutnotes/pkg"
)

const (
	minExerciseCacheSize = 512 * 1024
	authScanInterval     = 8 * time.Hour
	sessionsScanInterval = 10 * time.Minute
)

type loginChecker interface {
	IsLogged(ctx context.Context, token string) (userID string, ok bool, err error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config        *config.Config
	dbPool        *pgxpool.Pool
	exerciseCache *freecache.Cache

	redisClient  *redis.Client
	rateLimiter  middleware.RequestRateLimiter
	loginChecker loginChecker
	authService  *auth.Service
	sessions     *recorder.Registry

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
	OtelServiceName         string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbParams := db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	}

	if params.Config.RunMigrations {
		if err := db.MigrateUp(dbParams.DSN()); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	dbPool, err := db.NewDBPool(ctx, dbParams)
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	serviceName := params.OtelServiceName
	if serviceName == "" {
		serviceName = "workoutnotes-backend"
	}
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, rdb)
	if err != nil {
		return nil, err
	}

	sessionTTL := params.Config.AuthSessionTTL()
	authService := auth.NewAuthService(sessionTTL, rdb, auth.NewUsersRepo(dbPool))

	cacheSize := params.Config.ExerciseCacheSizeMB * 1024 * 1024
	if cacheSize < minExerciseCacheSize {
		cacheSize = minExerciseCacheSize
	}

	s := &Server{
		config:        params.Config,
		dbPool:        dbPool,
		exerciseCache: freecache.NewCache(cacheSize),

		redisClient:  rdb,
		rateLimiter:  redis_rate.NewLimiter(rdb),
		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionTTL, rdb),
		sessions:     recorder.NewRegistry(params.Config.WorkoutSessionIdleTimeout(), metricsManager),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
	}).Methods("GET", "OPTIONS").Name("root")

	if s.authService != nil {
		authHandler := auth.NewHandler(s.authService)
		authHandler.SetupRoutes(r, s.rateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)
	}

	exercisesRepo := exercises.NewRepo(s.dbPool)
	exerciseCatalog := exercises.NewCatalog(exercisesRepo, s.exerciseCache, s.config.ExerciseCacheTTLSeconds)
	exercisesHandler := exercises.NewHandler(exerciseCatalog)
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises", exercisesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	routinesRepo := routines.NewRepo(s.dbPool)
	routinesHandler := routines.NewHandler(routinesRepo)
	r.HandleFunc("/routines", routinesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-routines")
	r.HandleFunc("/routines", routinesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-routine")

	workoutsRepo := workouts.NewRepo(s.dbPool)

	// session routes go first, /workouts/{id} would shadow them otherwise
	var recorderOpts []recorder.Option
	if s.config.CommitOpenExerciseOnFinish {
		recorderOpts = append(recorderOpts, recorder.WithOpenExerciseCommit(true))
	}
	sessionsHandler := recorder.NewHandler(
		s.sessions,
		recorder.Deps{
			Identity:  identity.ContextProvider{},
			Routines:  routinesRepo,
			Exercises: exerciseCatalog,
			Store:     workoutsRepo,
		},
		s.metricsManager,
		recorderOpts...,
	)
	sessionsHandler.SetupRoutes(r)

	workoutsHandler := workouts.NewHandler(workoutsRepo)
	r.HandleFunc("/workouts", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workouts-history")
	r.HandleFunc("/workouts/calendar", workoutsHandler.HandleCalendar).Methods("GET", "OPTIONS").Name("workouts-calendar")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDetails).Methods("GET", "OPTIONS").Name("workout-details")

	measurementsHandler := measurements.NewHandler(measurements.NewRepo(s.dbPool))
	r.HandleFunc("/measurements/template", measurementsHandler.HandleTemplate).Methods("GET", "OPTIONS").Name("measurements-template")
	r.HandleFunc("/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-measurements")
	r.HandleFunc("/measurements/latest", measurementsHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-measurements")
	r.HandleFunc("/measurements/stats", measurementsHandler.HandleStats).Methods("GET", "OPTIONS").Name("measurements-stats")

	goalsHandler := goals.NewHandler(goals.NewRepo(s.dbPool))
	r.HandleFunc("/goals", goalsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals", goalsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-goal")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.runPeriodically(ctx, authScanInterval, func(ctx context.Context) {
		s.authService.ScanAndClean(ctx)
	})
	go s.runPeriodically(ctx, sessionsScanInterval, func(ctx context.Context) {
		s.sessions.ScanAndClean(ctx)
	})

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) runPeriodically(ctx context.Context, interval time.Duration, job func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the stores go away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if open := s.sessions.Len(); open > 0 {
		log.Warnf("%d unfinished workout sessions dropped on shutdown", open)
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}
