package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wcckavaliers/scorebook/external/gemini"
	"github.com/wcckavaliers/scorebook/internal/config"
	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
	"github.com/wcckavaliers/scorebook/internal/domain/standings"
	"github.com/wcckavaliers/scorebook/internal/infrastructure/broadcast"
	"github.com/wcckavaliers/scorebook/internal/infrastructure/notify"
	"github.com/wcckavaliers/scorebook/internal/infrastructure/pdfreport"
	"github.com/wcckavaliers/scorebook/internal/infrastructure/repository/memory"
	"github.com/wcckavaliers/scorebook/internal/infrastructure/repository/postgres"
	"github.com/wcckavaliers/scorebook/internal/interfaces/httpapi"
	"github.com/wcckavaliers/scorebook/internal/jobs"
	"github.com/wcckavaliers/scorebook/internal/observability"
	"github.com/wcckavaliers/scorebook/internal/platform/cache"
	idgen "github.com/wcckavaliers/scorebook/internal/platform/id"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/platform/resilience"
	"github.com/wcckavaliers/scorebook/internal/usecase"
)

// App owns every long-lived component of the service and tears them down in
// reverse order on shutdown.
type App struct {
	Server *http.Server

	cfg             config.Config
	logger          *logging.Logger
	db              *sqlx.DB
	mailer          *notify.Mailer
	keepAlive       *jobs.KeepAlive
	pprofServer     *http.Server
	stopProfiler    func() error
	shutdownTracing func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start pprof: %w", err)
	}

	var (
		db        *sqlx.DB
		matches   match.Repository
		players   playerstats.Repository
		teamSlots standings.Repository
	)
	if cfg.DBURL != "" {
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		matches = postgres.NewMatchRepository(db)
		players = postgres.NewPlayerStatsRepository(db)
		teamSlots = postgres.NewStandingsRepository(db)
		logger.Info("storage ready", "backend", "postgres", "database", dbNameFromURL(cfg.DBURL))
	} else {
		matches = memory.NewMatchRepository()
		players = memory.NewPlayerStatsRepository()
		teamSlots = memory.NewStandingsRepository()
		logger.Warn("DB_URL not set, using in-memory repositories")
	}

	var mailer *notify.Mailer
	var notifier usecase.Notifier
	if cfg.MailEnabled {
		mailer, err = notify.NewMailer(notify.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			To:       cfg.MailTo,
			PoolSize: cfg.MailPoolSize,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build mailer: %w", err)
		}
		notifier = mailer
	} else {
		logger.Info("mail notifications disabled", "reason", "MAIL_ENABLED=false")
	}

	generator := gemini.NewClient(gemini.ClientConfig{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Timeout: cfg.GeminiTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GeminiCircuitEnabled,
			FailureThreshold: cfg.GeminiCircuitFailureCount,
			OpenTimeout:      cfg.GeminiCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GeminiCircuitHalfOpenMaxReq,
		},
	})

	var readCache *cache.Store
	if cfg.CacheEnabled {
		readCache = cache.NewStore(cfg.CacheTTL)
	}

	hub := broadcast.NewHub(logger)

	scorecards := usecase.NewScorecardService(
		usecase.NewReportExtractor(generator, cfg.GeminiPreferredModel, cfg.GeminiTimeout, logger),
		usecase.NewStatsReconciler(players, logger),
		usecase.NewStandingsService(teamSlots, logger),
		matches,
		players,
		readCache,
		idgen.NewRandomGenerator(),
		notifier,
		hub,
		logger,
	)
	teamService := usecase.NewTeamService(teamSlots, logger)

	var keepAlive *jobs.KeepAlive
	var activity httpapi.ActivityRecorder
	if cfg.KeepAliveEnabled {
		keepAlive = jobs.NewKeepAlive(
			jobs.NewFastHTTPPinger(cfg.KeepAlivePingTimeout),
			cfg.KeepAliveTargetURL,
			notifier,
			logger,
		)
		activity = keepAlive
	}

	handler := httpapi.NewHandler(scorecards, teamService, hub, pdfreport.ExtractText, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, activity)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:          server,
		cfg:             cfg,
		logger:          logger,
		db:              db,
		mailer:          mailer,
		keepAlive:       keepAlive,
		pprofServer:     pprofServer,
		stopProfiler:    stopProfiler,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Start launches the background jobs. The HTTP server itself is served by
// the caller so it controls the listen error path.
func (a *App) Start() error {
	if a.keepAlive != nil {
		if err := a.keepAlive.Start(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) {
	if err := a.Server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown failed", "error", err)
	}
	if a.keepAlive != nil {
		a.keepAlive.Stop()
	}
	if a.mailer != nil {
		a.mailer.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close database failed", "error", err)
		}
	}
	if err := observability.StopPprofServer(a.pprofServer, a.logger, 5*time.Second); err != nil {
		a.logger.Error("pprof shutdown failed", "error", err)
	}
	if a.stopProfiler != nil {
		if err := a.stopProfiler(); err != nil {
			a.logger.Error("profiler shutdown failed", "error", err)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.logger.Error("tracing shutdown failed", "error", err)
		}
	}
}
