// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/infra/adapters/emby"
	tele "emby-cdk-manager/internal/infra/adapters/telegram"
	"emby-cdk-manager/internal/infra/api"
	"emby-cdk-manager/internal/infra/api/apiv1"
	"emby-cdk-manager/internal/infra/db/migrations"
	pg "emby-cdk-manager/internal/infra/db/postgres"
	"emby-cdk-manager/internal/infra/i18n"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/metrics"
	red "emby-cdk-manager/internal/infra/redis"
	"emby-cdk-manager/internal/infra/sched"
	"emby-cdk-manager/internal/infra/scheduler"
	"emby-cdk-manager/internal/infra/security"
	"emby-cdk-manager/internal/infra/web"
	"emby-cdk-manager/internal/infra/worker"
	"emby-cdk-manager/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if encKey == "" {
		logger.Warn().Msg("security.encryption_key not set; deriving the token key from auth.jwt_secret")
		encKey = security.DeriveKey(cfg.Auth.JWTSecret)
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}
	hasher := security.NewBcryptHasher(security.DefaultBcryptCost)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	cdkRepo := pg.NewCDKRepo(pool)
	accountRepo := pg.NewAccountRepoCacheDecorator(pg.NewAccountRepo(pool, encSvc), redisClient, cfg.Redis.TTL, logger)
	templateRepo := pg.NewTemplateRepoCacheDecorator(pg.NewTemplateRepo(pool), redisClient, cfg.Redis.TTL)
	mediaRepo := pg.NewMediaRepoCacheDecorator(pg.NewMediaItemRepo(pool), redisClient, cfg.Redis.TTL)
	configRepo := pg.NewSystemConfigRepo(pool)

	// ---- Emby gateway ----
	gateway, err := emby.NewGateway(cfg.Emby, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("emby gateway")
	}
	serverIdentity := emby.NewServerIdentity(gateway, cfg.Emby.ServerIDTTL)

	// ---- Telegram ----
	var notifier adapter.Notifier
	if cfg.Telegram.Token != "" {
		n, err := tele.NewAdminNotifier(cfg.Telegram, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
		notifier = n
	} else {
		notifier = tele.NewNoopNotifier(logger)
	}

	// ---- Worker pool ----
	workers := worker.NewPool(cfg.Worker.Size, cfg.Emby.Timeout*2, logger)
	workers.Start(ctx)
	defer workers.Stop()

	// ---- Use cases ----
	sessions := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.TokenTTL)

	cdkUC := usecase.NewCDKUseCase(cdkRepo, templateRepo, txManager, usecase.CDKSettings{
		Prefix:                 cfg.CDK.Prefix,
		MaxBatch:               cfg.CDK.MaxBatch,
		DefaultCDKValidDays:    cfg.CDK.DefaultCDKValidDays,
		DefaultMemberValidDays: cfg.CDK.DefaultMemberValidDays,
	}, logger)
	redemptionUC := usecase.NewRedemptionUseCase(usecase.RedemptionDeps{
		Registry:  cdkUC,
		CDKs:      cdkRepo,
		Accounts:  accountRepo,
		Templates: templateRepo,
		TM:        txManager,
		Gateway:   gateway,
		Sessions:  sessions,
		Hasher:    hasher,
		Locker:    locker,
		Runner:    workers,
		Notifier:  notifier,
		LockTTL:   cfg.CDK.RedeemLockTTL,
	}, logger)
	authUC := usecase.NewAuthUseCase(accountRepo, gateway, sessions, rateLimiter, usecase.AuthSettings{
		AdminUsername: cfg.Auth.AdminUsername,
		RateLimit:     cfg.Auth.LoginRateLimit,
		RateWindow:    cfg.Auth.LoginRateWindow,
	}, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo, gateway, logger)
	templateUC := usecase.NewTemplateUseCase(templateRepo, cdkRepo, txManager, logger)
	configUC := usecase.NewSystemConfigUseCase(configRepo, logger)
	mediaUC := usecase.NewMediaUseCase(mediaRepo, serverIdentity, cfg.Emby.PublicURL, logger)
	browseUC := usecase.NewBrowseUseCase(accountRepo, configRepo, gateway, serverIdentity, cfg.Emby.PublicURL, logger)
	reconcileUC := usecase.NewReconcileUseCase(accountRepo, gateway, notifier, usecase.ReconcileSettings{
		ResyncBatch: cfg.Scheduler.ResyncBatch,
	}, logger)

	// ---- Scheduler ----
	jobs := scheduler.NewScheduler(cfg.Scheduler.JobTimeout, logger)
	if err := sched.Register(jobs, cfg.Scheduler,
		sched.NewExpiryWorker(reconcileUC, logger),
		sched.NewResyncReconciler(reconcileUC, logger),
	); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	jobs.Start()

	// ---- HTTP ----
	bundle, err := i18n.NewBundle(i18n.LocalesFS, cfg.I18n.DefaultLang, "zh", "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	srv := apiv1.NewServer(apiv1.Deps{
		Auth:       authUC,
		Redemption: redemptionUC,
		CDKs:       cdkUC,
		Accounts:   accountUC,
		Templates:  templateUC,
		Configs:    configUC,
		Media:      mediaUC,
		Browse:     browseUC,
		Reconcile:  reconcileUC,
		Sessions:   sessions,
		Limiter:    rateLimiter,
		I18n:       bundle,
	}, apiv1.Settings{
		PublicURL:          cfg.Emby.PublicURL,
		WebhookToken:       cfg.HTTP.WebhookToken,
		LoginRateLimit:     cfg.Auth.LoginRateLimit * 4,
		LoginRateWindow:    cfg.Auth.LoginRateWindow,
		RegisterRateLimit:  cfg.Auth.RegisterRateCap,
		RegisterRateWindow: cfg.Auth.RegisterRateSpan,

		BackgroundFallbackURL: cfg.Emby.BackgroundFallbackURL,
	}, logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(
		api.TraceID(),
		api.RequestLog(logger),
		api.Recover(logger),
		api.Timeout(cfg.HTTP.RequestTimeout),
	)
	r.Handle("/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, srv)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown")
	}
	logger.Info().Msg("bye")
}
