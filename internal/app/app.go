package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/config"
	"github.com/shellgate/shellgate/internal/gateway"
	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/httpserver"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/logger"
	"github.com/shellgate/shellgate/internal/redis"
	"github.com/shellgate/shellgate/internal/remote"
	"github.com/shellgate/shellgate/internal/scheduler"
	filestore "github.com/shellgate/shellgate/internal/store/file"
	redisstore "github.com/shellgate/shellgate/internal/store/redis"
	"github.com/shellgate/shellgate/internal/version"
)

type App struct {
	cfg            *config.Config
	logger         logger.Logger
	server         *httpserver.Server
	redisClient    *goredis.Client
	session        *remote.Session
	policyReloader *scheduler.PolicyReloader
	monitor        *scheduler.SessionMonitor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Durable stores live as plain files under the data directory.
	paths := filestore.PathsIn(cfg.DataDir)
	if err := filestore.EnsureFiles(paths); err != nil {
		loggerClient.Errorf("Failed to prepare data directory: %v", err)
		os.Exit(1)
	}

	servers := filestore.NewServerStore(paths.Servers)
	admins := filestore.NewAdminStore(paths.Admins)
	book := filestore.NewCommandStore(paths.Commands)

	// Make sure at least one operator can act before the API opens.
	if cfg.BootstrapAdmin != "" {
		if err := admins.Add(cfg.BootstrapAdmin); err != nil {
			loggerClient.Errorf("Failed to bootstrap admin %q: %v", cfg.BootstrapAdmin, err)
			os.Exit(1)
		}
		loggerClient.Info("bootstrap admin ensured on roster",
			logger.String("identity", cfg.BootstrapAdmin))
	}

	holder := guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin)

	// Redis is optional, it only backs the queryable audit trail. When
	// configured it is required - fail fast if unavailable.
	var (
		redisClient *goredis.Client
		trail       *redisstore.Store
		recorder    audit.Recorder
	)
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		trail = redisstore.NewStore(redisClient, cfg.AuditMaxEvents)
		recorder = audit.NewSinkRecorder(trail, loggerClient)
		loggerClient.Info("Redis audit trail initialized")
	} else {
		recorder = audit.NewLogRecorder(loggerClient)
		loggerClient.Info("Redis not configured, audit events go to the log only")
	}

	dialer := remote.NewSSHDialer(loggerClient)
	checker := remote.NewChecker(dialer, loggerClient)
	session := remote.NewSession(dialer, loggerClient)

	gw := gateway.New(gateway.Options{
		Log:            loggerClient,
		Servers:        servers,
		Admins:         admins,
		Book:           book,
		Checker:        checker,
		Session:        session,
		Policy:         holder,
		Audit:          recorder,
		ConnectTimeout: cfg.ConnectTimeout,
		CommandTimeout: cfg.CommandTimeout,
	})

	// Policy reloader (only when a policy file is configured)
	var policyReloader *scheduler.PolicyReloader
	var reloadTrigger chan struct{}
	if cfg.PolicyFile != "" {
		loggerClient.Info("policy file configured, initializing policy reloader",
			logger.String("file", cfg.PolicyFile))
		reloadTrigger = make(chan struct{}, 1)
		policyReloader = scheduler.NewPolicyReloader(
			cfg.PolicyFile,
			holder,
			loggerClient,
			cfg.PolicyReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("no policy file configured, using built-in command policy")
	}

	monitor := scheduler.NewSessionMonitor(session, recorder, loggerClient, cfg.KeepaliveInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		Gateway:       gw,
		Policy:        holder,
		Audit:         recorder,
		RedisClient:   redisClient,
		APIToken:      cfg.APIToken,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		ReloadTrigger: reloadTrigger,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
	}
	if trail != nil {
		d.AuditTrail = trail
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:            cfg,
		logger:         loggerClient,
		server:         server,
		redisClient:    redisClient,
		session:        session,
		policyReloader: policyReloader,
		monitor:        monitor,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shellgate v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shellgate %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start policy reloader (loads the file and starts periodic refresh)
	if a.policyReloader != nil {
		if err := a.policyReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start policy reloader: %w", err)
		}
		a.logger.Info("policy reloader started",
			logger.Duration("interval", a.cfg.PolicyReloadInterval))
	}

	// Start session keepalive monitor
	if err := a.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session monitor: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.policyReloader != nil {
		a.policyReloader.Stop()
	}
	a.monitor.Stop()

	// Release the SSH slot before the process goes away.
	if a.session.Disconnect() {
		a.logger.Info("✅ Remote session closed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Shellgate stopped cleanly")
	return nil
}
