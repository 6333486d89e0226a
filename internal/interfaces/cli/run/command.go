// Package run implements the "run" subcommand: configuration, logging,
// storage, the Discord session and the status API, wired together for the
// life of the process.
package run

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"warden/internal/automod"
	"warden/internal/automod/checks"
	"warden/internal/automod/ratelimit"
	"warden/internal/discord"
	"warden/internal/domain/guild"
	"warden/internal/infrastructure/config"
	"warden/internal/infrastructure/database"
	"warden/internal/infrastructure/repository"
	httpapi "warden/internal/interfaces/http"
	sharedConfig "warden/internal/shared/config"
	"warden/internal/shared/goroutine"
	"warden/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		Long:  `Connect to the Discord gateway and run the moderation service with the configured policies.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debugMode := env == "development" || cfg.Server.Mode == "debug"
	if err := logger.Init(&cfg.Logger, debugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting warden",
		"environment", env,
		"auto-migrate", autoMigrate)

	if debugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := database.Get().AutoMigrate(&guild.Config{}); err != nil {
			logger.Fatal("failed to migrate database", "error", err)
		}
	}

	guildRepo := repository.NewGuildConfigRepository(database.Get(), logger.NewLogger())

	svc, err := discord.NewService(&cfg.Discord, guildRepo, logger.NewLogger())
	if err != nil {
		logger.Fatal("failed to create discord service", "error", err)
	}

	engine := checks.NewEngine(checks.Config{
		BlankNameThreshold: cfg.Automod.BlankNameThreshold,
		RecentJoin:         time.Duration(cfg.Automod.RecentJoinHours) * time.Hour,
		ImmediateJoin:      time.Duration(cfg.Automod.ImmediateJoinMinutes) * time.Minute,
	})

	spam := automod.NewSpamGuard(svc,
		policy(cfg.Automod.Spam),
		policy(cfg.Automod.SpamNotify),
		policy(cfg.Automod.SpamReport),
		logger.NewLogger())
	joins := automod.NewJoinWatch(svc, engine,
		policy(cfg.Automod.Join),
		policy(cfg.Automod.JoinReport),
		cfg.Automod.Intolerance,
		logger.NewLogger())

	svc.SetCoordinators(spam, joins)

	if err := svc.Start(); err != nil {
		logger.Fatal("failed to connect to discord", "error", err)
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			logger.Error("failed to close discord session", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiters := append(spam.Limiters(), joins.Limiters()...)
	startJanitor(ctx, limiters, time.Duration(cfg.Automod.EvictIntervalMinutes)*time.Minute)

	router := httpapi.NewRouter(svc, limiters, logger.NewLogger())
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo(logger.NewLogger(), "status-api", func() {
		logger.Info("status API listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status API failed", "error", err)
		}
	})

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("status API shutdown failed", "error", err)
	}

	return nil
}

func policy(c sharedConfig.CooldownConfig) ratelimit.Policy {
	return ratelimit.Policy{
		Rate: c.Rate,
		Per:  time.Duration(c.PerSeconds) * time.Second,
	}
}

// startJanitor periodically evicts idle cooldown buckets. Detached follow-up
// purges keep running through shutdown; the janitor does not.
func startJanitor(ctx context.Context, limiters []*ratelimit.Limiter, interval time.Duration) {
	log := logger.NewLogger().Named("janitor")
	goroutine.SafeGo(log, "bucket-janitor", func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, l := range limiters {
					if n := l.EvictIdle(now); n > 0 {
						log.Debug("evicted idle buckets", "limiter", l.Name(), "count", n)
					}
				}
			}
		}
	})
}
