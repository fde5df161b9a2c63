package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizmaker-service/internal/app"
	"quizmaker-service/internal/auth"
	"quizmaker-service/internal/config"
	"quizmaker-service/internal/infra/llm"
	"quizmaker-service/internal/infra/memory"
	"quizmaker-service/internal/infra/postgres"
	rediscache "quizmaker-service/internal/infra/redis"
	"quizmaker-service/internal/logging"
	transport "quizmaker-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Postgres when configured, memory otherwise.
	var (
		users   app.UserRepository
		quizzes app.QuizRepository
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		users = postgres.NewUserRepository(pool)
		quizzes = postgres.NewQuizRepository(pool)
		log.Info(ctx, "using postgres store")
	} else {
		users = memory.NewUserStore()
		quizzes = memory.NewQuizStore()
		log.Warn(ctx, "postgres not configured, data is kept in memory")
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var cache app.QuizCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		cache = rediscache.NewQuizCache(redisClient, quizzes, config.TTLDuration(cfg.Redis.TTL, cacheTTL))
		log.Info(ctx, "using redis join-code cache", "addr", cfg.Redis.Addr)
	} else {
		cache = memory.NewQuizCache(quizzes, cacheTTL)
	}

	tokens := auth.NewIssuer(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	var generator app.TextGenerator
	if cfg.AI.APIKey != "" {
		generator = llm.NewClient(llm.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: config.TTLDuration(cfg.AI.Timeout, llm.DefaultTimeout),
		}, log)
	} else {
		log.Warn(ctx, "ai.api_key not set, quiz generation disabled")
	}

	router := transport.NewRouter(transport.Services{
		Auth:      app.NewAuthService(users, tokens, cfg.Auth.BcryptCost),
		Quizzes:   app.NewQuizService(quizzes, cache, cfg.Quiz.JoinCodeAttempts),
		Generator: app.NewGenerateService(generator),
		Tokens:    tokens,
	}, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	return serve(ctx, server, log, stop)
}

// serve runs server until a signal, ctx cancellation or a listen failure.
// A listen failure is returned so start exits non-zero.
func serve(ctx context.Context, server *http.Server, log logging.Logger, stop <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting quiz service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		log.Error(ctx, "failed to start server", "err", err)
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-stop:
		log.Info(ctx, "shutting down server")
	case <-ctx.Done():
		log.Info(ctx, "context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
