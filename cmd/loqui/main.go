package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	migrations "github.com/loquihq/loqui/db"
	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/chats"
	"github.com/loquihq/loqui/internal/config"
	"github.com/loquihq/loqui/internal/db"
	"github.com/loquihq/loqui/internal/files"
	"github.com/loquihq/loqui/internal/handlers"
	"github.com/loquihq/loqui/internal/logger"
	"github.com/loquihq/loqui/internal/messages"
	"github.com/loquihq/loqui/internal/server"
	"github.com/loquihq/loqui/internal/storage"
	"github.com/loquihq/loqui/internal/users"
	"github.com/loquihq/loqui/internal/version"
)

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func providePool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func provideSigner(cfg config.Config) (*auth.Signer, error) {
	key, err := auth.LoadSigningKey(cfg.Auth.SigningKeyPath)
	if err != nil {
		return nil, err
	}
	return auth.NewSigner(key), nil
}

func provideVerifier(cfg config.Config) (*auth.Verifier, error) {
	key, err := auth.LoadVerifyingKey(cfg.Auth.VerifyingKeyPath)
	if err != nil {
		return nil, err
	}
	return auth.NewVerifier(key), nil
}

func provideStorage(cfg config.Config) (storage.Provider, error) {
	return storage.NewFSProvider(cfg.Storage.BaseDir)
}

func provideChatService(log *slog.Logger, pool *pgxpool.Pool, userService *users.Service) *chats.Service {
	return chats.NewService(log, pool, userService)
}

type serverParams struct {
	fx.In

	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams, verifier *auth.Verifier) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, verifier, params.Handlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting server", slog.String("version", version.GetInfo()))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}

// asHandler registers a handler constructor into the server_handlers group.
func asHandler(constructor any) any {
	return fx.Annotate(constructor,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func runMigrate(args []string) {
	cfg, err := provideConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	migrationsFS, err := fs.Sub(migrations.MigrationsFS, "migrations")
	if err != nil {
		logger.Error("open migrations", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args); err != nil {
		logger.Error("migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	app := fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			providePool,
			provideSigner,
			provideVerifier,
			provideStorage,
			users.NewService,
			provideChatService,
			files.NewService,
			messages.NewService,
			asHandler(handlers.NewPingHandler),
			asHandler(handlers.NewAuthHandler),
			asHandler(handlers.NewUserHandler),
			asHandler(handlers.NewChatHandler),
			asHandler(handlers.NewFileHandler),
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
	)
	app.Run()
}
