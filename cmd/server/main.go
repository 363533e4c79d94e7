package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/huddleapp/backend/internal/auth"
	"github.com/huddleapp/backend/internal/authz"
	"github.com/huddleapp/backend/internal/config"
	"github.com/huddleapp/backend/internal/server"
	"github.com/huddleapp/backend/internal/service"
	"github.com/huddleapp/backend/internal/storage/sqlite"
	"github.com/huddleapp/backend/pkg/logging"
)

func main() {
	app := &cli.App{
		Name:  "huddled",
		Usage: "Huddle calendar, event, and group backend.",
		Commands: []*cli.Command{
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides ADDR)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "sqlite database path (overrides DB_PATH)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}
			if db := c.String("db"); db != "" {
				cfg.DBPath = db
			}

			logging.Setup(cfg.LogLevel)

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()
			slog.Info("Storage initialized", "database", cfg.DBPath)

			jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
			authenticator := auth.NewPasswordAuthenticator(store)
			checker := authz.NewChecker(store)

			routes := server.Routes(server.Services{
				Auth:     service.NewAuthService(authenticator, jwtManager, store),
				Calendar: service.NewCalendarService(store, checker),
				Event:    service.NewEventService(store, checker),
				Group:    service.NewGroupService(store, checker),
				Friend:   service.NewFriendService(store),
			})
			handler := server.Handler(routes, jwtManager)

			// h2c allows HTTP/2 without TLS for clients that want it.
			h2cHandler := h2c.NewHandler(handler, &http2.Server{})

			slog.Info("Server starting", "address", cfg.Addr, "routes", len(routes))
			if err := http.ListenAndServe(cfg.Addr, h2cHandler); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
}
