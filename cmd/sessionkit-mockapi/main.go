package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionkit-go/internal/infra/shutdown"
	"github.com/yndnr/sessionkit-go/internal/server/config"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "sessionkit-mockapi",
		Usage:   "Development mock of the vault and marketplace APIs",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML configuration file"},
			&cli.StringFlag{Name: "addr", Usage: "listen address (server.addr)"},
			&cli.StringFlag{Name: "profile", Usage: "product profile: vault or market (server.profile)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (log.level)"},
			&cli.BoolFlag{Name: "no-banner", Usage: "do not print the startup banner"},
			&cli.StringSliceFlag{Name: "seed", Usage: "create an account at startup, as email:password (repeatable)"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	if !c.Bool("no-banner") {
		figure.NewFigure("mockapi", "cybermedium", true).Print()
		fmt.Println()
	}
	log.Info("starting sessionkit-mockapi",
		"version", buildinfo.Get().Version,
		"profile", cfg.Server.Profile,
		"config", config.Sanitize(cfg))

	var metrics *metric.Registry
	if cfg.Server.Metrics {
		metrics = metric.NewRegistry()
	}

	h, err := handler.New(cfg.Server.Profile, cfg.Auth,
		handler.WithLogger(log),
		handler.WithMetrics(metrics))
	if err != nil {
		return err
	}
	if err := seedUsers(h, c.StringSlice("seed")); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: h,
		Logger:  log,
		Metrics: metrics,
	})

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := httpserver.New(cfg.Server.Addr, router)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", listener.Addr().String(), "tls", cfg.Server.TLSCertFile != "")
		if err := server.Serve(listener, cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger(err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// flagOverrides maps the flags that were set to their config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"addr":      "server.addr",
		"profile":   "server.profile",
		"log-level": "log.level",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

func seedUsers(h *handler.Handler, seeds []string) error {
	for _, seed := range seeds {
		email, password, ok := strings.Cut(seed, ":")
		if !ok || email == "" || password == "" {
			return fmt.Errorf("invalid --seed %q, want email:password", seed)
		}
		name, _, _ := strings.Cut(email, "@")
		fields := map[string]string{"username": name}
		if h.Profile() == auth.ProfileMarket {
			fields = map[string]string{"agentName": name, "fullName": name}
		}
		if _, err := h.Users().Create(email, password, fields); err != nil {
			return fmt.Errorf("seed %s: %w", email, err)
		}
	}
	return nil
}
