package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envsettings/internal/application"
	"github.com/eugenenazirov/envsettings/internal/config"
	"github.com/eugenenazirov/envsettings/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("envsettings", "Settings server - resolves configuration from the environment and serves it read-only")
	overrides, err := parseFlags(kingpinApp, os.Args[1:])
	kingpin.MustParse("", err)

	store, err := config.Load(overrides, config.OSEnvironment{})
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	cfg, err := config.ServerConfigFrom(store)
	if err != nil {
		panic(fmt.Sprintf("invalid server configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration resolved",
		zap.Strings("keys", store.Keys()),
		zap.Int("resources", len(store.Domain())),
	)

	app, err := application.New(cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// parseFlags registers the CLI flags on app and turns the parsed values into
// config overrides. Negative numeric flags mean "not given".
func parseFlags(app *kingpin.Application, args []string) (*config.CLIOverrides, error) {
	configFile := app.Flag("config", "Path to YAML settings file").Short('c').String()
	appName := app.Flag("app-name", "Application name stored as APP_NAME").String()
	port := app.Flag("port", "HTTP port exposed by the service").String()
	set := app.Flag("set", "Explicit KEY=VALUE setting, applied last (repeatable)").StringMap()
	require := app.Flag("require", "Environment variable that must resolve (repeatable)").Strings()
	detect := app.Flag("detect", "Detect ENV_KEY and store it as CONFIG_KEY, given as ENV_KEY=CONFIG_KEY (repeatable)").StringMap()
	rateLimitRPSFlag := app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		AppName:    *appName,
		Set:        *set,
		Require:    *require,
		Detect:     *detect,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	return overrides, nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
