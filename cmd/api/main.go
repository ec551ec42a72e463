package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/api"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/config"
	"github.com/urmzd/guardit/pkg/db"
	"github.com/urmzd/guardit/pkg/device"

	_ "github.com/urmzd/guardit/docs"
)

// @title           GuardIt API
// @version         1.0
// @description     REST API for the GuardIt motion sensor, camera and alert history

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	configDir := flag.String("config", "", "Directory containing guardit.yaml")
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/guardit/guardit.db)")
	deviceAddr := flag.String("device", "", "Device address, overrides the saved endpoint")
	serialPort := flag.String("serial", "", "Read telemetry from a USB serial board instead of HTTP")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogging(cfg.Log)

	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *deviceAddr != "" {
		cfg.Device.Address = *deviceAddr
	}
	if *serialPort != "" {
		cfg.Device.Serial.Path = *serialPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		err := database.Bootstrap(ctx, db.BootstrapOptions{
			APIHost: cfg.Server.Host,
			APIPort: cfg.Server.Port,
			Device:  cfg.Device.Address,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
	}

	active, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load active profile")
	}

	log.Info().
		Str("profile", active.Profile.Name).
		Str("timezone", active.Location().String()).
		Str("api_address", active.APIAddress(cfg.Server.Address())).
		Str("platform", cfg.Notify.Platform).
		Msg("Configuration loaded")

	opts := cfg.AppOptions()
	opts.Location = active.Location()
	opts.Recorder = database

	if cfg.Device.Serial.Path != "" {
		src, err := device.OpenSerial(cfg.Device.Serial.Path, cfg.Device.Serial.Baud)
		if err != nil {
			log.Warn().Err(err).Str("port", cfg.Device.Serial.Path).Msg("Serial board unavailable, reading telemetry over HTTP")
		} else {
			opts.Source = src
		}
	}

	services := app.New(opts)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		services.Close(closeCtx)
	}()

	address := cfg.Device.Address
	if address == "" {
		address = active.DeviceAddress()
	}
	if address != "" {
		go connect(ctx, services, address, cfg.Telemetry.AutoStart)
	} else if opts.Source != nil && cfg.Telemetry.AutoStart {
		if err := services.StartTelemetry(0); err != nil {
			log.Error().Err(err).Msg("Failed to start telemetry")
		}
	}

	router := api.NewRouter(services)

	addr := active.APIAddress(cfg.Server.Address())
	log.Info().Str("address", addr).Msg("Starting API server")

	if err := router.Run(ctx, addr); err != nil {
		log.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}

	log.Info().Msg("Shut down")
}

// connect reconnects to the saved device without blocking server startup.
func connect(ctx context.Context, services *app.Services, address string, autoStart bool) {
	info, err := services.Connect(ctx, address)
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("Saved device did not answer")
		return
	}
	log.Info().Str("address", info.Address).Str("kind", string(info.Kind)).Msg("Device connected")

	if !autoStart {
		return
	}
	if err := services.StartTelemetry(0); err != nil {
		log.Error().Err(err).Msg("Failed to start telemetry")
	}
}
