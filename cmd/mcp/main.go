package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/config"
	"github.com/urmzd/guardit/pkg/db"
	"github.com/urmzd/guardit/pkg/device"
	guarditmcp "github.com/urmzd/guardit/pkg/mcp"
)

func main() {
	configDir := flag.String("config", "", "Directory containing guardit.yaml")
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/guardit/guardit.db)")
	serialPort := flag.String("serial", "", "Read telemetry from a USB serial board instead of HTTP")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	// stdout is the MCP transport; SetupLogging always writes to stderr.
	config.SetupLogging(cfg.Log)

	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *serialPort != "" {
		cfg.Device.Serial.Path = *serialPort
	}

	ctx := context.Background()

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	err = database.Bootstrap(ctx, db.BootstrapOptions{
		APIHost: cfg.Server.Host,
		APIPort: cfg.Server.Port,
		Device:  cfg.Device.Address,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap database")
	}

	active, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load active profile")
	}

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

	// A saved endpoint is only configured here; the connect_device tool probes it.
	address := cfg.Device.Address
	if address == "" {
		address = active.DeviceAddress()
	}
	if address != "" {
		if err := services.Endpoint.Configure(address, 0); err != nil {
			log.Warn().Err(err).Str("address", address).Msg("Ignoring saved device address")
		}
	}

	mcpServer := guarditmcp.NewServer(services)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
