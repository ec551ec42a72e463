package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/camera"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/notify"
	"github.com/urmzd/guardit/pkg/telemetry"
)

// Notification platforms
const (
	PlatformLog  = "log"
	PlatformMQTT = "mqtt"
	PlatformNone = "none"
)

// Config is the process configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Device    DeviceConfig    `mapstructure:"device"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
}

// ServerConfig seeds the REST listen address of a new profile and is the
// fallback when the profile has none.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DeviceConfig tunes how the device is addressed, probed and reconnected.
type DeviceConfig struct {
	Address            string        `mapstructure:"address"`
	DefaultPort        int           `mapstructure:"default_port"`
	ProbeTimeout       time.Duration `mapstructure:"probe_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	AlternativeTimeout time.Duration `mapstructure:"alternative_timeout"`
	AlternativePorts   []int         `mapstructure:"alternative_ports"`
	AlternativePaths   []string      `mapstructure:"alternative_paths"`
	ConnectAttempts    int           `mapstructure:"connect_attempts"`
	ConnectDelay       time.Duration `mapstructure:"connect_delay"`
	Serial             SerialConfig  `mapstructure:"serial"`
}

// SerialConfig selects a USB serial board as the telemetry source. Empty path
// means telemetry is read over HTTP.
type SerialConfig struct {
	Path string `mapstructure:"path"`
	Baud int    `mapstructure:"baud"`
}

// TelemetryConfig controls the poller, its detectors and the watchers.
type TelemetryConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	AutoStart      bool          `mapstructure:"auto_start"`
	EdgeGateShake  bool          `mapstructure:"edge_gate_shake"`
	WatchDetection bool          `mapstructure:"watch_detection"`
	WatchBuzzer    bool          `mapstructure:"watch_buzzer"`
	BuzzerInterval time.Duration `mapstructure:"buzzer_interval"`
}

// CameraConfig holds capture parameters and the frame stream interval.
type CameraConfig struct {
	Quality        int           `mapstructure:"quality"`
	Width          int           `mapstructure:"width"`
	Height         int           `mapstructure:"height"`
	Format         string        `mapstructure:"format"`
	StreamInterval time.Duration `mapstructure:"stream_interval"`
}

// NotifyConfig selects the notification platform and the dispatch cooldown.
type NotifyConfig struct {
	Cooldown time.Duration `mapstructure:"cooldown"`
	Platform string        `mapstructure:"platform"`
	MQTT     MQTTConfig    `mapstructure:"mqtt"`
}

// MQTTConfig is the broker used by the mqtt platform.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`
}

// LogConfig sets the zerolog level and output format (console or json).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DBConfig locates the SQLite database. Empty means the default config directory.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	dev := device.DefaultOptions()
	cam := camera.DefaultOptions()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("device.address", "")
	v.SetDefault("device.default_port", dev.DefaultPort)
	v.SetDefault("device.probe_timeout", dev.ProbeTimeout)
	v.SetDefault("device.request_timeout", dev.RequestTimeout)
	v.SetDefault("device.alternative_timeout", dev.AlternativeTimeout)
	v.SetDefault("device.alternative_ports", dev.AlternativePorts)
	v.SetDefault("device.alternative_paths", dev.AlternativePaths)
	v.SetDefault("device.connect_attempts", 3)
	v.SetDefault("device.connect_delay", 2*time.Second)
	v.SetDefault("device.serial.path", "")
	v.SetDefault("device.serial.baud", device.DefaultSerialBaud)

	v.SetDefault("telemetry.interval", telemetry.DefaultInterval)
	v.SetDefault("telemetry.auto_start", false)
	v.SetDefault("telemetry.edge_gate_shake", false)
	v.SetDefault("telemetry.watch_detection", true)
	v.SetDefault("telemetry.watch_buzzer", true)
	v.SetDefault("telemetry.buzzer_interval", telemetry.DefaultBuzzerInterval)

	v.SetDefault("camera.quality", cam.Quality)
	v.SetDefault("camera.width", cam.Width)
	v.SetDefault("camera.height", cam.Height)
	v.SetDefault("camera.format", cam.Format)
	v.SetDefault("camera.stream_interval", cam.StreamInterval)

	v.SetDefault("notify.cooldown", notify.DefaultCooldown)
	v.SetDefault("notify.platform", PlatformLog)
	v.SetDefault("notify.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("notify.mqtt.client_id", "guardit")
	v.SetDefault("notify.mqtt.username", "")
	v.SetDefault("notify.mqtt.password", "")
	v.SetDefault("notify.mqtt.topic", "guardit/alerts")
	v.SetDefault("notify.mqtt.qos", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("db.path", "")
}

// Load reads guardit.yaml from dir (or the working directory and
// $HOME/.config/guardit when dir is empty), then GUARDIT_* environment variables.
// A missing file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("guardit")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/guardit")
	}

	v.SetEnvPrefix("GUARDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Notify.Platform {
	case PlatformLog, PlatformMQTT, PlatformNone:
	default:
		return fmt.Errorf("unknown notify.platform %q", c.Notify.Platform)
	}
	if c.Notify.MQTT.QoS < 0 || c.Notify.MQTT.QoS > 2 {
		return fmt.Errorf("notify.mqtt.qos must be 0, 1 or 2")
	}
	if c.Telemetry.Interval <= 0 {
		return fmt.Errorf("telemetry.interval must be positive")
	}
	if c.Camera.StreamInterval <= 0 {
		return fmt.Errorf("camera.stream_interval must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// DeviceOptions converts the device section.
func (c *Config) DeviceOptions() device.Options {
	return device.Options{
		DefaultPort:        c.Device.DefaultPort,
		ProbeTimeout:       c.Device.ProbeTimeout,
		RequestTimeout:     c.Device.RequestTimeout,
		AlternativeTimeout: c.Device.AlternativeTimeout,
		AlternativePorts:   c.Device.AlternativePorts,
		AlternativePaths:   c.Device.AlternativePaths,
	}
}

// CameraOptions converts the camera section.
func (c *Config) CameraOptions() camera.Options {
	return camera.Options{
		Quality:        c.Camera.Quality,
		Width:          c.Camera.Width,
		Height:         c.Camera.Height,
		Format:         c.Camera.Format,
		StreamInterval: c.Camera.StreamInterval,
		RequestTimeout: c.Device.RequestTimeout,
	}
}

// AppOptions converts every section the service graph reads. Location,
// Source and Recorder are left for the caller.
func (c *Config) AppOptions() app.Options {
	return app.Options{
		Device:          c.DeviceOptions(),
		Camera:          c.CameraOptions(),
		Detectors:       telemetry.DetectorConfig{EdgeGateShake: c.Telemetry.EdgeGateShake},
		Interval:        c.Telemetry.Interval,
		WatchDetection:  c.Telemetry.WatchDetection,
		WatchBuzzer:     c.Telemetry.WatchBuzzer,
		BuzzerInterval:  c.Telemetry.BuzzerInterval,
		ConnectAttempts: c.Device.ConnectAttempts,
		ConnectDelay:    c.Device.ConnectDelay,
		Cooldown:        c.Notify.Cooldown,
		Platform:        c.Platform(),
	}
}

// Platform builds the configured notification platform.
func (c *Config) Platform() notify.Platform {
	switch c.Notify.Platform {
	case PlatformMQTT:
		m := c.Notify.MQTT
		return notify.NewMQTTPlatform(notify.MQTTConfig{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			Topic:    m.Topic,
			QoS:      byte(m.QoS),
		})
	case PlatformNone:
		return notify.NewNullPlatform()
	default:
		return notify.NewLogPlatform()
	}
}

// SetupLogging configures the global zerolog logger. Output always goes to
// stderr so stdio transports stay clean.
func SetupLogging(cfg LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
