package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"carematch/internal/app/dsn"
	"carematch/internal/app/role"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	AuthJWT  = "jwt"
	AuthOIDC = "oidc"
	AuthDev  = "dev"

	SinkNone  = "none"
	SinkKafka = "kafka"
	SinkRedis = "redis"
)

type Config struct {
	Env         string `mapstructure:"env"`
	ServiceHost string `mapstructure:"service_host"`
	ServicePort int    `mapstructure:"service_port"`

	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Events    EventsConfig    `mapstructure:"events"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // postgres | sqlite
	DSN        string `mapstructure:"dsn"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type AuthConfig struct {
	Mode string     `mapstructure:"mode"` // jwt | oidc | dev
	JWT  JWTConfig  `mapstructure:"jwt"`
	OIDC OIDCConfig `mapstructure:"oidc"`
	Dev  DevConfig  `mapstructure:"dev"`
}

type JWTConfig struct {
	Token         string            `mapstructure:"secret"`
	ExpiresIn     time.Duration     `mapstructure:"expires_in"`
	SigningMethod jwt.SigningMethod `mapstructure:"-"`
}

type OIDCConfig struct {
	Issuer    string `mapstructure:"issuer"`
	ClientID  string `mapstructure:"client_id"`
	RoleClaim string `mapstructure:"role_claim"`
}

// DevConfig is the fixed identity handed to every caller in dev mode.
type DevConfig struct {
	Subject       string `mapstructure:"subject"`
	Role          string `mapstructure:"role"`
	AllowOverride bool   `mapstructure:"allow_override"`
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Password    string        `mapstructure:"password"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

type MinIOConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	URLTTL    time.Duration `mapstructure:"url_ttl"`
}

func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

type EventsConfig struct {
	Sink         string   `mapstructure:"sink"` // none | kafka | redis
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	Stream       string   `mapstructure:"stream"`
	StreamMaxLen int64    `mapstructure:"stream_max_len"`
}

type LifecycleConfig struct {
	StrictOrderConsistency bool   `mapstructure:"strict_order_consistency"`
	Timezone               string `mapstructure:"timezone"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Stdout      bool   `mapstructure:"stdout"`
	ServiceName string `mapstructure:"service_name"`
}

const (
	envRedisHost = "REDIS_HOST"
	envRedisPort = "REDIS_PORT"
	envRedisUser = "REDIS_USER"
	envRedisPass = "REDIS_PASSWORD"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("service_host", "0.0.0.0")
	v.SetDefault("service_port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "carematch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "carematch.db")

	v.SetDefault("auth.mode", AuthJWT)
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.expires_in", time.Hour)
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.role_claim", "role")
	v.SetDefault("auth.dev.subject", "")
	v.SetDefault("auth.dev.role", "requester")
	v.SetDefault("auth.dev.allow_override", false)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.user", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 10*time.Second)
	v.SetDefault("redis.read_timeout", 10*time.Second)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "avatars")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.url_ttl", time.Hour)

	v.SetDefault("events.sink", SinkNone)
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "carematch.lifecycle")
	v.SetDefault("events.stream", "carematch:lifecycle")
	v.SetDefault("events.stream_max_len", 10000)

	v.SetDefault("lifecycle.strict_order_consistency", false)
	v.SetDefault("lifecycle.timezone", "Asia/Tokyo")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.stdout", false)
	v.SetDefault("telemetry.service_name", "carematch")
}

// NewConfig reads config/<CONFIG_NAME>.toml (default "config"), then .env and
// CAREMATCH_* environment overrides, and validates the result.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configName := "config"
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	return load(v)
}

// FromFile loads the given TOML file with the same overrides as NewConfig.
func FromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("CAREMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Warn("config file not found, using defaults and environment")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Auth.JWT.SigningMethod = jwt.SigningMethodHS256

	if err := cfg.applyRedisEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("config parsed")
	return cfg, nil
}

// applyRedisEnv honours the bare REDIS_* variables used by deployment scripts.
func (c *Config) applyRedisEnv() error {
	if host := os.Getenv(envRedisHost); host != "" {
		c.Redis.Host = host
	}
	if port := os.Getenv(envRedisPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("redis port must be int value: %w", err)
		}
		c.Redis.Port = p
	}
	if user := os.Getenv(envRedisUser); user != "" {
		c.Redis.User = user
	}
	if pass := os.Getenv(envRedisPass); pass != "" {
		c.Redis.Password = pass
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		add("env must be one of development, test, production (got %q)", c.Env)
	}
	if c.ServicePort < 1 || c.ServicePort > 65535 {
		add("service_port out of range: %d", c.ServicePort)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format must be text or json (got %q)", c.Log.Format)
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" && c.Database.Host == "" && dsn.FromEnv() == "" {
			add("database: postgres needs dsn or host")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			add("database: sqlite needs sqlite_path")
		}
	default:
		add("database.driver must be postgres or sqlite (got %q)", c.Database.Driver)
	}

	switch c.Auth.Mode {
	case AuthJWT:
		if c.Auth.JWT.Token == "" {
			add("auth.jwt.secret is required in jwt mode")
		}
	case AuthOIDC:
		if c.Auth.OIDC.Issuer == "" || c.Auth.OIDC.ClientID == "" {
			add("auth.oidc.issuer and auth.oidc.client_id are required in oidc mode")
		}
	case AuthDev:
		if c.Env == EnvProduction {
			add("auth.mode dev is not allowed in production")
		}
		if c.Auth.Dev.Subject == "" {
			add("auth.dev.subject is required in dev mode")
		}
		if _, err := role.Parse(c.Auth.Dev.Role); err != nil {
			add("auth.dev.role: %v", err)
		}
	default:
		add("auth.mode must be jwt, oidc or dev (got %q)", c.Auth.Mode)
	}

	switch c.Events.Sink {
	case SinkNone:
	case SinkKafka:
		if len(c.Events.Brokers) == 0 || c.Events.Topic == "" {
			add("events: kafka sink needs brokers and topic")
		}
	case SinkRedis:
		if !c.Redis.Enabled() || c.Events.Stream == "" {
			add("events: redis sink needs redis.host and events.stream")
		}
	default:
		add("events.sink must be none, kafka or redis (got %q)", c.Events.Sink)
	}

	if _, err := time.LoadLocation(c.Lifecycle.Timezone); err != nil {
		add("lifecycle.timezone: %v", err)
	}

	return errors.Join(errs...)
}

// ConnString returns the database connection string for the configured driver.
func (c DatabaseConfig) ConnString() string {
	switch c.Driver {
	case "sqlite":
		return dsn.SQLite(c.SQLitePath)
	}
	if c.DSN != "" {
		return c.DSN
	}
	if c.Host == "" {
		return dsn.FromEnv()
	}
	return dsn.Build(dsn.Params{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Name:     c.Name,
		SSLMode:  c.SSLMode,
	})
}

// Location returns the lifecycle time zone, falling back to Local.
func (c LifecycleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ConfigureLogging applies the log section to the package-level logrus logger.
func (c LogConfig) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.Level); err == nil {
		log.SetLevel(lvl)
	}
	if c.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
