package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ENTRYGATE"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Entry     EntryConfig
	Filing    FilingConfig
	Artifacts ArtifactsConfig
	S3        S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds settings for verifying API bearer tokens. Tokens are
// issued by another system; this service only checks them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings. Level "debug" adds file:line to log
// lines; Format "utc" switches timestamps to UTC with microseconds.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EntryConfig holds the constants stamped on every entry and the optional
// code table workbook.
type EntryConfig struct {
	BrokerNo       string `mapstructure:"broker_no"`
	EntryType      string `mapstructure:"entry_type"`
	DefaultCountry string `mapstructure:"default_country"`
	DefaultUOM     string `mapstructure:"default_uom"`
	CodeTables     string `mapstructure:"code_tables"`
}

// FilingConfig holds the filing service endpoint and its static credentials.
type FilingConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Namespace     string        `mapstructure:"namespace"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
}

// Enabled reports whether an endpoint is configured.
func (f *FilingConfig) Enabled() bool {
	return strings.TrimSpace(f.Endpoint) != ""
}

// ArtifactsConfig selects where debug artifacts go.
type ArtifactsConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Prefix   string `mapstructure:"prefix"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from environment variables with the ENTRYGATE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_bytes", 5<<20)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "entrygate")
	v.SetDefault("db.password", "entrygate_secret")
	v.SetDefault("db.name", "entrygate_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Entry defaults
	v.SetDefault("entry.broker_no", "")
	v.SetDefault("entry.entry_type", "01")
	v.SetDefault("entry.default_country", "CN")
	v.SetDefault("entry.default_uom", "PCS")
	v.SetDefault("entry.code_tables", "")

	// Filing defaults
	v.SetDefault("filing.endpoint", "")
	v.SetDefault("filing.namespace", "urn:entryupload")
	v.SetDefault("filing.username", "")
	v.SetDefault("filing.password", "")
	v.SetDefault("filing.timeout", "30s")
	v.SetDefault("filing.rate_per_minute", 30)

	v.SetDefault("artifacts.provider", "none")
	v.SetDefault("artifacts.dir", "debug_output")
	v.SetDefault("artifacts.prefix", "entries")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "entrygate-artifacts")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.environment", "server.max_body_bytes",
		"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode", "db.max_open", "db.max_idle",
		"auth.jwt_secret", "auth.issuer",
		"log.level", "log.format",
		"cors.allowed_origins",
		"entry.broker_no", "entry.entry_type", "entry.default_country", "entry.default_uom", "entry.code_tables",
		"filing.endpoint", "filing.namespace", "filing.username", "filing.password", "filing.timeout", "filing.rate_per_minute",
		"artifacts.provider", "artifacts.dir", "artifacts.prefix",
		"s3.region", "s3.bucket", "s3.endpoint", "s3.access_key", "s3.secret_key",
	}
	for _, key := range keys {
		_ = v.BindEnv(key, envName(key))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ENTRYGATE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitList(v.GetString("cors.allowed_origins"))}

	cfg.Entry = EntryConfig{
		BrokerNo:       strings.TrimSpace(v.GetString("entry.broker_no")),
		EntryType:      v.GetString("entry.entry_type"),
		DefaultCountry: strings.ToUpper(v.GetString("entry.default_country")),
		DefaultUOM:     strings.ToUpper(v.GetString("entry.default_uom")),
		CodeTables:     v.GetString("entry.code_tables"),
	}
	cfg.Filing = FilingConfig{
		Endpoint:      v.GetString("filing.endpoint"),
		Namespace:     v.GetString("filing.namespace"),
		Username:      v.GetString("filing.username"),
		Password:      v.GetString("filing.password"),
		Timeout:       v.GetDuration("filing.timeout"),
		RatePerMinute: v.GetInt("filing.rate_per_minute"),
	}
	cfg.Artifacts = ArtifactsConfig{
		Provider: strings.ToLower(v.GetString("artifacts.provider")),
		Dir:      v.GetString("artifacts.dir"),
		Prefix:   v.GetString("artifacts.prefix"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Artifacts.Provider {
	case "none", "local", "s3":
	default:
		return fmt.Errorf("config: unknown artifacts provider %q (want none, local or s3)", c.Artifacts.Provider)
	}
	if c.Filing.Timeout <= 0 {
		return fmt.Errorf("config: filing.timeout must be positive, got %s", c.Filing.Timeout)
	}
	if c.Filing.Enabled() && (c.Filing.Username == "" || c.Filing.Password == "") {
		return fmt.Errorf("config: filing.username and filing.password are required when filing.endpoint is set")
	}
	if c.Filing.Enabled() && c.Entry.BrokerNo == "" {
		return fmt.Errorf("config: entry.broker_no is required when filing.endpoint is set")
	}
	return nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
