package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Coedit/internal/domain"
)

const defaultSecret = "change-me"

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	Relay      RelayConfig        `mapstructure:"relay"`
	Auth       AuthConfig         `mapstructure:"auth"`
	Store      StoreConfig        `mapstructure:"store"`
	ICEServers []webrtc.ICEServer `mapstructure:"ice_servers"`

	// AllowedOrigins lists browser origins allowed to open a WebSocket. When
	// empty, session auth only accepts same-origin upgrades.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RelayConfig struct {
	Modes           []string      `mapstructure:"modes"`
	TrustClientIDs  bool          `mapstructure:"trust_client_ids"`
	SlowConsumer    string        `mapstructure:"slow_consumer"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateInterval    time.Duration `mapstructure:"rate_interval"`
	ValidateSignals bool          `mapstructure:"validate_signals"`
}

type AuthConfig struct {
	// Provider is "session" (cookie set by the login flow) or "jwt".
	Provider      string `mapstructure:"provider"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	IdentityClaim string `mapstructure:"identity_claim"`
	DevLogin      bool   `mapstructure:"dev_login"`
}

type StoreConfig struct {
	// Driver is one of memory, redis, postgres.
	Driver        string `mapstructure:"driver"`
	DSN           string `mapstructure:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	CacheSize     int    `mapstructure:"cache_size"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default), after loading
// an optional .env file. COEDIT_* environment variables override both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("COEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", defaultSecret)
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{})

	v.SetDefault("relay.modes", []string{string(domain.ModeCollab), string(domain.ModeSignaling)})
	v.SetDefault("relay.trust_client_ids", false)
	v.SetDefault("relay.slow_consumer", "kick")
	v.SetDefault("relay.rate_limit", 100)
	v.SetDefault("relay.rate_interval", "1s")
	v.SetDefault("relay.validate_signals", false)

	v.SetDefault("auth.provider", "session")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.identity_claim", "email")
	v.SetDefault("auth.dev_login", false)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.key_prefix", "coedit:doc:")
	v.SetDefault("store.cache_size", 256)

	v.SetDefault("ice_servers", []map[string]any{{"urls": []string{"stun:stun.l.google.com:19302"}}})

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == "release" && cfg.Secret == defaultSecret {
		log.Warn().Str("module", "config").Msg("running with the default cookie secret")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Strs("relay_modes", cfg.Relay.Modes).Str("store", cfg.Store.Driver).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if len(c.Relay.Modes) == 0 {
		errs = append(errs, errors.New("relay.modes is empty"))
	}
	for _, m := range c.Relay.Modes {
		if _, err := domain.ParseMode(m); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Relay.SlowConsumer {
	case "kick", "drop":
	default:
		errs = append(errs, fmt.Errorf("unknown relay.slow_consumer %q", c.Relay.SlowConsumer))
	}
	if c.Relay.RateLimit < 0 {
		errs = append(errs, errors.New("relay.rate_limit must not be negative"))
	}
	switch c.Auth.Provider {
	case "session":
		if c.Secret == "" {
			errs = append(errs, errors.New("secret is required for session auth"))
		}
	case "jwt":
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required for jwt auth"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.provider %q", c.Auth.Provider))
	}
	switch c.Store.Driver {
	case "memory":
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required"))
		}
	case "postgres":
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.PingPeriod <= 0 || c.PongWait <= 0 || c.WriteWait <= 0 {
		errs = append(errs, errors.New("ping_period, pong_wait and write_wait must be positive"))
	} else if c.PingPeriod >= c.PongWait {
		errs = append(errs, fmt.Errorf("ping_period %s must be shorter than pong_wait %s", c.PingPeriod, c.PongWait))
	}
	if c.Relay.RateLimit > 0 && c.Relay.RateInterval <= 0 {
		errs = append(errs, errors.New("relay.rate_interval must be positive when rate_limit is set"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	return errors.Join(errs...)
}

// RelayModes returns the parsed, de-duplicated relay modes.
func (c *Config) RelayModes() []domain.Mode {
	seen := make(map[domain.Mode]bool, len(c.Relay.Modes))
	out := make([]domain.Mode, 0, len(c.Relay.Modes))
	for _, raw := range c.Relay.Modes {
		m, err := domain.ParseMode(raw)
		if err != nil || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
