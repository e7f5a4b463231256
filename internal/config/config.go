package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"request-control-gateway/internal/observability"
	"request-control-gateway/middleware/requestcontrol/domain"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	ListenAddr  string `yaml:"listenAddr"`
	UpstreamURL string `yaml:"upstreamURL"`
	MetricsPath string `yaml:"metricsPath"`

	// ClientHeader/TrustXFF definem como identificar o cliente nas rotas de controle.
	ClientHeader string `yaml:"clientHeader"`
	TrustXFF     bool   `yaml:"trustXFF"`

	RequestControl domain.Config           `yaml:"requestControl"`
	ControlRate    RateConfig              `yaml:"controlRate"`
	Stats          StatsConfig             `yaml:"stats"`
	Audit          AuditConfig             `yaml:"audit"`
	Redis          RedisConfig             `yaml:"redis"`
	Log            observability.LogConfig `yaml:"log"`
}

type RateConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StatsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Backend     string        `yaml:"backend"`
	Prefix      string        `yaml:"prefix"`
	TTL         time.Duration `yaml:"ttl"`
	Bucket      string        `yaml:"bucket"`
	TrackRoutes bool          `yaml:"trackRoutes"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
	MaxLen  int64  `yaml:"maxLen"`
}

func Default() Config {
	rc := domain.DefaultConfig()
	rc.WhitelistPaths = append(rc.WhitelistPaths, "/health", "/metrics")

	return Config{
		ListenAddr:     ":8080",
		MetricsPath:    "/metrics",
		RequestControl: rc,
		ControlRate: RateConfig{
			Enabled: true,
			// 6 dígitos = 10^6 chaves; 5 tentativas por minuto por cliente
			RPS:   5.0 / 60.0,
			Burst: 5,
		},
		Stats: StatsConfig{
			Backend: BackendMemory,
			Prefix:  "requestcontrol:stats",
			TTL:     24 * time.Hour,
			Bucket:  "minute",
		},
		Audit: AuditConfig{
			Enabled: true,
			Backend: BackendMemory,
			Key:     "requestcontrol:audit",
			MaxLen:  1000,
		},
		Log: observability.DefaultLogConfig(),
	}
}

// Load aplica, nessa ordem: defaults, arquivo YAML (se path != ""), env.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.RequestControl = cfg.RequestControl.Normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if strings.ContainsAny(c.RequestControl.ControlPath, "{} ") {
		return fmt.Errorf("invalid control path %q", c.RequestControl.ControlPath)
	}
	if c.ControlRate.Enabled {
		if c.ControlRate.RPS <= 0 {
			return errors.New("CONTROL_RATE_RPS must be > 0")
		}
		if c.ControlRate.Burst <= 0 {
			return errors.New("CONTROL_RATE_BURST must be > 0")
		}
	}
	if c.Stats.Enabled {
		if err := validBackend("STATS_BACKEND", c.Stats.Backend); err != nil {
			return err
		}
	}
	if c.Audit.Enabled {
		if err := validBackend("AUDIT_BACKEND", c.Audit.Backend); err != nil {
			return err
		}
	}
	if c.UsesRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("REDIS_ADDR is required when a redis backend is enabled")
	}
	return nil
}

// UsesRedis informa se algum sink habilitado precisa de Redis.
func (c Config) UsesRedis() bool {
	return (c.Stats.Enabled && c.Stats.Backend == BackendRedis) ||
		(c.Audit.Enabled && c.Audit.Backend == BackendRedis)
}

func validBackend(name, v string) error {
	switch v {
	case BackendMemory, BackendRedis:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", name, BackendMemory, BackendRedis, v)
	}
}

// envVarPattern casa ${VAR} e ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(sub[1]); ok {
			return v
		}
		return sub[2]
	})
}
