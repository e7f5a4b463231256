package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func applyEnv(cfg *Config) {
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.UpstreamURL = getenvDefault("UPSTREAM_URL", cfg.UpstreamURL)
	cfg.MetricsPath = getenvDefault("METRICS_PATH", cfg.MetricsPath)
	cfg.ClientHeader = getenvDefault("CLIENT_KEY_HEADER", cfg.ClientHeader)
	cfg.TrustXFF = getenvBoolDefault("TRUST_XFF", cfg.TrustXFF)

	rc := &cfg.RequestControl
	rc.Enabled = getenvBoolDefault("REQUEST_CONTROL_ENABLED", rc.Enabled)
	rc.DefaultEnabled = getenvBoolDefault("REQUEST_CONTROL_DEFAULT_ENABLED", rc.DefaultEnabled)
	rc.SecretKey = getenvDefault("REQUEST_CONTROL_SECRET_KEY", rc.SecretKey)
	rc.ControlPath = getenvDefault("REQUEST_CONTROL_PATH", rc.ControlPath)
	rc.WhitelistPaths = getenvListDefault("REQUEST_CONTROL_WHITELIST_PATHS", rc.WhitelistPaths)
	rc.LogEnabled = getenvBoolDefault("REQUEST_CONTROL_LOG_ENABLED", rc.LogEnabled)
	rc.RejectMessage = getenvDefault("REQUEST_CONTROL_REJECT_MESSAGE", rc.RejectMessage)
	rc.ExposeInfo = getenvBoolDefault("REQUEST_CONTROL_EXPOSE_INFO", rc.ExposeInfo)

	cfg.ControlRate.Enabled = getenvBoolDefault("CONTROL_RATE_ENABLED", cfg.ControlRate.Enabled)
	cfg.ControlRate.RPS = getenvFloatDefault("CONTROL_RATE_RPS", cfg.ControlRate.RPS)
	cfg.ControlRate.Burst = getenvIntDefault("CONTROL_RATE_BURST", cfg.ControlRate.Burst)

	cfg.Redis.Addr = getenvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvIntDefault("REDIS_DB", cfg.Redis.DB)

	cfg.Stats.Enabled = getenvBoolDefault("STATS_ENABLED", cfg.Stats.Enabled)
	cfg.Stats.Backend = strings.ToLower(getenvDefault("STATS_BACKEND", cfg.Stats.Backend))
	cfg.Stats.Prefix = getenvDefault("STATS_PREFIX", cfg.Stats.Prefix)
	cfg.Stats.TTL = getenvDurationDefault("STATS_TTL", cfg.Stats.TTL)
	cfg.Stats.Bucket = getenvDefault("STATS_BUCKET", cfg.Stats.Bucket)
	cfg.Stats.TrackRoutes = getenvBoolDefault("STATS_TRACK_ROUTES", cfg.Stats.TrackRoutes)

	cfg.Audit.Enabled = getenvBoolDefault("AUDIT_ENABLED", cfg.Audit.Enabled)
	cfg.Audit.Backend = strings.ToLower(getenvDefault("AUDIT_BACKEND", cfg.Audit.Backend))
	cfg.Audit.Key = getenvDefault("AUDIT_KEY", cfg.Audit.Key)
	cfg.Audit.MaxLen = int64(getenvIntDefault("AUDIT_MAX_LEN", int(cfg.Audit.MaxLen)))

	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Output = getenvDefault("LOG_OUTPUT", cfg.Log.Output)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getenvListDefault lê uma lista separada por vírgula.
func getenvListDefault(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
