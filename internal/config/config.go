package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultDataDir       = "/var/lib/reviewradar"
	defaultListenAddress = ":8085"
	defaultCacheTTLSecs  = 60
	defaultRefreshSecs   = 300
)

// AppConfiguration carries everything the daemon needs, keyed by setting
// name. Components pull out what they need through the typed getters.
type AppConfiguration map[string]any

// ReadConfig assembles the configuration from the environment, loading
// DATA_DIR/.env first when present.
func ReadConfig() AppConfiguration {
	ac := AppConfiguration{}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	ac["data_dir"] = dataDir

	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil {
		logrus.Debugf("no env file in %s, reading from environment only", dataDir)
	}

	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	ac["log_level"] = level.String()
	SetLogLevel(level)

	listenAddress := os.Getenv("LISTEN_ADDRESS")
	if listenAddress == "" {
		listenAddress = defaultListenAddress
	}
	ac["listen_address"] = listenAddress

	cacheTTL := defaultCacheTTLSecs
	if s := os.Getenv("CACHE_TTL_SECONDS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cacheTTL = v
		} else {
			logrus.Errorf("Error parsing CACHE_TTL_SECONDS %q. Setting to default.", s)
		}
	}
	ac["cache_ttl_seconds"] = time.Duration(cacheTTL) * time.Second

	refreshDelay := defaultRefreshSecs
	if s := os.Getenv("REFRESH_DELAY_SECONDS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			refreshDelay = v
		} else {
			logrus.Errorf("Error parsing REFRESH_DELAY_SECONDS %q. Setting to default.", s)
		}
	}
	ac["refresh_delay_seconds"] = time.Duration(refreshDelay) * time.Second

	hostsFile := os.Getenv("HOSTS_FILE")
	if hostsFile == "" {
		hostsFile = filepath.Join(dataDir, "hosts.yaml")
	}
	ac["hosts_file"] = hostsFile

	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		ac["api_key"] = apiKey
	}

	if webhook := os.Getenv("WEBHOOK_URL"); webhook != "" {
		logrus.Info("Webhook notifier configured")
		ac["webhook_url"] = webhook
	}

	ac["profiling_enabled"] = os.Getenv("ENABLE_PPROF") == "true"

	return ac
}

func (ac AppConfiguration) DataDir() string {
	return ac.GetString("data_dir", defaultDataDir)
}

func (ac AppConfiguration) ListenAddress() string {
	return ac.GetString("listen_address", defaultListenAddress)
}

func (ac AppConfiguration) CacheTTL() time.Duration {
	return ac.GetDuration("cache_ttl_seconds", defaultCacheTTLSecs)
}

func (ac AppConfiguration) RefreshDelay() time.Duration {
	return ac.GetDuration("refresh_delay_seconds", defaultRefreshSecs)
}

func (ac AppConfiguration) HostsFile() string {
	return ac.GetString("hosts_file", filepath.Join(ac.DataDir(), "hosts.yaml"))
}

func (ac AppConfiguration) GetDuration(key string, defSecs int) time.Duration {
	if v, ok := ac[key]; ok {
		if val, ok := v.(time.Duration); ok {
			return val
		}
	}
	return time.Duration(defSecs) * time.Second
}

func (ac AppConfiguration) GetString(key string, def string) string {
	if v, ok := ac[key]; ok {
		if val, ok := v.(string); ok {
			return val
		}
	}
	return def
}

// GetBool safely extracts a bool, with a default fallback.
func (ac AppConfiguration) GetBool(key string, def bool) bool {
	if v, ok := ac[key]; ok {
		if val, ok := v.(bool); ok {
			return val
		}
	}
	return def
}

// ParseLogLevel parses a string and returns the corresponding logrus.Level.
func ParseLogLevel(logLevel string) logrus.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		logrus.Errorf("Invalid log level %q, setting to %s", logLevel, logrus.InfoLevel)
		return logrus.InfoLevel
	}
}

// SetLogLevel sets the log level for the application.
func SetLogLevel(level logrus.Level) {
	logrus.SetLevel(level)
}
