package monitor

// ConfigError marks a misconfiguration detected before any network activity.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

func (e *ConfigError) Kind() string {
	return "config"
}

var (
	// ErrNoHosts is returned when a refresh is requested with no hosts
	// configured. An empty host set is a configuration error, not a no-op.
	ErrNoHosts = &ConfigError{msg: "no review hosts configured"}
)
