package config

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

const (
	defaultBackend                = BackendSQLite
	defaultSQLitePath             = "~/.local/share/qaueue/queue.db"
	defaultRedisURL               = "redis://localhost:6379"
	defaultRedisDB                = 1
	defaultRedisNamespace         = "qaueue"
	defaultTimeoutSeconds         = 5
	defaultRetryMaxElapsedSeconds = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultServiceName            = "qaueue"
)

func defaultStatusColors() map[string]string {
	return map[string]string{
		"integration": "orange",
		"staging":     "yellow",
		"released":    "green",
		"queued":      "blue",
		"*":           "blue",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Backend:                defaultBackend,
			SQLitePath:             defaultSQLitePath,
			RedisURL:               defaultRedisURL,
			RedisDB:                defaultRedisDB,
			RedisNamespace:         defaultRedisNamespace,
			TimeoutSeconds:         defaultTimeoutSeconds,
			RetryMaxElapsedSeconds: defaultRetryMaxElapsedSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Display: Display{
			StatusColors: defaultStatusColors(),
		},
		Telemetry: Telemetry{
			ServiceName: defaultServiceName,
		},
	}
}
