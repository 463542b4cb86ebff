package config

type Config interface {
	EnvConfig
	StorageConfig
	InterceptorConfig
	SessionConfig
	GuardConfig
}

// ClientConfig is what a session manager needs: its own endpoints plus the settings of
// the interceptor it builds
type ClientConfig interface {
	SessionConfig
	InterceptorConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	GetTracingEnabled() bool
}

// Overrides replaces env-derived values when non-empty. The CLI fills it from flags.
type Overrides struct {
	BaseURL   string
	StoreType string
	StoreDir  string
	RedisURL  string
}

var _ Config = mainConfig{}

type mainConfig struct {
	EnvVars
	Storage
	Interceptor
	Session
	Guard
}

func New() Config {
	return NewWithOverrides(Overrides{})
}

func NewWithOverrides(o Overrides) Config {
	return mainConfig{
		EnvVars: EnvVars{overrides: o},
		Storage: Storage{overrides: o},
	}
}
