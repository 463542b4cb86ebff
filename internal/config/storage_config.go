package config

const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type StorageConfig interface {
	GetStoreType() string
	GetStoreDir() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type Storage struct {
	overrides Overrides
}

var _ StorageConfig = Storage{}

func (s Storage) GetStoreType() string {
	if s.overrides.StoreType != "" {
		return s.overrides.StoreType
	}
	return GetEnv("STORE", StoreFile)
}

func (s Storage) GetStoreDir() string {
	if s.overrides.StoreDir != "" {
		return s.overrides.StoreDir
	}
	return GetEnv("STORE_DIR", "./data/credentials")
}

func (s Storage) GetRedisURL() string {
	if s.overrides.RedisURL != "" {
		return s.overrides.RedisURL
	}
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_PREFIX", "authclient:credentials:")
}
