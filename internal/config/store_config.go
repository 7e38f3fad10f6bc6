package config

const redisURLVar = "REDIS_URL"

// StoreConfig selects the key-value backend for grants, tokens and pending
// authorization requests. An empty URL keeps everything in process memory.
type StoreConfig interface {
	GetRedisURL() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}
