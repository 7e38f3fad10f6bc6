package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CMPConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StoreConfig
	ConsentConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	CMP
	Cors
	OAuth
	Security
	Store
	Consent
}

// New loads an optional .env file into the process environment and returns
// the environment backed configuration.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded, using process environment")
	}
	return mainConfig{
		OAuth: newOAuth(),
	}
}
