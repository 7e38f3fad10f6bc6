package config

import (
	"crypto/rand"
	"time"

	"github.com/rs/zerolog/log"
)

const tokenSigningKeyVar = "TOKEN_SIGNING_KEY"

type OAuthConfig interface {
	GetAuthCodeTimeout() time.Duration
	GetPendingRequestTimeout() time.Duration
	GetCodeGenerationLength() int
	GetRefreshTokenLength() int
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
	GetTokenSigningKey() []byte
}

type OAuth struct {
	signingKey []byte
}

var _ OAuthConfig = OAuth{}

func newOAuth() OAuth {
	if key := GetEnv(tokenSigningKeyVar, ""); key != "" {
		return OAuth{signingKey: []byte(key)}
	}
	log.Warn().Msgf("%s not set, generating an ephemeral key; issued tokens will not survive a restart", tokenSigningKeyVar)
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatal().Err(err).Msg("failed to generate token signing key")
	}
	return OAuth{signingKey: key}
}

func (OAuth) GetAuthCodeTimeout() time.Duration {
	return 10 * time.Minute
}

// GetPendingRequestTimeout bounds the authorize to approve round trip.
func (OAuth) GetPendingRequestTimeout() time.Duration {
	return 15 * time.Minute
}

func (OAuth) GetCodeGenerationLength() int {
	return 32
}

func (OAuth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (OAuth) GetDefaultRefreshTokenExpiry() time.Duration {
	return 30 * 24 * time.Hour
}

func (o OAuth) GetTokenSigningKey() []byte {
	return o.signingKey
}
