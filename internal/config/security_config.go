package config

import (
	"strconv"
	"time"
)

const (
	rateLimitRPSVar   = "RATE_LIMIT_RPS"
	rateLimitBurstVar = "RATE_LIMIT_BURST"
	trustProxyVar     = "TRUST_PROXY_HEADERS"
)

type SecurityConfig interface {
	GetRequirePKCE() bool
	GetMaxSessionAge() time.Duration
	GetEnableRateLimiting() bool
	GetRateLimit() float64
	GetRateBurst() int
	GetTrustProxyHeaders() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetRequirePKCE() bool {
	return GetEnv("REQUIRE_PKCE", "false") == "true"
}

func (Security) GetMaxSessionAge() time.Duration {
	return 12 * time.Hour
}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetRateLimit() > 0
}

// GetRateLimit is the sustained requests per second allowed per client IP
// on the OAuth endpoints. Zero disables limiting.
func (Security) GetRateLimit() float64 {
	rps, err := strconv.ParseFloat(GetEnv(rateLimitRPSVar, "5"), 64)
	if err != nil || rps < 0 {
		return 0
	}
	return rps
}

func (Security) GetRateBurst() int {
	burst, err := strconv.Atoi(GetEnv(rateLimitBurstVar, "20"))
	if err != nil || burst < 1 {
		return 1
	}
	return burst
}

// GetTrustProxyHeaders reports whether X-Forwarded-For identifies the client.
// Enable it only when the server sits behind a proxy that sets the header.
func (Security) GetTrustProxyHeaders() bool {
	return GetEnv(trustProxyVar, "false") == "true"
}
