package config

const (
	cmpAPIKeyVar      = "CMP_API_KEY"
	cmpAPISecretVar   = "CMP_API_SECRET"
	cmpAPIEndpointVar = "CMP_API_ENDPOINT"

	DefaultCMPEndpoint = "https://cmp.acceleronix.io"
)

// CMPConfig carries the credentials for the upstream SIM management API.
type CMPConfig interface {
	GetCMPAPIKey() string
	GetCMPAPISecret() string
	GetCMPEndpoint() string
}

type CMP struct{}

var _ CMPConfig = CMP{}

func (CMP) GetCMPAPIKey() string {
	return GetEnv(cmpAPIKeyVar, "")
}

func (CMP) GetCMPAPISecret() string {
	return GetEnv(cmpAPISecretVar, "")
}

func (CMP) GetCMPEndpoint() string {
	return GetEnv(cmpAPIEndpointVar, DefaultCMPEndpoint)
}
