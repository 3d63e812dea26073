package cloudflareprovider

import (
	"sigs.k8s.io/external-dns/endpoint"
)

// Config is used to configure the creation of the CloudflareDNSProvider.
type Config struct {
	APIToken     string
	APIKey       string
	Email        string
	BaseURL      string
	DomainFilter endpoint.DomainFilter
	DryRun       bool
	TTL          int
}

func (c Config) hasCredentials() bool {
	return c.APIToken != "" || (c.APIKey != "" && c.Email != "")
}
