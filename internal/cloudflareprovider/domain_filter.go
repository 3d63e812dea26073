package cloudflareprovider

import "sigs.k8s.io/external-dns/endpoint"

// GetDomainFilter returns the domain filter for the provider
func (p *CloudflareDNSProvider) GetDomainFilter() endpoint.DomainFilter {
	return p.domainFilter
}

// Manages reports whether domain passes the configured filter.
func (p *CloudflareDNSProvider) Manages(domain string) bool {
	if len(p.domainFilter.Filters) == 0 {
		return true
	}
	return p.domainFilter.Match(domain)
}
