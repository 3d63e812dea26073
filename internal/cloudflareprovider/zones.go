package cloudflareprovider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/pkg/errors"
)

// ResolveZone looks up the Cloudflare zone identifier for a domain name.
func (p *CloudflareDNSProvider) ResolveZone(ctx context.Context, domain string) (string, error) {
	if !p.Manages(domain) {
		p.logger.Warn("Domain rejected by domain filter",
			zap.String("domain", domain),
			zap.Strings("filters", p.domainFilter.Filters))
		return "", errors.Validation(fmt.Sprintf("domain %s is not managed by this service", domain))
	}

	api, err := p.client()
	if err != nil {
		return "", err
	}

	p.logger.Debug("Resolving zone", zap.String("domain", domain))
	zones, err := api.ListZones(ctx, domain)
	if err != nil {
		p.logger.Error("Failed to list zones", zap.String("domain", domain), zap.Error(err))
		return "", classifyError("resolve zone", err)
	}

	for _, zone := range zones {
		if strings.EqualFold(zone.Name, domain) {
			p.logger.Debug("Resolved zone",
				zap.String("domain", domain),
				zap.String("zone_id", zone.ID))
			return zone.ID, nil
		}
	}

	p.logger.Warn("No zone matches domain",
		zap.String("domain", domain),
		zap.Int("candidates", len(zones)))
	return "", fmt.Errorf("%w: %s", ErrDomainNotFound, domain)
}
