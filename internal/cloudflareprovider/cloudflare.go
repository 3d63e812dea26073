package cloudflareprovider

import (
	"context"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"
)

const userAgent = "dotty-dns"

// CloudflareAPIClient defines the interface for interacting with the Cloudflare API
type CloudflareAPIClient interface {
	ListZones(ctx context.Context, z ...string) ([]cloudflare.Zone, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error
}

// CloudflareDNSProvider is the DNS provider gateway backed by Cloudflare.
// It holds no request state; credentials are fixed at construction.
type CloudflareDNSProvider struct {
	apiClient    CloudflareAPIClient
	logger       *zap.Logger
	domainFilter endpoint.DomainFilter
	dryRun       bool
	ttl          int
}

// NewCloudflareDNSProvider initializes a new Cloudflare DNS provider.
// Missing credentials are not fatal: every operation then fails with ErrMissingAPIKey.
func NewCloudflareDNSProvider(logger *zap.Logger, providerConfig Config) (*CloudflareDNSProvider, error) {
	provider := &CloudflareDNSProvider{
		logger:       logger,
		domainFilter: providerConfig.DomainFilter,
		dryRun:       providerConfig.DryRun,
		ttl:          providerConfig.TTL,
	}

	if !providerConfig.hasCredentials() {
		logger.Error("Cloudflare credentials are not configured, DNS operations will fail",
			zap.String("hint", "set CLOUDFLARE_API_TOKEN, or CLOUDFLARE_API_KEY and CLOUDFLARE_EMAIL"))
		return provider, nil
	}

	opts := []cloudflare.Option{
		cloudflare.UserAgent(userAgent),
		// Retries are the caller's decision.
		cloudflare.UsingRetryPolicy(0, 0, 0),
	}
	if providerConfig.BaseURL != "" {
		opts = append(opts, cloudflare.BaseURL(providerConfig.BaseURL))
	}

	var (
		api *cloudflare.API
		err error
	)
	if providerConfig.APIToken != "" {
		api, err = cloudflare.NewWithAPIToken(providerConfig.APIToken, opts...)
	} else {
		api, err = cloudflare.New(providerConfig.APIKey, providerConfig.Email, opts...)
	}
	if err != nil {
		logger.Error("Failed to create Cloudflare API client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Cloudflare API client: %w", err)
	}

	provider.apiClient = api
	return provider, nil
}

// newWithClient builds a provider around an existing client.
func newWithClient(logger *zap.Logger, client CloudflareAPIClient, providerConfig Config) *CloudflareDNSProvider {
	return &CloudflareDNSProvider{
		apiClient:    client,
		logger:       logger,
		domainFilter: providerConfig.DomainFilter,
		dryRun:       providerConfig.DryRun,
		ttl:          providerConfig.TTL,
	}
}

func (p *CloudflareDNSProvider) client() (CloudflareAPIClient, error) {
	if p.apiClient == nil {
		p.logger.Error("Cloudflare API call attempted without credentials")
		return nil, ErrMissingAPIKey
	}
	return p.apiClient, nil
}
