package cloudflareprovider

import (
	"context"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// ListRecords resolves the zone for domain and returns every record in it.
func (p *CloudflareDNSProvider) ListRecords(ctx context.Context, domain string) ([]model.Record, error) {
	zoneID, err := p.ResolveZone(ctx, domain)
	if err != nil {
		return nil, err
	}

	api, err := p.client()
	if err != nil {
		return nil, err
	}

	dnsRecords, _, err := api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.ListDNSRecordsParams{})
	if err != nil {
		p.logger.Error("Failed to list DNS records",
			zap.String("domain", domain),
			zap.String("zone_id", zoneID),
			zap.Error(err))
		return nil, classifyError("list records", err)
	}

	records := make([]model.Record, 0, len(dnsRecords))
	for _, r := range dnsRecords {
		records = append(records, toModel(r))
	}

	p.logger.Debug("DNS records retrieved",
		zap.String("domain", domain),
		zap.Int("count", len(records)))
	return records, nil
}

// CreateRecord creates a record in the zone and returns it with its provider-assigned ID.
func (p *CloudflareDNSProvider) CreateRecord(ctx context.Context, zoneID string, record model.Record) (*model.Record, error) {
	if record.ID != "" {
		return nil, errors.Validation(fmt.Sprintf("record to create must not carry an ID (got %q)", record.ID))
	}
	record = p.withDefaultTTL(record)

	if p.dryRun {
		p.logger.Info("Would create DNS record (dry-run)",
			zap.String("zone_id", zoneID),
			zap.String("name", record.Name),
			zap.String("type", string(record.Type)),
			zap.String("content", record.Content))
		return &record, nil
	}

	api, err := p.client()
	if err != nil {
		return nil, err
	}

	created, err := api.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.CreateDNSRecordParams{
		Type:     string(record.Type),
		Name:     record.Name,
		Content:  record.Content,
		TTL:      record.TTL,
		Priority: record.Priority,
		Proxied:  record.Proxied,
	})
	if err != nil {
		p.logger.Error("Failed to create DNS record",
			zap.String("name", record.Name),
			zap.String("type", string(record.Type)),
			zap.String("content", record.Content),
			zap.Error(err))
		return nil, classifyError("create record", err)
	}

	p.logger.Info("Created DNS record",
		zap.String("id", created.ID),
		zap.String("name", created.Name),
		zap.String("type", created.Type),
		zap.Int("ttl", created.TTL))

	out := toModel(created)
	return &out, nil
}

// UpdateRecord replaces the fields of an existing record in place.
func (p *CloudflareDNSProvider) UpdateRecord(ctx context.Context, zoneID, recordID string, record model.Record) (*model.Record, error) {
	if recordID == "" {
		return nil, errors.Validation("record ID required for update")
	}
	record = p.withDefaultTTL(record)

	if p.dryRun {
		p.logger.Info("Would update DNS record (dry-run)",
			zap.String("zone_id", zoneID),
			zap.String("id", recordID),
			zap.String("name", record.Name),
			zap.String("type", string(record.Type)))
		record.ID = recordID
		return &record, nil
	}

	api, err := p.client()
	if err != nil {
		return nil, err
	}

	updated, err := api.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.UpdateDNSRecordParams{
		ID:       recordID,
		Type:     string(record.Type),
		Name:     record.Name,
		Content:  record.Content,
		TTL:      record.TTL,
		Priority: record.Priority,
		Proxied:  record.Proxied,
	})
	if err != nil {
		p.logger.Error("Failed to update DNS record",
			zap.String("id", recordID),
			zap.String("name", record.Name),
			zap.Error(err))
		return nil, classifyError("update record", err)
	}

	p.logger.Info("Updated DNS record",
		zap.String("id", updated.ID),
		zap.String("name", updated.Name),
		zap.String("type", updated.Type))

	out := toModel(updated)
	return &out, nil
}

// DeleteRecord removes a record. A record that is already gone is reported as a
// NotFound error rather than success, so the caller sees exactly what landed.
func (p *CloudflareDNSProvider) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	if recordID == "" {
		return errors.Validation("record ID required for delete")
	}

	if p.dryRun {
		p.logger.Info("Would delete DNS record (dry-run)",
			zap.String("zone_id", zoneID),
			zap.String("id", recordID))
		return nil
	}

	api, err := p.client()
	if err != nil {
		return err
	}

	if err := api.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), recordID); err != nil {
		p.logger.Error("Failed to delete DNS record",
			zap.String("zone_id", zoneID),
			zap.String("id", recordID),
			zap.Error(err))
		return classifyError("delete record", err)
	}

	p.logger.Info("Deleted DNS record",
		zap.String("zone_id", zoneID),
		zap.String("id", recordID))
	return nil
}

func (p *CloudflareDNSProvider) withDefaultTTL(record model.Record) model.Record {
	if record.TTL <= 0 && p.ttl > 0 {
		record.TTL = p.ttl
	}
	return record
}

// toModel converts a Cloudflare record into the pipeline's record shape.
func toModel(r cloudflare.DNSRecord) model.Record {
	rec := model.Record{
		ID:      r.ID,
		Type:    model.RecordType(r.Type),
		Name:    r.Name,
		Content: r.Content,
		TTL:     r.TTL,
	}
	if r.Priority != nil && rec.Type == model.RecordTypeMX {
		rec.Priority = model.Uint16(*r.Priority)
	}
	if r.Proxied != nil && rec.Type.Proxiable() {
		rec.Proxied = model.Bool(*r.Proxied)
	}
	return rec
}
