package model

import (
	"fmt"
	"strings"
)

// RootAlias is the record name that stands for the domain itself.
const RootAlias = "@"

// RecordType is a DNS resource record type understood by the pipeline.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeMX    RecordType = "MX"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeNS    RecordType = "NS"
	RecordTypeSOA   RecordType = "SOA"
	RecordTypePTR   RecordType = "PTR"
)

// Valid reports whether t is one of the supported record types.
func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeA, RecordTypeAAAA, RecordTypeCNAME, RecordTypeMX,
		RecordTypeTXT, RecordTypeNS, RecordTypeSOA, RecordTypePTR:
		return true
	}
	return false
}

// Proxiable reports whether the proxied flag has meaning for t.
func (t RecordType) Proxiable() bool {
	return t == RecordTypeA || t == RecordTypeAAAA || t == RecordTypeCNAME
}

// Record is one provider-side DNS resource.
type Record struct {
	ID       string     `json:"id,omitempty"`
	Type     RecordType `json:"type"`
	Name     string     `json:"name"`
	Content  string     `json:"content"`
	TTL      int        `json:"ttl,omitempty"`
	Priority *uint16    `json:"priority,omitempty"`
	Proxied  *bool      `json:"proxied,omitempty"`
}

// ResolveName returns the record name with the root alias rewritten to domain.
func ResolveName(name, domain string) string {
	if strings.TrimSpace(name) == RootAlias {
		return domain
	}
	return name
}

// Normalize returns a copy of r ready to be sent to the provider: the root alias
// becomes the domain, a missing TTL becomes defaultTTL, priority is only kept for
// MX and proxied only for proxiable types.
func (r Record) Normalize(domain string, defaultTTL int) Record {
	out := r
	out.Name = ResolveName(r.Name, domain)
	if out.TTL <= 0 {
		out.TTL = defaultTTL
	}
	if out.Type != RecordTypeMX {
		out.Priority = nil
	} else if r.Priority != nil {
		p := *r.Priority
		out.Priority = &p
	}
	if !out.Type.Proxiable() {
		out.Proxied = nil
	} else {
		proxied := r.Proxied != nil && *r.Proxied
		out.Proxied = &proxied
	}
	return out
}

// validateContent checks the fields every written record needs.
func (r Record) validateContent() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unsupported record type %q", r.Type)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record name is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("record content is required")
	}
	if r.Type == RecordTypeMX && r.Priority == nil {
		return fmt.Errorf("priority is required for MX records")
	}
	return nil
}

// Uint16 returns a pointer to v.
func Uint16(v uint16) *uint16 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
