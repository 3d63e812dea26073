// Package healthscan asks the language model to review a domain's records
// for common misconfigurations, with a focus on email authentication.
package healthscan

import (
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/internal/planner"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// RecordLister is the read side of the DNS provider gateway.
type RecordLister interface {
	ListRecords(ctx context.Context, domain string) ([]model.Record, error)
}

// Authorizer checks the caller before a scan.
type Authorizer interface {
	Authorize(identity *model.Identity) error
}

var scanPrompt = template.Must(template.New("scan").Parse(`
Analyze these DNS records for the domain {{ printf "%q" .Domain }} and identify common errors or security vulnerabilities.
Specifically check for missing SPF, DKIM, and DMARC records which are important for email security.

DNS Records:
{{ .Records }}

Return ONLY a JSON object in the following format:
{
  "issues": [
    {
      "title": "Issue title",
      "description": "Detailed description of the issue",
      "severity": "high|medium|low",
      "category": "security|performance|configuration",
      "fix": "Description of how to fix this issue"
    }
  ],
  "recommendations": [
    {
      "title": "Recommendation title",
      "description": "Why this is recommended",
      "priority": "high|medium|low"
    }
  ]
}
`))

func buildPrompt(domain string, records []model.Record) (string, error) {
	js, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	err = scanPrompt.Execute(&sb, struct {
		Domain  string
		Records string
	}{domain, string(js)})
	return sb.String(), err
}

type Scanner struct {
	logger  *zap.Logger
	auth    Authorizer
	records RecordLister
	model   planner.Model
	now     func() time.Time
}

// New creates a Scanner. model may be nil, in which case Scan fails with a
// configuration error.
func New(logger *zap.Logger, auth Authorizer, records RecordLister, model planner.Model) *Scanner {
	return &Scanner{logger: logger, auth: auth, records: records, model: model, now: time.Now}
}

// Scan lists domain's records and returns the model's analysis of them.
func (s *Scanner) Scan(ctx context.Context, identity *model.Identity, domain string) (*Report, error) {
	if err := s.auth.Authorize(identity); err != nil {
		return nil, err
	}
	domain, err := model.NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if s.model == nil {
		s.logger.Error("Scan requested but no language model is configured", zap.String("hint", "set GEMINI_API_KEY"))
		return nil, errors.ErrMissingModelKey
	}

	records, err := s.records.ListRecords(ctx, domain)
	if err != nil {
		return nil, err
	}
	prompt, err := buildPrompt(domain, records)
	if err != nil {
		return nil, err
	}
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("Scan analysis failed", zap.String("domain", domain), zap.Error(err))
		return nil, err
	}
	issues, recs, err := ParseAnalysis(raw)
	if err != nil {
		s.logger.Warn("Unusable scan analysis", zap.String("domain", domain), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Scan completed",
		zap.String("domain", domain),
		zap.Int("records", len(records)),
		zap.Int("issues", len(issues)),
		zap.Int("recommendations", len(recs)))

	if records == nil {
		records = []model.Record{}
	}
	return &Report{
		Success:         true,
		Domain:          domain,
		Records:         records,
		Issues:          issues,
		Recommendations: recs,
		ScanDate:        s.now().UTC(),
	}, nil
}
