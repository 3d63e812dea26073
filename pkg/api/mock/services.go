package mock

import (
	"context"

	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dotty-dns/internal/healthscan"
	"github.com/netguru/dotty-dns/internal/model"
)

// MockCommands is a mock implementation of api.CommandService for testing
type MockCommands struct {
	ExecuteCommandFn func(ctx context.Context, identity *model.Identity, command, domain string) (*model.CommandResult, error)
	ListHistoryFn    func(ctx context.Context, identity *model.Identity, domain string, limit int) ([]*model.HistoryEntry, error)
}

// ExecuteCommand calls ExecuteCommandFn or returns an empty successful result if not set
func (m *MockCommands) ExecuteCommand(ctx context.Context, identity *model.Identity, command, domain string) (*model.CommandResult, error) {
	if m.ExecuteCommandFn != nil {
		return m.ExecuteCommandFn(ctx, identity, command, domain)
	}
	return &model.CommandResult{Success: true, Actions: []model.Action{}, Results: []model.ExecutionResult{}, Warnings: []string{}}, nil
}

// ListHistory calls ListHistoryFn or returns an empty slice if not set
func (m *MockCommands) ListHistory(ctx context.Context, identity *model.Identity, domain string, limit int) ([]*model.HistoryEntry, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, identity, domain, limit)
	}
	return []*model.HistoryEntry{}, nil
}

// MockScanner is a mock implementation of api.HealthScanner for testing
type MockScanner struct {
	ScanFn func(ctx context.Context, identity *model.Identity, domain string) (*healthscan.Report, error)
}

func (m *MockScanner) Scan(ctx context.Context, identity *model.Identity, domain string) (*healthscan.Report, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, identity, domain)
	}
	return &healthscan.Report{Success: true, Domain: domain}, nil
}

// MockVerifier accepts every token listed in Tokens
type MockVerifier struct {
	Tokens map[string]model.Identity
	Err    error
}

func (m *MockVerifier) Verify(token string) (model.Identity, error) {
	if id, ok := m.Tokens[token]; ok {
		return id, nil
	}
	return model.Identity{}, m.Err
}

// MockDomainFilter returns Filter
type MockDomainFilter struct {
	Filter endpoint.DomainFilter
}

func (m *MockDomainFilter) GetDomainFilter() endpoint.DomainFilter {
	return m.Filter
}
