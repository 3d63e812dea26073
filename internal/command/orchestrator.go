// Package command runs a natural-language DNS command end to end: authenticate,
// validate, read current records, plan, resolve the zone, execute and record
// the outcome in the history log.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/netguru/dotty-dns/internal/history"
	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

const DefaultTimeout = 5 * time.Minute

// Gateway is the read side of the DNS provider used by the orchestrator.
type Gateway interface {
	ListRecords(ctx context.Context, domain string) ([]model.Record, error)
	ResolveZone(ctx context.Context, domain string) (string, error)
}

// Planner produces a change plan for a command.
type Planner interface {
	Plan(ctx context.Context, command, domain string, records []model.Record) (*model.ChangePlan, error)
}

// Executor applies a plan's actions.
type Executor interface {
	Execute(ctx context.Context, actions []model.Action, domain, zoneID string) []model.ExecutionResult
}

// Config tunes an Orchestrator.
type Config struct {
	// Timeout bounds one ExecuteCommand call. Zero means DefaultTimeout.
	Timeout time.Duration
	// SerializeDomains holds a per-domain lock from listing to history append.
	SerializeDomains bool
	// HistoryBackoff controls retries of the history append.
	HistoryBackoff wait.Backoff
}

// DefaultHistoryBackoff retries the history append three times over roughly
// a second before giving up.
var DefaultHistoryBackoff = wait.Backoff{
	Duration: 200 * time.Millisecond,
	Factor:   2,
	Jitter:   0.1,
	Steps:    3,
	Cap:      2 * time.Second,
}

type Orchestrator struct {
	logger   *zap.Logger
	gateway  Gateway
	planner  Planner
	executor Executor
	history  history.Store
	cfg      Config
	locks    *domainLocks
	now      func() time.Time
}

func New(logger *zap.Logger, gateway Gateway, planner Planner, executor Executor, store history.Store, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HistoryBackoff.Steps == 0 {
		cfg.HistoryBackoff = DefaultHistoryBackoff
	}
	return &Orchestrator{
		logger:   logger,
		gateway:  gateway,
		planner:  planner,
		executor: executor,
		history:  store,
		cfg:      cfg,
		locks:    newDomainLocks(),
		now:      time.Now,
	}
}

// Authorize checks that identity is present and its credential has not expired.
func (o *Orchestrator) Authorize(identity *model.Identity) error {
	if identity == nil || identity.UID == "" {
		return errors.ErrUnauthenticated
	}
	if !identity.ExpiresAt.IsZero() && !o.now().Before(identity.ExpiresAt) {
		return errors.Authentication("credential expired, please sign in again", nil)
	}
	return nil
}

// ExecuteCommand runs command against domain on behalf of identity.
//
// Errors from listing, planning or zone resolution abort the call and no
// history entry is written. Per-action failures are reported in the
// result and never fail the call.
func (o *Orchestrator) ExecuteCommand(ctx context.Context, identity *model.Identity, command, domain string) (*model.CommandResult, error) {
	if err := o.Authorize(identity); err != nil {
		return nil, err
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errors.Validation("command is required")
	}
	domain, err := model.NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	log := o.logger.With(zap.String("user_id", identity.UID), zap.String("domain", domain))

	if o.cfg.SerializeDomains {
		unlock, err := o.locks.Lock(ctx, domain)
		if err != nil {
			log.Warn("Gave up waiting for a concurrent command on the domain", zap.Error(err))
			return nil, fmt.Errorf("waiting for domain %s: %w", domain, err)
		}
		defer unlock()
	}
	start := o.now()

	records, err := o.gateway.ListRecords(ctx, domain)
	if err != nil {
		log.Warn("Listing records failed", zap.Error(err))
		return nil, err
	}

	plan, err := o.planner.Plan(ctx, command, domain, records)
	if err != nil {
		log.Warn("Planning failed", zap.Error(err))
		return nil, err
	}
	log.Info("Plan generated",
		zap.String("interpretation", plan.Interpretation),
		zap.Int("actions", len(plan.Actions)),
		zap.Int("warnings", len(plan.Warnings)))

	zoneID, err := o.gateway.ResolveZone(ctx, domain)
	if err != nil {
		log.Warn("Zone resolution failed", zap.Error(err))
		return nil, err
	}

	results := o.executor.Execute(ctx, plan.Actions, domain, zoneID)

	o.appendHistory(ctx, log, &model.HistoryEntry{
		UserID:         identity.UID,
		Domain:         domain,
		Command:        command,
		Interpretation: plan.Interpretation,
		Actions:        plan.Actions,
		Results:        results,
		Timestamp:      o.now().UTC(),
	})

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	log.Info("Command completed",
		zap.Int("results", len(results)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", o.now().Sub(start)))

	return &model.CommandResult{
		Success:             true,
		Interpretation:      plan.Interpretation,
		Actions:             nonNilActions(plan.Actions),
		Results:             nonNilResults(results),
		Warnings:            nonNilStrings(plan.Warnings),
		ConfirmationMessage: plan.ConfirmationMessage,
	}, nil
}

// appendHistory writes entry with bounded retries. The DNS changes already
// happened, so a persistent failure is logged and otherwise ignored.
func (o *Orchestrator) appendHistory(ctx context.Context, log *zap.Logger, entry *model.HistoryEntry) {
	if o.history == nil {
		return
	}
	// Detached from the command deadline so a slow plan does not drop the audit record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	var lastErr error
	err := wait.ExponentialBackoffWithContext(ctx, o.cfg.HistoryBackoff, func(ctx context.Context) (bool, error) {
		if lastErr = o.history.Append(ctx, entry); lastErr != nil {
			log.Debug("History append attempt failed", zap.Error(lastErr))
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		log.Error("Failed to append command history", zap.Error(lastErr), zap.NamedError("retry", err))
		return
	}
	log.Debug("Command history appended", zap.String("entry_id", entry.ID))
}

// ListHistory returns identity's newest history entries for domain.
func (o *Orchestrator) ListHistory(ctx context.Context, identity *model.Identity, domain string, limit int) ([]*model.HistoryEntry, error) {
	if err := o.Authorize(identity); err != nil {
		return nil, err
	}
	domain, err := model.NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if o.history == nil {
		return []*model.HistoryEntry{}, nil
	}
	entries, err := o.history.List(ctx, identity.UID, domain, history.ClampLimit(limit))
	if err != nil {
		o.logger.Error("Failed to list command history", zap.String("domain", domain), zap.Error(err))
		return nil, err
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return entries, nil
}

func nonNilActions(a []model.Action) []model.Action {
	if a == nil {
		return []model.Action{}
	}
	return a
}

func nonNilResults(r []model.ExecutionResult) []model.ExecutionResult {
	if r == nil {
		return []model.ExecutionResult{}
	}
	return r
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
