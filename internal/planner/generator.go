package planner

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// Model is the language model collaborator.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator turns a natural-language command into a ChangePlan.
type Generator struct {
	logger *zap.Logger
	model  Model
}

// New creates a Generator. A nil model is allowed; Plan then fails with a
// configuration error.
func New(logger *zap.Logger, model Model) *Generator {
	return &Generator{logger: logger, model: model}
}

// Plan produces a ChangePlan for command against domain's current records.
// Upstream model errors are returned as-is; callers decide about retries.
func (g *Generator) Plan(ctx context.Context, command, domain string, records []model.Record) (*model.ChangePlan, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.Validation("command is required")
	}
	if g.model == nil {
		g.logger.Error("Plan requested but no language model is configured",
			zap.String("hint", "set GEMINI_API_KEY"))
		return nil, errors.ErrMissingModelKey
	}

	if p, ok := matchPreset(command); ok {
		plan := p.build(domain, records)
		g.logger.Info("Command answered from preset",
			zap.String("preset", p.name),
			zap.String("domain", domain),
			zap.Int("actions", len(plan.Actions)))
		return plan, nil
	}

	prompt, err := BuildPrompt(command, domain, records)
	if err != nil {
		return nil, err
	}

	raw, err := g.model.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("Language model call failed", zap.String("domain", domain), zap.Error(err))
		return nil, err
	}

	plan, err := ParsePlan(raw, domain)
	if err != nil {
		g.logger.Warn("Model output rejected",
			zap.String("domain", domain),
			zap.Error(err))
		g.logger.Debug("Rejected model output", zap.String("raw", raw))
		return nil, err
	}

	g.logger.Info("Change plan generated",
		zap.String("domain", domain),
		zap.Int("actions", len(plan.Actions)),
		zap.Int("warnings", len(plan.Warnings)))
	return plan, nil
}
