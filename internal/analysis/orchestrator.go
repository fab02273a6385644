package analysis

import (
	"context"
	"log/slog"

	"newsdesk/internal/logging"
	"newsdesk/internal/ratelimit"
	"newsdesk/internal/services"
	"newsdesk/internal/services/gemini"
)

// Backend is the generative model surface the orchestrator drives.
type Backend interface {
	Generate(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}

// Admitter gates each model call on its quota budget.
type Admitter interface {
	Admit(ctx context.Context, model gemini.ModelDescriptor) (ratelimit.Decision, error)
}

// ItemResult is a successful single-item analysis tagged with the model that
// produced it.
type ItemResult struct {
	Analysis *gemini.Analysis
	Model    string
}

// BatchResult is a successful combined batch analysis tagged with the model
// that produced it.
type BatchResult struct {
	Batch *gemini.BatchAnalysis
	Model string
}

// Orchestrator cascades analysis requests across the ranked model catalog.
// RPM denial and response parse failures skip to the next model; RPD denial
// aborts immediately because daily rationing is meant to stop all further
// spend, not just skip one model.
type Orchestrator struct {
	backend Backend
	limiter Admitter
	catalog []gemini.ModelDescriptor
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator over the fixed model catalog.
func NewOrchestrator(backend Backend, limiter Admitter, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		limiter: limiter,
		catalog: gemini.Catalog(),
		logger:  logging.NewComponentLogger(logger, "analysis"),
	}
}

// WithCatalog overrides the model roster (used in tests).
func (o *Orchestrator) WithCatalog(catalog []gemini.ModelDescriptor) *Orchestrator {
	clone := *o
	clone.catalog = catalog
	return &clone
}

// AnalyzeItem runs the single-article analysis through the model cascade.
func (o *Orchestrator) AnalyzeItem(ctx context.Context, item gemini.PromptItem, keywords []string) (*ItemResult, error) {
	prompt := gemini.BuildItemPrompt(item, keywords)
	var result *ItemResult
	err := o.cascade(ctx, "analyze item", func(ctx context.Context, model string) error {
		payload, err := o.backend.Generate(ctx, model, gemini.AnalysisSystemPrompt, prompt)
		if err != nil {
			return err
		}
		analysis, err := gemini.DecodeAnalysis(payload)
		if err != nil {
			return err
		}
		result = &ItemResult{Analysis: analysis, Model: model}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AnalyzeBatch runs the combined multi-article analysis through the model
// cascade. One backend call covers the whole batch to conserve daily quota.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, items []gemini.PromptItem, keywords []string) (*BatchResult, error) {
	prompt := gemini.BuildBatchPrompt(items, keywords)
	var result *BatchResult
	err := o.cascade(ctx, "analyze batch", func(ctx context.Context, model string) error {
		payload, err := o.backend.Generate(ctx, model, gemini.BatchSystemPrompt, prompt)
		if err != nil {
			return err
		}
		batch, err := gemini.DecodeBatchAnalysis(payload)
		if err != nil {
			return err
		}
		result = &BatchResult{Batch: batch, Model: model}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cascade walks the catalog in order, invoking attempt for each admitted
// model, and returns nil on the first success.
func (o *Orchestrator) cascade(ctx context.Context, operation string, attempt func(ctx context.Context, model string) error) error {
	for _, model := range o.catalog {
		decision, err := o.limiter.Admit(ctx, model)
		if err != nil {
			return services.Wrap(services.ErrTransient, "analysis", operation, "rate limit check failed", err)
		}
		switch decision {
		case ratelimit.DeniedRPM:
			o.logger.Info("minute quota exhausted, trying next model",
				logging.String(logging.FieldModel, model.Name),
				logging.String(logging.FieldEventType, "model_skipped_rpm"),
			)
			continue
		case ratelimit.DeniedRPD:
			return services.NewRateLimitError(services.RateLimitRPD, model.Name)
		}

		if err := attempt(ctx, model.Name); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if gemini.IsQuotaStatus(err) {
				// The server's quota accounting disagrees with ours; treat it
				// like a minute denial and move on.
				o.logger.Warn("server rejected request for quota, trying next model",
					logging.String(logging.FieldModel, model.Name),
					logging.Error(err),
					logging.String(logging.FieldEventType, "model_quota_rejected"),
				)
				continue
			}
			o.logger.Warn("model attempt failed, trying next model",
				logging.String(logging.FieldModel, model.Name),
				logging.Error(err),
				logging.String(logging.FieldEventType, "model_attempt_failed"),
			)
			continue
		}

		o.logger.Info("analysis produced",
			logging.String(logging.FieldModel, model.Name),
			logging.String(logging.FieldEventType, "analysis_success"),
		)
		return nil
	}
	return services.Wrap(services.ErrAIExhausted, "analysis", operation, "every catalog model failed", nil)
}
