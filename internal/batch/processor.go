package batch

import (
	"context"
	"errors"
	"log/slog"

	"newsdesk/internal/analysis"
	"newsdesk/internal/logging"
	"newsdesk/internal/services"
	"newsdesk/internal/services/gemini"
	"newsdesk/internal/store"
	"newsdesk/internal/textutil"
)

// fallbackKeyword tags exposures built without a structured model result.
const fallbackKeyword = "general"

// fallbackSummaryChars bounds the deterministic summary taken from the body.
const fallbackSummaryChars = 500

// Storage is the persistence surface the processor needs.
type Storage interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]*store.ContentItem, error)
	CountUnprocessed(ctx context.Context) (int, error)
	UpsertExposure(ctx context.Context, exp *store.Exposure) (*store.Exposure, error)
	ReplaceContentKeywords(ctx context.Context, contentID int64, keywords []string) error
	Keywords(ctx context.Context) ([]string, error)
}

// Analyzer is the model orchestration surface the processor drives.
type Analyzer interface {
	AnalyzeBatch(ctx context.Context, items []gemini.PromptItem, keywords []string) (*analysis.BatchResult, error)
	AnalyzeItem(ctx context.Context, item gemini.PromptItem, keywords []string) (*analysis.ItemResult, error)
}

// ProcessingResult summarizes one batch run for the scheduler.
type ProcessingResult struct {
	Processed int
	Errors    int
	Remaining int
}

// Processor selects unprocessed content, validates sizes, drives the analyzer
// once per batch, and records exposures. Runs are single-flight per guard.
type Processor struct {
	storage  Storage
	analyzer Analyzer
	guard    ExecutionGuard
	logger   *slog.Logger
}

// NewProcessor constructs a batch processor. A nil guard defaults to an
// in-memory atomic guard.
func NewProcessor(storage Storage, analyzer Analyzer, guard ExecutionGuard, logger *slog.Logger) *Processor {
	if guard == nil {
		guard = NewAtomicGuard()
	}
	return &Processor{
		storage:  storage,
		analyzer: analyzer,
		guard:    guard,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// ProcessUnprocessed runs one batch. When another run holds the guard, the
// call returns immediately with zero processed and the current remaining
// count. An RPD denial from the analyzer is returned to the caller so the
// scheduler tick stops spending; counts accumulated before the denial are
// still reported.
func (p *Processor) ProcessUnprocessed(ctx context.Context) (ProcessingResult, error) {
	if !p.guard.TryAcquire() {
		remaining, err := p.storage.CountUnprocessed(ctx)
		if err != nil {
			remaining = 0
		}
		p.logger.Info("batch already in flight, skipping",
			logging.Int("remaining", remaining),
			logging.String(logging.FieldEventType, "batch_skipped"),
		)
		return ProcessingResult{Remaining: remaining}, nil
	}
	defer p.guard.Release()

	items, err := p.storage.FetchUnprocessed(ctx, BatchSize)
	if err != nil {
		return ProcessingResult{}, err
	}
	if len(items) == 0 {
		return ProcessingResult{}, nil
	}

	accepted, excluded := ValidateSizes(items)
	for _, item := range excluded {
		p.logger.Warn("item excluded by size validation",
			logging.Int64(logging.FieldContentID, item.ID),
			logging.Int("length_chars", itemLength(item)),
			logging.String(logging.FieldEventType, "item_size_excluded"),
		)
	}
	if len(accepted) == 0 {
		remaining, countErr := p.storage.CountUnprocessed(ctx)
		if countErr != nil {
			return ProcessingResult{}, countErr
		}
		return ProcessingResult{Remaining: remaining}, nil
	}

	keywords, err := p.storage.Keywords(ctx)
	if err != nil {
		return ProcessingResult{}, err
	}

	result := p.runBatch(ctx, accepted, keywords)

	remaining, countErr := p.storage.CountUnprocessed(ctx)
	if countErr == nil {
		result.outcome.Remaining = remaining
	}

	p.logger.Info("batch run finished",
		logging.Int("processed", result.outcome.Processed),
		logging.Int("errors", result.outcome.Errors),
		logging.Int("remaining", result.outcome.Remaining),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	return result.outcome, result.err
}

type runResult struct {
	outcome ProcessingResult
	err     error
}

func (p *Processor) runBatch(ctx context.Context, accepted []*store.ContentItem, keywords []string) runResult {
	prompts := make([]gemini.PromptItem, 0, len(accepted))
	for _, item := range accepted {
		prompts = append(prompts, gemini.PromptItem{ContentID: item.ID, Title: item.Title, Body: item.Body})
	}

	batchResult, err := p.analyzer.AnalyzeBatch(ctx, prompts, keywords)
	if err == nil {
		return runResult{outcome: p.recordBatch(ctx, accepted, batchResult)}
	}

	switch {
	case services.IsDailyLimit(err):
		// One combined call was already billed; falling back would spend more
		// quota without benefit.
		return runResult{err: err}
	case errors.Is(err, services.ErrParse), errors.Is(err, services.ErrAIExhausted):
		p.logger.Warn("combined batch call failed, falling back to per-item processing",
			logging.Error(err),
			logging.String(logging.FieldEventType, "batch_fallback"),
		)
		return p.fallbackPerItem(ctx, accepted, keywords)
	default:
		p.logger.Error("batch analysis failed without fallback",
			logging.Error(err),
			logging.String(logging.FieldEventType, "batch_failed"),
		)
		return runResult{outcome: ProcessingResult{Errors: len(accepted)}}
	}
}

func (p *Processor) recordBatch(ctx context.Context, accepted []*store.ContentItem, batchResult *analysis.BatchResult) ProcessingResult {
	byContent := make(map[int64]*gemini.ItemAnalysis, len(batchResult.Batch.Items))
	for i := range batchResult.Batch.Items {
		entry := &batchResult.Batch.Items[i]
		byContent[entry.ContentID] = entry
	}

	var outcome ProcessingResult
	for _, item := range accepted {
		entry, ok := byContent[item.ID]
		if ok {
			if err := p.recordStructured(ctx, item, &entry.Analysis, batchResult.Model); err != nil {
				p.logExposureFailure(item, err)
				outcome.Errors++
				continue
			}
		} else {
			// Batch succeeded overall but this item's entry is missing: build
			// the deterministic fallback exposure from the source material.
			if err := p.recordFallback(ctx, item); err != nil {
				p.logExposureFailure(item, err)
				outcome.Errors++
				continue
			}
		}
		outcome.Processed++
	}
	return outcome
}

func (p *Processor) fallbackPerItem(ctx context.Context, accepted []*store.ContentItem, keywords []string) runResult {
	var outcome ProcessingResult
	for _, item := range accepted {
		prompt := gemini.PromptItem{ContentID: item.ID, Title: item.Title, Body: item.Body}
		itemResult, err := p.analyzer.AnalyzeItem(ctx, prompt, keywords)
		if err != nil {
			if services.IsDailyLimit(err) {
				return runResult{outcome: outcome, err: err}
			}
			p.logger.Warn("per-item fallback failed",
				logging.Int64(logging.FieldContentID, item.ID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "item_fallback_failed"),
			)
			outcome.Errors++
			continue
		}
		if err := p.recordStructured(ctx, item, itemResult.Analysis, itemResult.Model); err != nil {
			p.logExposureFailure(item, err)
			outcome.Errors++
			continue
		}
		outcome.Processed++
	}
	return runResult{outcome: outcome}
}

func (p *Processor) recordStructured(ctx context.Context, item *store.ContentItem, a *gemini.Analysis, model string) error {
	headline := item.Title
	if len(a.ProvocativeHeadlines) > 0 && a.ProvocativeHeadlines[0] != "" {
		headline = a.ProvocativeHeadlines[0]
	}
	keyword := fallbackKeyword
	if len(a.ProvocativeKeywords) > 0 && a.ProvocativeKeywords[0] != "" {
		keyword = a.ProvocativeKeywords[0]
	}
	summary := a.Summary
	if summary == "" {
		summary = textutil.Excerpt(item.Body, fallbackSummaryChars)
	}

	if _, err := p.storage.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: keyword,
		Headline:           headline,
		SummaryText:        summary,
		Model:              model,
	}); err != nil {
		return err
	}
	if len(a.MatchedKeywords) > 0 {
		if err := p.storage.ReplaceContentKeywords(ctx, item.ID, a.MatchedKeywords); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) recordFallback(ctx context.Context, item *store.ContentItem) error {
	_, err := p.storage.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: fallbackKeyword,
		Headline:           item.Title,
		SummaryText:        textutil.Excerpt(item.Body, fallbackSummaryChars),
	})
	return err
}

func (p *Processor) logExposureFailure(item *store.ContentItem, err error) {
	p.logger.Error("exposure creation failed",
		logging.Int64(logging.FieldContentID, item.ID),
		logging.Error(err),
		logging.String(logging.FieldEventType, "exposure_failed"),
	)
}
