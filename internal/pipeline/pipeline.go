package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prodpipe/internal/checks"
	"prodpipe/internal/config"
	"prodpipe/internal/identity"
	"prodpipe/internal/logging"
	"prodpipe/internal/notifications"
	"prodpipe/internal/review"
	"prodpipe/internal/validation"
)

// Pipeline wires identifier generation, image scoring, and review routing
// into the ingest path.
type Pipeline struct {
	cfg       *config.Config
	generator *identity.Generator
	reviews   *review.Manager
	extractor checks.Extractor
	notifier  notifications.Service
	logger    *slog.Logger
}

// New assembles a pipeline from its components. The extractor may be nil
// when only pre-computed scores are routed.
func New(cfg *config.Config, generator *identity.Generator, reviews *review.Manager, extractor checks.Extractor, notifier notifications.Service, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		generator: generator,
		reviews:   reviews,
		extractor: extractor,
		notifier:  notifier,
		logger:    logging.WithComponent(logger, "pipeline"),
	}
}

// Ingestion reports the identifier assigned to a product.
type Ingestion struct {
	SKU        string
	Resolution identity.Resolution
}

// IngestProduct assigns the canonical identifier for a (namespace, code)
// pair. Resubmitting the same pair returns the same identifier.
func (p *Pipeline) IngestProduct(ctx context.Context, namespace, rawCode string) (Ingestion, error) {
	sku, resolution, err := p.generator.Generate(ctx, namespace, rawCode)
	if err != nil {
		return Ingestion{}, err
	}

	identifiersTotal.WithLabelValues(string(resolution)).Inc()
	logging.WithSKU(p.logger, sku).Info("product ingested",
		logging.String("resolution", string(resolution)),
	)
	return Ingestion{SKU: sku, Resolution: resolution}, nil
}

// Outcome reports how one image's validation was routed.
type Outcome struct {
	SKU      string
	ImageRef string
	Result   validation.Result
	// Task is non-nil when the image was routed to human review.
	Task *review.Task
}

// ValidateImage extracts check scores for an image and routes it.
func (p *Pipeline) ValidateImage(ctx context.Context, sku, imageRef string) (Outcome, error) {
	if p.extractor == nil {
		return Outcome{}, errors.New("no check extractor configured")
	}
	scores, err := p.extractor.Extract(ctx, imageRef)
	if err != nil {
		return Outcome{}, fmt.Errorf("extract checks for %s: %w", imageRef, err)
	}
	return p.RouteScores(ctx, sku, imageRef, scores, 0)
}

// RouteScores scores pre-computed check results and routes the image:
// accepted images pass through, review candidates become pending tasks, and
// rejected images are optionally routed to review for human override. An
// image with no scorable checks is rejected for lack of signal rather than
// failing the call.
func (p *Pipeline) RouteScores(ctx context.Context, sku, imageRef string, scores map[string]float64, priorityHint int) (Outcome, error) {
	thresholds := validation.Thresholds{
		Accept: p.cfg.Validation.AcceptThreshold,
		Review: p.cfg.Validation.ReviewThreshold,
	}

	result, err := validation.Score(scores, p.cfg.Validation.Weights, thresholds)
	if errors.Is(err, validation.ErrInsufficientChecks) {
		result = validation.Result{
			Status: validation.StatusAutoRejected,
			Reason: "insufficient signal",
		}
	} else if err != nil {
		return Outcome{}, err
	}

	validationsTotal.WithLabelValues(string(result.Status)).Inc()
	outcome := Outcome{SKU: sku, ImageRef: imageRef, Result: result}

	route := result.Status == validation.StatusNeedsReview ||
		(result.Status == validation.StatusAutoRejected && p.cfg.Review.RouteAutoRejected)
	if route {
		task, err := p.reviews.CreateTask(ctx, sku, imageRef, result, priorityHint)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Task = task
		reviewRoutedTotal.Inc()
		p.notifyTaskCreated(ctx, task)
	}

	p.logger.Info("image validated",
		logging.String(logging.FieldSKU, sku),
		logging.String(logging.FieldImageRef, imageRef),
		logging.Float64("overall", result.Overall),
		logging.String("status", string(result.Status)),
	)
	return outcome, nil
}

func (p *Pipeline) notifyTaskCreated(ctx context.Context, task *review.Task) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyTaskCreated(ctx, task.ID, task.SKU, task.Priority); err != nil {
		logging.WithTask(p.logger, task.ID).Warn("task notification failed", logging.Error(err))
	}
}
