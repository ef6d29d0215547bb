package assets

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"vidplan/internal/logging"
	"vidplan/internal/services"
)

// Generated is a successful generation response.
type Generated struct {
	URL string `json:"url"`
}

// Generator produces content for a single requirement. Implementations must
// tolerate being called again after a failure.
type Generator interface {
	Generate(ctx context.Context, req Requirement) (Generated, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Requirement) (Generated, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Requirement) (Generated, error) {
	return f(ctx, req)
}

// ErrNoURL marks a generation response that succeeded without a URL.
var ErrNoURL = errors.New("generation returned no url")

// Coordinator drives a Generator over a batch of requirements one at a time.
type Coordinator struct {
	generator Generator
	logger    *slog.Logger
}

// NewCoordinator builds a coordinator. A nil logger discards output.
func NewCoordinator(generator Generator, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "assets"),
	}
}

// Run attempts every requirement in order. Each asset is reported as pending
// up front, then generating, then ready or error. Failures are logged and
// recorded in the outcome; the batch always continues. The only error
// returned is ctx's, checked before each asset, in which case the outcome
// holds the assets finished so far and the rest stay pending.
func (c *Coordinator) Run(ctx context.Context, reqs []Requirement, progress ProgressFunc) (Outcome, error) {
	outcome := Outcome{Items: make([]Metadata, len(reqs))}
	for i, req := range reqs {
		outcome.Items[i] = Metadata{AssetID: req.AssetID, Status: StatusPending}
		report(progress, req.AssetID, StatusPending)
	}

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		item := &outcome.Items[i]
		item.Status = StatusGenerating
		report(progress, req.AssetID, StatusGenerating)

		url, err := c.generate(ctx, req)
		if err != nil {
			item.Status = StatusError
			item.Error = err.Error()
			assetCtx := services.WithAssetID(ctx, req.AssetID)
			logging.WarnWithContext(
				logging.WithContext(assetCtx, c.logger),
				"asset generation failed",
				"asset_generation_failed",
				logging.String("description", req.Description),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the generation service or supply the image manually"),
				logging.String(logging.FieldImpact, "element left without a source"),
			)
			report(progress, req.AssetID, StatusError)
			continue
		}
		item.Status = StatusReady
		item.URL = url
		c.logger.Debug("asset generated",
			logging.String(logging.FieldAssetID, req.AssetID),
			logging.String("url", url),
		)
		report(progress, req.AssetID, StatusReady)
	}
	return outcome, nil
}

func (c *Coordinator) generate(ctx context.Context, req Requirement) (string, error) {
	if c.generator == nil {
		return "", services.Wrap(services.ErrConfiguration, "assets", "generate", "no generator configured", nil)
	}
	resp, err := c.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(resp.URL)
	if url == "" {
		return "", ErrNoURL
	}
	return url, nil
}

func report(progress ProgressFunc, assetID string, status Status) {
	if progress != nil {
		progress(assetID, status)
	}
}
