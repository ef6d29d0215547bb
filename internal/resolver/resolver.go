package resolver

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"vidplan/internal/assets"
	"vidplan/internal/logging"
	"vidplan/internal/plan"
	"vidplan/internal/services"
)

// ProgressFunc receives every asset status change together with the 0-based
// index of the scene it belongs to. Calls are serialized.
type ProgressFunc func(sceneIndex int, assetID string, status assets.Status)

// SceneReport describes what happened to one scene.
type SceneReport struct {
	Index        int              `json:"index"`
	SceneID      string           `json:"sceneId"`
	Requirements int              `json:"requirements"`
	Outcome      assets.Outcome   `json:"outcome"`
	Readiness    assets.Readiness `json:"readiness"`
	// Resolved is false when the scene was skipped because of cancellation.
	Resolved bool `json:"resolved"`
}

// Result is the resolved plan plus per-scene reports in scene order.
type Result struct {
	Plan   plan.VideoPlan `json:"plan"`
	Scenes []SceneReport  `json:"scenes"`
}

// Counts totals ready, failed, and unattempted assets across scenes.
func (r Result) Counts() (ready, failed, pending int) {
	for _, s := range r.Scenes {
		sr, sf, sp := s.Outcome.Counts()
		ready += sr
		failed += sf
		pending += sp
	}
	return ready, failed, pending
}

// Ready reports whether every scene resolved and passed the readiness check.
func (r Result) Ready() bool {
	for _, s := range r.Scenes {
		if !s.Resolved || !s.Readiness.Valid {
			return false
		}
	}
	return true
}

// Resolver composes extraction, generation, injection, and readiness checks
// across the scenes of a plan.
type Resolver struct {
	generator   assets.Generator
	extractor   assets.Extractor
	logger      *slog.Logger
	concurrency int
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSceneConcurrency bounds how many scenes resolve at once. Values below
// one mean one.
func WithSceneConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = max(n, 1)
	}
}

// WithDefaultStyle sets the image style used when an element has none.
func WithDefaultStyle(style string) Option {
	return func(r *Resolver) {
		r.extractor.DefaultStyle = style
	}
}

// New builds a Resolver around a generator.
func New(generator assets.Generator, opts ...Option) *Resolver {
	r := &Resolver{
		generator:   generator,
		logger:      logging.NewNop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// Resolve returns a new plan whose scenes carry generated image sources.
// Plan-level fields are copied unchanged and p is never modified. On
// cancellation the result still holds every scene resolved so far, with the
// remaining scenes copied from p, and the context error is returned.
func (r *Resolver) Resolve(ctx context.Context, p plan.VideoPlan, progress ProgressFunc) (Result, error) {
	working := p.Clone()
	if id := p.ID; id != "" {
		ctx = services.WithPlanID(ctx, id)
	}
	logger := logging.WithContext(ctx, r.logger)

	reqs := make([][]assets.Requirement, len(working.Scenes))
	total := 0
	for i, scene := range working.Scenes {
		reqs[i] = r.extractor.Extract(scene.Elements)
		total += len(reqs[i])
	}
	logger.Info("resolving plan",
		logging.String("plan", working.DisplayName()),
		logging.Int("scenes", len(working.Scenes)),
		logging.Int("assets", total),
		logging.Int("scene_concurrency", r.concurrency),
	)

	reports := make([]SceneReport, len(working.Scenes))
	for i, scene := range working.Scenes {
		reports[i] = SceneReport{Index: i, SceneID: scene.ID, Requirements: len(reqs[i])}
	}

	tracker := newProgressTracker(logger, progress, total)
	coordinator := assets.NewCoordinator(r.generator, r.logger)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i := range working.Scenes {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sceneCtx := services.WithSceneIndex(ctx, i)
			scene, report, err := r.resolveScene(sceneCtx, coordinator, working.Scenes[i], reqs[i], tracker.forScene(i))
			working.Scenes[i] = scene
			reports[i].Outcome = report.Outcome
			reports[i].Readiness = report.Readiness
			reports[i].Resolved = err == nil
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	result := Result{Plan: working, Scenes: reports}
	ready, failed, pending := result.Counts()
	if err != nil {
		logging.WarnWithContext(logger, "plan resolution interrupted", "resolution_cancelled",
			logging.Int("ready", ready),
			logging.Int("failed", failed),
			logging.Int("pending", pending),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun resolve to finish the remaining assets"),
			logging.String(logging.FieldImpact, "plan is partially resolved"),
		)
		return result, err
	}
	logger.Info("plan resolved",
		logging.Int("ready", ready),
		logging.Int("failed", failed),
		logging.Bool("render_ready", result.Ready()),
	)
	return result, nil
}

func (r *Resolver) resolveScene(
	ctx context.Context,
	coordinator *assets.Coordinator,
	scene plan.Scene,
	reqs []assets.Requirement,
	progress assets.ProgressFunc,
) (plan.Scene, SceneReport, error) {
	var report SceneReport
	if len(reqs) == 0 {
		report.Outcome = assets.Outcome{Items: []assets.Metadata{}}
		report.Readiness = assets.Check(scene.Elements)
		return scene, report, nil
	}

	outcome, err := coordinator.Run(ctx, reqs, progress)
	report.Outcome = outcome
	resolved := scene
	resolved.Elements = assets.Inject(scene.Elements, outcome.URLs())
	report.Readiness = assets.Check(resolved.Elements)

	ready, failed, _ := outcome.Counts()
	logging.WithContext(ctx, r.logger).Info("scene resolved",
		logging.String("scene_id", scene.ID),
		logging.Int("ready", ready),
		logging.Int("failed", failed),
		logging.Int("missing", len(report.Readiness.MissingImages)),
	)
	return resolved, report, err
}

type progressTracker struct {
	mu       sync.Mutex
	logger   *slog.Logger
	sink     ProgressFunc
	sampler  *logging.ProgressSampler
	total    int
	finished int
}

func newProgressTracker(logger *slog.Logger, sink ProgressFunc, total int) *progressTracker {
	return &progressTracker{
		logger:  logger,
		sink:    sink,
		sampler: logging.NewProgressSampler(10),
		total:   total,
	}
}

func (t *progressTracker) forScene(index int) assets.ProgressFunc {
	return func(assetID string, status assets.Status) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if status.Done() {
			t.finished++
			if t.sampler.ShouldLog(index, t.finished, t.total) {
				t.logger.Info("resolution progress",
					logging.Int(logging.FieldSceneIndex, index),
					logging.Int("done", t.finished),
					logging.Int("total", t.total),
				)
			}
		}
		if t.sink != nil {
			t.sink(index, assetID, status)
		}
	}
}
