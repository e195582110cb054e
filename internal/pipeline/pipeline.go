// Package pipeline runs detection and mission breakdown for the CLI, the
// HTTP API and the MCP tools. It adds what the pure detect and mission
// packages leave out: persistence, a read cache, metrics, spans and logs.
package pipeline

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/log"
	"github.com/ordinex/ordinex/internal/metrics"
	"github.com/ordinex/ordinex/internal/mission"
	"github.com/ordinex/ordinex/internal/plan"
	"github.com/ordinex/ordinex/internal/store"
	"github.com/ordinex/ordinex/internal/telemetry"
)

// DefaultCacheSize is used when Options.CacheSize is not positive
const DefaultCacheSize = 1024

// Lookup sources reported to metrics
const (
	SourceCache = "cache"
	SourceStore = "store"
	SourceMiss  = "miss"
)

// Repository is the persistence the pipeline needs. *store.Store
// implements it.
type Repository interface {
	Save(ctx context.Context, b *mission.Breakdown, d detect.Result, forced bool) error
	Get(ctx context.Context, id string) (*store.Record, error)
	Latest(ctx context.Context, planID string) (*store.Record, error)
	ListByPlan(ctx context.Context, planID string) ([]store.Summary, error)
}

// Options configures a Pipeline. Every field is optional.
type Options struct {
	Detector  *detect.Detector
	Store     Repository
	CacheSize int
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

// Pipeline is safe for concurrent use
type Pipeline struct {
	detector *detect.Detector
	store    Repository
	cache    *lru.Cache[string, *store.Record]
	metrics  *metrics.Metrics
	logger   *log.Logger
	now      func() time.Time
}

// Outcome is the result of a breakdown request
type Outcome struct {
	Detection detect.Result      `json:"detection" yaml:"detection"`
	Breakdown *mission.Breakdown `json:"breakdown" yaml:"breakdown"`
	Forced    bool               `json:"forced" yaml:"forced"`
	Persisted bool               `json:"persisted" yaml:"persisted"`
}

// New creates a pipeline from opts
func New(opts Options) (*Pipeline, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *store.Record](size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "create breakdown cache", err)
	}

	detector := opts.Detector
	if detector == nil {
		detector = detect.NewDetector(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Global()
	}

	return &Pipeline{
		detector: detector,
		store:    opts.Store,
		cache:    cache,
		metrics:  opts.Metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// HasStore reports whether breakdowns are persisted
func (p *Pipeline) HasStore() bool {
	return p.store != nil
}

// Detect scores doc. Detection never fails; doc is not validated.
func (p *Pipeline) Detect(ctx context.Context, doc *plan.Document) detect.Result {
	_, span := telemetry.StartPipelineSpan(ctx, "detect", doc.PlanID, len(doc.Steps))
	defer span.End()

	result := p.detector.Detect(doc.Steps, doc.Goal)
	telemetry.RecordDetection(span, result)
	if p.metrics != nil {
		p.metrics.RecordDetection(result.LargePlan, result.Score, result.Metrics.RiskFlags)
	}

	p.logger.WithContext(ctx).Debug("plan scored",
		"plan_id", doc.PlanID,
		"steps", len(doc.Steps),
		"score", result.Score,
		"large_plan", result.LargePlan)

	return result
}

// Breakdown validates doc, detects and then partitions it into missions.
// The breakdown is cached and, with a store configured, persisted. A
// persistence failure fails the request.
func (p *Pipeline) Breakdown(ctx context.Context, doc *plan.Document, force bool) (*Outcome, error) {
	if err := doc.Validate(); err != nil {
		p.recordError(err)
		return nil, err
	}

	detection := p.Detect(ctx, doc)

	ctx, span := telemetry.StartPipelineSpan(ctx, "breakdown", doc.PlanID, len(doc.Steps))
	defer span.End()

	start := time.Now()
	b, err := mission.Generate(doc.PlanID, doc.Version, doc.Goal, doc.Steps, detection, mission.Options{
		Force:      force,
		Vocabulary: p.detector.Vocabulary(),
	})
	if p.metrics != nil {
		missions := 0
		if b != nil {
			missions = len(b.Missions)
		}
		p.metrics.RecordBreakdown(force, err == nil, missions, len(doc.Steps), time.Since(start))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		p.recordError(err)
		return nil, err
	}
	telemetry.RecordBreakdown(span, b)

	out := &Outcome{Detection: detection, Breakdown: b, Forced: force}
	rec, err := p.persist(ctx, b, detection, force)
	if err != nil {
		telemetry.RecordError(span, err)
		p.recordError(err)
		return nil, err
	}
	out.Persisted = p.store != nil
	p.cache.Add(b.BreakdownID, rec)

	p.logger.WithContext(ctx).Info("breakdown generated",
		"plan_id", doc.PlanID,
		"plan_version", doc.Version,
		"breakdown_id", b.BreakdownID,
		"missions", len(b.Missions),
		"forced", force,
		"persisted", out.Persisted)

	return out, nil
}

// persist saves b and returns the record as stored, so regenerations keep
// the original CreatedAt. Without a store the record is built locally.
func (p *Pipeline) persist(ctx context.Context, b *mission.Breakdown, d detect.Result, force bool) (*store.Record, error) {
	if p.store == nil {
		now := p.now().UTC()
		return &store.Record{
			Breakdown: b,
			Detection: d,
			Forced:    force,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	if err := p.store.Save(ctx, b, d, force); err != nil {
		return nil, err
	}
	return p.store.Get(ctx, b.BreakdownID)
}

// Get returns a breakdown by ID from the cache, then the store
func (p *Pipeline) Get(ctx context.Context, id string) (*store.Record, error) {
	if rec, ok := p.cache.Get(id); ok {
		p.recordLookup(SourceCache)
		return rec, nil
	}
	if p.store == nil {
		p.recordLookup(SourceMiss)
		return nil, errors.NewBreakdownNotFoundError(id)
	}

	rec, err := p.store.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			p.recordLookup(SourceMiss)
		} else {
			p.recordError(err)
		}
		return nil, err
	}
	p.recordLookup(SourceStore)
	p.cache.Add(id, rec)
	return rec, nil
}

// History lists the stored breakdowns of a plan, newest version first
func (p *Pipeline) History(ctx context.Context, planID string) ([]store.Summary, error) {
	if p.store == nil {
		return nil, errStoreDisabled()
	}
	return p.store.ListByPlan(ctx, planID)
}

// Latest returns the newest stored breakdown of a plan
func (p *Pipeline) Latest(ctx context.Context, planID string) (*store.Record, error) {
	if p.store == nil {
		return nil, errStoreDisabled()
	}
	return p.store.Latest(ctx, planID)
}

func errStoreDisabled() error {
	return errors.New(errors.ErrCodeStoreOpen, "breakdown history is disabled").
		WithSuggestion("Enable it with 'ordinex config set store.enabled true'")
}

func (p *Pipeline) recordLookup(source string) {
	if p.metrics != nil {
		p.metrics.RecordLookup(source)
	}
}

func (p *Pipeline) recordError(err error) {
	if p.metrics != nil {
		p.metrics.RecordError(string(errors.CodeOf(err)))
	}
}
