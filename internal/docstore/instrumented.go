// Package docstore selects the document store adapter and instruments every
// round trip it makes.
package docstore

import (
	"context"
	"time"

	"github.com/smallbiznis/placements/internal/observability/metrics"
	"github.com/smallbiznis/placements/internal/observability/tracing"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "placements/docstore"

// Instrument wraps s so each call is timed, counted and traced under kind.
func Instrument(s domain.Store, kind string, m *metrics.StoreMetrics) domain.Store {
	w := &instrumented{kind: kind, metrics: m, tracer: otel.Tracer(tracerName)}
	w.inner = s
	w.placements = &instrumentedPlacements{instrumented: w, inner: s.Placements()}
	return w
}

type instrumented struct {
	inner      domain.Store
	kind       string
	metrics    *metrics.StoreMetrics
	tracer     trace.Tracer
	placements *instrumentedPlacements
}

func (s *instrumented) Placements() domain.PlacementRepository {
	return s.placements
}

func (s *instrumented) Collection(name domain.CollectionName) domain.Collection {
	return &instrumentedCollection{instrumented: s, inner: s.inner.Collection(name)}
}

func (s *instrumented) observe(ctx context.Context, collection domain.CollectionName, op string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "docstore."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.SafeAttributes(
			attribute.String("db.system", s.kind),
			attribute.String("db.collection.name", string(collection)),
			attribute.String("db.operation.name", op),
		)...),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.Observe(s.kind, string(collection), op, time.Since(start), err)
	if err != nil && metrics.ClassifyStoreError(err) != metrics.StoreReasonNotFound {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, metrics.ClassifyStoreError(err))
	}
	return err
}

type instrumentedCollection struct {
	*instrumented
	inner domain.Collection
}

func (c *instrumentedCollection) Name() domain.CollectionName { return c.inner.Name() }

func (c *instrumentedCollection) Save(ctx context.Context, id string, doc any) (string, error) {
	var saved string
	err := c.observe(ctx, c.inner.Name(), "save", func(ctx context.Context) error {
		var err error
		saved, err = c.inner.Save(ctx, id, doc)
		return err
	})
	return saved, err
}

func (c *instrumentedCollection) FindByID(ctx context.Context, id string, out any) error {
	return c.observe(ctx, c.inner.Name(), "find_by_id", func(ctx context.Context) error {
		return c.inner.FindByID(ctx, id, out)
	})
}

type instrumentedPlacements struct {
	*instrumented
	inner domain.PlacementRepository
}

func (p *instrumentedPlacements) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := p.observe(ctx, domain.CollectionPlacements, "exists", func(ctx context.Context) error {
		var err error
		ok, err = p.inner.Exists(ctx, id)
		return err
	})
	return ok, err
}

func (p *instrumentedPlacements) Create(ctx context.Context, pl *domain.Placement) error {
	return p.observe(ctx, domain.CollectionPlacements, "create", func(ctx context.Context) error {
		return p.inner.Create(ctx, pl)
	})
}

func (p *instrumentedPlacements) Replace(ctx context.Context, pl *domain.Placement) error {
	return p.observe(ctx, domain.CollectionPlacements, "replace", func(ctx context.Context) error {
		return p.inner.Replace(ctx, pl)
	})
}

func (p *instrumentedPlacements) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	var out *domain.Placement
	err := p.observe(ctx, domain.CollectionPlacements, "find_by_id", func(ctx context.Context) error {
		var err error
		out, err = p.inner.FindByID(ctx, id)
		return err
	})
	return out, err
}

func (p *instrumentedPlacements) FindAll(ctx context.Context) ([]domain.Placement, error) {
	var out []domain.Placement
	err := p.observe(ctx, domain.CollectionPlacements, "find_all", func(ctx context.Context) error {
		var err error
		out, err = p.inner.FindAll(ctx)
		return err
	})
	return out, err
}

func (p *instrumentedPlacements) Find(ctx context.Context, q domain.Query) ([]domain.Placement, error) {
	var out []domain.Placement
	err := p.observe(ctx, domain.CollectionPlacements, "find", func(ctx context.Context) error {
		var err error
		out, err = p.inner.Find(ctx, q)
		return err
	})
	return out, err
}

func (p *instrumentedPlacements) Delete(ctx context.Context, id string) error {
	return p.observe(ctx, domain.CollectionPlacements, "delete", func(ctx context.Context) error {
		return p.inner.Delete(ctx, id)
	})
}
