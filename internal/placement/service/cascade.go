package service

import (
	"context"
	"sync"

	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/internal/observability/logger"
	"github.com/smallbiznis/placements/internal/observability/metrics"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cascade persists one aggregate leaves first. It records every durable
// write so a failure can report exactly what must be reconciled.
type cascade struct {
	id          string
	placementID string
	store       domain.Store
	metrics     *metrics.Metrics
	cfg         config.CascadeConfig

	mu    sync.Mutex
	saved []domain.SavedRef
}

func (c *cascade) run(ctx context.Context, p *domain.Placement) error {
	if err := c.linked(ctx, p); err != nil {
		return err
	}
	for i := range p.UnderwriterPool {
		if err := c.underwriterPool(ctx, &p.UnderwriterPool[i]); err != nil {
			return err
		}
	}
	if err := c.documents(ctx, p.Documents); err != nil {
		return err
	}
	if err := c.programmes(ctx, p.Programmes); err != nil {
		return err
	}
	for i := range p.SubmissionRequests {
		req := &p.SubmissionRequests[i]
		id, err := c.save(ctx, domain.CollectionSubmissionRequests, req.ID, req)
		if err != nil {
			return err
		}
		req.ID = id
	}
	return nil
}

// linked saves the required entities the root points at. Presence was
// checked before the cascade started.
func (c *cascade) linked(ctx context.Context, p *domain.Placement) error {
	if _, err := c.save(ctx, domain.CollectionMetadata, "", p.Metadata); err != nil {
		return err
	}
	id, err := c.save(ctx, domain.CollectionUsers, p.User.XID, p.User)
	if err != nil {
		return err
	}
	p.User.XID = id

	if id, err = c.save(ctx, domain.CollectionBranches, p.Branch.XID, p.Branch); err != nil {
		return err
	}
	p.Branch.XID = id

	if id, err = c.save(ctx, domain.CollectionBrokerTeams, p.BrokerTeam.XID, p.BrokerTeam); err != nil {
		return err
	}
	p.BrokerTeam.XID = id
	return nil
}

func (c *cascade) underwriterPool(ctx context.Context, pool *domain.UnderwriterPool) error {
	if org := pool.Organisation; org != nil {
		id, err := c.save(ctx, domain.CollectionOrganisations, org.XID, org)
		if err != nil {
			return err
		}
		org.XID = id
	}
	if company := pool.Company; company != nil {
		id, err := c.save(ctx, domain.CollectionCompanies, company.XID, company)
		if err != nil {
			return err
		}
		company.XID = id
	}
	id, err := c.save(ctx, domain.CollectionUnderwriterPools, pool.XID, pool)
	if err != nil {
		return err
	}
	pool.XID = id
	return nil
}

func (c *cascade) documents(ctx context.Context, docs []domain.Document) error {
	for i := range docs {
		id, err := c.save(ctx, domain.CollectionDocuments, docs[i].XID, docs[i])
		if err != nil {
			return err
		}
		docs[i].XID = id
	}
	return nil
}

func (c *cascade) insureds(ctx context.Context, items []domain.Insured) error {
	for i := range items {
		id, err := c.save(ctx, domain.CollectionInsureds, items[i].ID, items[i])
		if err != nil {
			return err
		}
		items[i].ID = id
	}
	return nil
}

// programmes runs sibling programmes sequentially, or concurrently when the
// cascade config allows it. Each programme keeps strict internal order and
// writes back into its own slot, so the slice order is preserved either way.
func (c *cascade) programmes(ctx context.Context, items []domain.Programme) error {
	if !c.cfg.ParallelProgrammes || len(items) < 2 {
		for i := range items {
			if err := c.programme(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.cfg.MaxConcurrency > 0 {
		g.SetLimit(c.cfg.MaxConcurrency)
	}
	for i := range items {
		prog := &items[i]
		g.Go(func() error {
			return c.programme(gctx, prog)
		})
	}
	return g.Wait()
}

func (c *cascade) programme(ctx context.Context, prog *domain.Programme) error {
	if err := c.documents(ctx, prog.Documents); err != nil {
		return err
	}
	for i := range prog.Contracts {
		if err := c.contract(ctx, &prog.Contracts[i]); err != nil {
			return err
		}
	}
	id, err := c.save(ctx, domain.CollectionProgrammes, prog.ID, prog)
	if err != nil {
		return err
	}
	prog.ID = id
	return nil
}

func (c *cascade) contract(ctx context.Context, ct *domain.Contract) error {
	if err := c.insureds(ctx, ct.Insureds); err != nil {
		return err
	}
	if err := c.documents(ctx, ct.Documents); err != nil {
		return err
	}
	for i := range ct.Sections {
		if err := c.section(ctx, &ct.Sections[i]); err != nil {
			return err
		}
	}
	id, err := c.save(ctx, domain.CollectionContracts, ct.ID, ct)
	if err != nil {
		return err
	}
	ct.ID = id
	return nil
}

func (c *cascade) section(ctx context.Context, sec *domain.Section) error {
	for i := range sec.Risks {
		id, err := c.save(ctx, domain.CollectionRisks, sec.Risks[i].ID, sec.Risks[i])
		if err != nil {
			return err
		}
		sec.Risks[i].ID = id
	}
	if err := c.insureds(ctx, sec.Insureds); err != nil {
		return err
	}
	for i := range sec.Limits {
		id, err := c.save(ctx, domain.CollectionLimits, sec.Limits[i].ID, sec.Limits[i])
		if err != nil {
			return err
		}
		sec.Limits[i].ID = id
	}
	for i := range sec.Premiums {
		id, err := c.save(ctx, domain.CollectionPremiums, sec.Premiums[i].ID, sec.Premiums[i])
		if err != nil {
			return err
		}
		sec.Premiums[i].ID = id
	}
	for i := range sec.Deductibles {
		id, err := c.save(ctx, domain.CollectionDeductibles, sec.Deductibles[i].ID, sec.Deductibles[i])
		if err != nil {
			return err
		}
		sec.Deductibles[i].ID = id
	}
	for i := range sec.Excesses {
		id, err := c.save(ctx, domain.CollectionExcesses, sec.Excesses[i].ID, sec.Excesses[i])
		if err != nil {
			return err
		}
		sec.Excesses[i].ID = id
	}
	if err := c.documents(ctx, sec.Documents); err != nil {
		return err
	}

	id, err := c.save(ctx, domain.CollectionSections, sec.ID, sec)
	if err != nil {
		return err
	}
	sec.ID = id
	return nil
}

func (c *cascade) save(ctx context.Context, name domain.CollectionName, id string, doc any) (string, error) {
	saved, err := c.store.Collection(name).Save(ctx, id, doc)
	if err != nil {
		c.metrics.RecordCascadeFailure(ctx, string(name), metrics.ClassifyStoreError(err))
		return "", &domain.CascadeError{
			CascadeID:   c.id,
			PlacementID: c.placementID,
			Collection:  name,
			EntityID:    id,
			Saved:       c.snapshot(),
			Err:         err,
		}
	}

	c.mu.Lock()
	c.saved = append(c.saved, domain.SavedRef{Collection: name, ID: saved})
	c.mu.Unlock()
	c.metrics.RecordCascadeWrite(ctx, string(name))
	return saved, nil
}

func (c *cascade) snapshot() []domain.SavedRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.SavedRef, len(c.saved))
	copy(out, c.saved)
	return out
}

// logFailure records what was already written. The context carries the
// cascade id.
func logFailure(ctx context.Context, log *zap.Logger, err *domain.CascadeError) {
	logger.WithContext(ctx, log).Error("placement cascade failed",
		zap.String("placement_id", err.PlacementID),
		zap.String("collection", string(err.Collection)),
		zap.String("entity_id", err.EntityID),
		zap.Int("saved_count", len(err.Saved)),
		zap.Any("saved", err.Saved),
		zap.Error(err.Err),
	)
}
