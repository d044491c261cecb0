package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/placements/internal/clock"
	"github.com/smallbiznis/placements/internal/config"
	obscontext "github.com/smallbiznis/placements/internal/observability/context"
	"github.com/smallbiznis/placements/internal/observability/logger"
	"github.com/smallbiznis/placements/internal/observability/metrics"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/placement/query"
	"github.com/smallbiznis/placements/internal/schema"
	"github.com/smallbiznis/placements/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	lockTTL         = 10 * time.Second
	reassignChannel = "reassign"

	maxExactInteger = 1 << 53
)

// Locker guards read-modify-write operations on a single placement.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Store     domain.Store
	Validator domain.Validator
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Cascade   *config.CascadeConfigHolder
	Locker    Locker `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	store     domain.Store
	validator domain.Validator
	clock     clock.Clock
	metrics   *metrics.Metrics
	cascade   *config.CascadeConfigHolder
	locker    Locker
}

func New(p Params) domain.Service {
	cascadeCfg := p.Cascade
	if cascadeCfg == nil {
		cascadeCfg = config.NewStaticCascadeConfigHolder(config.DefaultCascadeConfig())
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		log:       p.Log.Named("placement.service"),
		store:     p.Store,
		validator: p.Validator,
		clock:     clk,
		metrics:   p.Metrics,
		cascade:   cascadeCfg,
		locker:    p.Locker,
	}
}

func (s *Service) Submit(ctx context.Context, body []byte) (*domain.Placement, error) {
	tree, err := s.validate(ctx, "submit", body, "")
	if err != nil {
		return nil, err
	}
	p, err := decodePlacement(tree)
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, p)
}

func (s *Service) Replace(ctx context.Context, id string, body []byte) (*domain.Placement, error) {
	id = strings.TrimSpace(id)
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.requireExisting(ctx, id); err != nil {
		return nil, err
	}
	tree, err := s.validate(ctx, "replace", body, id)
	if err != nil {
		return nil, err
	}
	p, err := decodePlacement(tree)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, p)
}

func (s *Service) Save(ctx context.Context, p *domain.Placement) (*domain.Placement, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: placement is empty", domain.ErrMalformedDocument)
	}
	repo := s.store.Placements()

	if p.ID != "" {
		exists, err := repo.Exists(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &domain.DuplicateError{ID: p.ID}
		}
	}
	if err := requireLinked(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	cascadeID := correlation.NewID()
	ctx = correlation.ContextWithCorrelationID(ctx, cascadeID)
	ctx = obscontext.WithCascadeID(ctx, cascadeID)
	correlation.AnnotateSpan(ctx, "cascade_id")

	run := &cascade{
		id:          cascadeID,
		placementID: p.ID,
		store:       s.store,
		metrics:     s.metrics,
		cfg:         s.cascade.Get(),
	}
	if err := run.run(ctx, p); err != nil {
		var cerr *domain.CascadeError
		if errors.As(err, &cerr) {
			logFailure(ctx, s.log, cerr)
		}
		return nil, err
	}

	if err := repo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentifier) {
			logger.WithContext(ctx, s.log).Warn("placement created concurrently",
				zap.String("placement_id", p.ID),
				zap.Int("saved_count", len(run.snapshot())),
			)
			return nil, err
		}
		s.metrics.RecordCascadeFailure(ctx, string(domain.CollectionPlacements), metrics.ClassifyStoreError(err))
		cerr := &domain.CascadeError{
			CascadeID:   cascadeID,
			PlacementID: p.ID,
			Collection:  domain.CollectionPlacements,
			EntityID:    p.ID,
			Saved:       run.snapshot(),
			Err:         err,
		}
		logFailure(ctx, s.log, cerr)
		return nil, cerr
	}

	s.metrics.RecordCascadeWrite(ctx, string(domain.CollectionPlacements))
	s.metrics.RecordPlacementSaved(ctx, "save")
	logger.WithContext(ctx, s.log).Info("placement saved",
		zap.String("placement_id", p.ID),
		zap.Int("sub_documents", len(run.snapshot())),
	)
	return p, nil
}

// Update replaces the root document only. Nested entities are not
// re-cascaded.
func (s *Service) Update(ctx context.Context, id string, p *domain.Placement) (*domain.Placement, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: placement is empty", domain.ErrMalformedDocument)
	}
	id = strings.TrimSpace(id)
	if err := s.requireExisting(ctx, id); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.store.Placements().Replace(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.RecordPlacementSaved(ctx, "update")
	return p, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	id = strings.TrimSpace(id)
	p, err := s.store.Placements().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
	}
	return p, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Placement, error) {
	return s.store.Placements().FindAll(ctx)
}

func (s *Service) DeleteByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.Placements().Delete(ctx, id); err != nil {
		return err
	}
	logger.WithContext(ctx, s.log).Info("placement deleted", zap.String("placement_id", id))
	return nil
}

func (s *Service) Query(ctx context.Context, spec domain.QuerySpec, caller string) ([]domain.Placement, error) {
	q, err := query.Build(spec, caller)
	if err != nil {
		return nil, err
	}
	return s.store.Placements().Find(ctx, q)
}

func (s *Service) Reassign(ctx context.Context, id string, req domain.ReassignRequest) (*domain.Placement, error) {
	id = strings.TrimSpace(id)
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	teamID := strings.TrimSpace(req.TeamID)
	if teamID == "" {
		return nil, &domain.ValidationError{Violations: []domain.Violation{
			{Path: "/broker_team/team_id", Message: "team_id is required"},
		}}
	}

	var team domain.BrokerTeam
	if err := s.store.Collection(domain.CollectionBrokerTeams).FindByID(ctx, teamID, &team); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceBrokerTeam, ID: teamID}
		}
		return nil, err
	}
	team.XID = teamID

	p.BrokerTeam = &team
	if email := strings.TrimSpace(req.UserEmail); email != "" {
		p.AssignedBrokerEmail = email
	}
	if p.Metadata == nil {
		p.Metadata = &domain.Metadata{}
	}
	p.Metadata.ModifiedDate = s.clock.Now().UTC().Format(time.RFC3339)
	p.Metadata.ModifiedChannel = reassignChannel

	if err := s.store.Placements().Replace(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.RecordReassignment(ctx)
	logger.WithContext(ctx, s.log).Info("placement reassigned",
		zap.String("placement_id", id),
		zap.String("broker_team_id", teamID),
	)
	return p, nil
}

func (s *Service) requireExisting(ctx context.Context, id string) error {
	exists, err := s.store.Placements().Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
	}
	return nil
}

// validate decodes body and checks it against the schema. A non-empty id is
// injected as _id first.
func (s *Service) validate(ctx context.Context, operation string, body []byte, id string) (map[string]any, error) {
	raw, err := schema.DecodeTree(body)
	if err != nil {
		return nil, err
	}
	tree, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: placement must be a JSON object", domain.ErrMalformedDocument)
	}
	if id != "" {
		tree["_id"] = id
	}
	if err := s.validator.Validate(tree); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.metrics.RecordValidationFailure(ctx, operation, len(verr.Violations))
		}
		return nil, err
	}
	return tree, nil
}

// lock takes the per-placement lock. Redis failures are logged and the
// operation proceeds unguarded.
func (s *Service) lock(ctx context.Context, id string) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	key := "placements:lock:" + id
	token, ok, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("placement lock unavailable", zap.String("placement_id", id), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: placement %s is being modified", domain.ErrConcurrentUpdate, id)
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			logger.WithContext(ctx, s.log).Warn("placement lock release failed", zap.String("placement_id", id), zap.Error(err))
		}
	}, nil
}

func requireLinked(p *domain.Placement) error {
	switch {
	case p.Metadata == nil:
		return &domain.MissingEntityError{Field: "_metadata", Label: "Metadata"}
	case p.User == nil:
		return &domain.MissingEntityError{Field: "user", Label: "User"}
	case p.Branch == nil:
		return &domain.MissingEntityError{Field: "branch", Label: "Branch"}
	case p.BrokerTeam == nil:
		return &domain.MissingEntityError{Field: "broker_team", Label: "Broker team"}
	}
	return nil
}

// decodePlacement converts a validated tree into the typed model. A value
// the model cannot hold is reported as a violation at its field path.
func decodePlacement(tree map[string]any) (*domain.Placement, error) {
	b, err := json.Marshal(normalizeNumbers(tree))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	var p domain.Placement
	if err := json.Unmarshal(b, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &domain.ValidationError{Violations: []domain.Violation{{
				Path:    "/" + strings.ReplaceAll(typeErr.Field, ".", "/"),
				Message: fmt.Sprintf("value %s does not fit %s", typeErr.Value, typeErr.Type),
			}}}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	return &p, nil
}

// normalizeNumbers rewrites integral json.Number values such as 2024.0 or
// 2.024e3 in plain integer form so they decode into int fields.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeNumbers(child)
		}
		return t
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return t
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
			return t
		}
		return json.Number(strconv.FormatInt(int64(f), 10))
	default:
		return v
	}
}

var _ domain.Service = (*Service)(nil)
