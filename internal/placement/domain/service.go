package domain

import "context"

type ReassignRequest struct {
	TeamID    string
	UserEmail string
}

type MarketRequest struct {
	Spec       QuerySpec
	PageNumber int
	PageSize   int
}

// Service is the placement use-case surface consumed by the HTTP layer.
type Service interface {
	// Submit validates a raw placement document and cascades it into the
	// store.
	Submit(ctx context.Context, body []byte) (*Placement, error)
	// Replace validates a raw document and overwrites the root placement.
	Replace(ctx context.Context, id string, body []byte) (*Placement, error)

	Save(ctx context.Context, p *Placement) (*Placement, error)
	Update(ctx context.Context, id string, p *Placement) (*Placement, error)
	FindByID(ctx context.Context, id string) (*Placement, error)
	FindAll(ctx context.Context) ([]Placement, error)
	DeleteByID(ctx context.Context, id string) error

	Query(ctx context.Context, spec QuerySpec, caller string) ([]Placement, error)
	Market(ctx context.Context, req MarketRequest, caller string) (MarketResponse, error)
	Reassign(ctx context.Context, id string, req ReassignRequest) (*Placement, error)
}

// Validator checks a generic document tree against the structural schema.
type Validator interface {
	Validate(tree any) error
}
