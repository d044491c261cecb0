package domain

import "context"

type CollectionName string

const (
	CollectionPlacements         CollectionName = "placements"
	CollectionMetadata           CollectionName = "metadata"
	CollectionUsers              CollectionName = "users"
	CollectionBranches           CollectionName = "branches"
	CollectionBrokerTeams        CollectionName = "broker_teams"
	CollectionOrganisations      CollectionName = "organisations"
	CollectionCompanies          CollectionName = "companies"
	CollectionUnderwriterPools   CollectionName = "underwriter_pools"
	CollectionDocuments          CollectionName = "documents"
	CollectionProgrammes         CollectionName = "programmes"
	CollectionContracts          CollectionName = "contracts"
	CollectionSections           CollectionName = "sections"
	CollectionRisks              CollectionName = "risks"
	CollectionInsureds           CollectionName = "insureds"
	CollectionLimits             CollectionName = "limits"
	CollectionPremiums           CollectionName = "premiums"
	CollectionDeductibles        CollectionName = "deductibles"
	CollectionExcesses           CollectionName = "excesses"
	CollectionSubmissionRequests CollectionName = "submission_requests"
)

// SubCollections lists every collection except placements, in cascade order.
var SubCollections = []CollectionName{
	CollectionMetadata,
	CollectionUsers,
	CollectionBranches,
	CollectionBrokerTeams,
	CollectionOrganisations,
	CollectionCompanies,
	CollectionUnderwriterPools,
	CollectionDocuments,
	CollectionRisks,
	CollectionInsureds,
	CollectionLimits,
	CollectionPremiums,
	CollectionDeductibles,
	CollectionExcesses,
	CollectionSections,
	CollectionContracts,
	CollectionProgrammes,
	CollectionSubmissionRequests,
}

// Collection stores independently addressable sub-documents. Writes are
// atomic per document only.
type Collection interface {
	Name() CollectionName
	// Save upserts doc under id and returns the id used. An empty id is
	// replaced by a store-assigned one.
	Save(ctx context.Context, id string, doc any) (string, error)
	// FindByID decodes the document into out or returns ErrNotFound.
	FindByID(ctx context.Context, id string, out any) error
}

// PlacementRepository is the root collection.
type PlacementRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// Create writes p only if its id is unused and assigns an id when empty.
	// An existing id yields a *DuplicateError.
	Create(ctx context.Context, p *Placement) error
	// Replace overwrites an existing document or returns a *NotFoundError.
	Replace(ctx context.Context, p *Placement) error
	// FindByID returns nil when the id is unknown.
	FindByID(ctx context.Context, id string) (*Placement, error)
	FindAll(ctx context.Context) ([]Placement, error)
	Find(ctx context.Context, q Query) ([]Placement, error)
	Delete(ctx context.Context, id string) error
}

// Store is the document store the aggregate is persisted through.
type Store interface {
	Placements() PlacementRepository
	Collection(name CollectionName) Collection
}
