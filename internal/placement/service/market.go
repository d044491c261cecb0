package service

import (
	"context"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db/pagination"
)

func (s *Service) Market(ctx context.Context, req domain.MarketRequest, caller string) (domain.MarketResponse, error) {
	items, err := s.Query(ctx, req.Spec, caller)
	if err != nil {
		return domain.MarketResponse{}, err
	}

	page := pagination.Page{Number: req.PageNumber, Size: req.PageSize}.Normalize()
	window := pagination.Slice(items, page)

	out := make([]domain.MarketPlacement, 0, len(window))
	for i := range window {
		out = append(out, marketView(&window[i]))
	}
	return domain.MarketResponse{
		Placements:   out,
		PageNumber:   page.Number,
		PageSize:     page.Size,
		Count:        int64(len(out)),
		TotalResults: int64(len(items)),
	}, nil
}

func marketView(p *domain.Placement) domain.MarketPlacement {
	view := domain.MarketPlacement{
		PlacementID:   p.ID,
		Metadata:      marketMetadata(p),
		ClientName:    p.ClientName,
		Description:   p.Description,
		EffectiveYear: p.EffectiveYear,
		Status:        p.Status,
		Type:          p.Type,
		Programmes:    make([]domain.MarketProgramme, 0, len(p.Programmes)),
	}
	if team := p.BrokerTeam; team != nil {
		view.BrokerTeam = &domain.MarketBrokerTeam{
			TeamID:      team.XID,
			TeamName:    team.Name,
			CompanyName: team.CompanyName,
			BranchName:  team.BranchName,
		}
	}
	if p.AssignedBrokerEmail != "" {
		view.BrokerUser = &domain.MarketBrokerUser{UserEmail: p.AssignedBrokerEmail}
	}

	var earliest inception
	for i := range p.Programmes {
		prog := &p.Programmes[i]
		first := programmeInception(prog)
		view.Programmes = append(view.Programmes, domain.MarketProgramme{
			ProgrammeID:           prog.ID,
			Description:           prog.Description,
			EarliestInceptionDate: first.raw,
			Status:                prog.StatusCode,
		})
		earliest = earliest.min(first)
	}
	if earliest.key == "" {
		earliest = earliest.min(newInception(p.InceptionDate))
	}
	view.EarliestInceptionDate = earliest.raw
	return view
}

func marketMetadata(p *domain.Placement) *domain.MarketMetadata {
	md := p.Metadata
	if md == nil {
		return nil
	}
	return &domain.MarketMetadata{
		CreatedDate:     md.CreationDate,
		CreatedChannel:  md.CreationChannel,
		CreatedBy:       person(p.User, md.CreationUser),
		ModifiedDate:    md.ModifiedDate,
		ModifiedChannel: md.ModifiedChannel,
		ModifiedBy:      person(p.User, md.ModifiedUser),
	}
}

// person resolves a metadata user id, borrowing names from the owner when
// the ids match.
func person(owner *domain.User, id string) *domain.PersonRef {
	if id == "" {
		return nil
	}
	ref := &domain.PersonRef{XID: id}
	if owner != nil && owner.XID == id {
		ref.FirstName = owner.FirstName
		ref.LastName = owner.LastName
	}
	return ref
}

// programmeInception is the earliest of the programme's own inception date
// and those of its sections.
func programmeInception(prog *domain.Programme) inception {
	first := newInception(prog.InceptionDate)
	for i := range prog.Contracts {
		for j := range prog.Contracts[i].Sections {
			first = first.min(newInception(prog.Contracts[i].Sections[j].InceptionDate))
		}
	}
	return first
}

// inception pairs a raw date with its sortable key. The zero value means no
// parseable date.
type inception struct {
	raw string
	key string
}

func newInception(raw string) inception {
	key, err := domain.InceptionKey(raw)
	if err != nil {
		return inception{}
	}
	return inception{raw: raw, key: key}
}

func (a inception) min(b inception) inception {
	switch {
	case b.key == "":
		return a
	case a.key == "", b.key < a.key:
		return b
	default:
		return a
	}
}
