package domain

// MarketPlacement is the summary view of a placement offered to markets.
type MarketPlacement struct {
	PlacementID           string            `json:"placement_id"`
	Metadata              *MarketMetadata   `json:"metadata,omitempty"`
	BrokerTeam            *MarketBrokerTeam `json:"broker_team,omitempty"`
	BrokerUser            *MarketBrokerUser `json:"broker_user,omitempty"`
	ClientName            string            `json:"client_name"`
	Description           string            `json:"description"`
	EffectiveYear         *int              `json:"effective_year,omitempty"`
	EarliestInceptionDate string            `json:"earliest_inception_date,omitempty"`
	Status                string            `json:"status"`
	Type                  string            `json:"type"`
	Programmes            []MarketProgramme `json:"programmes"`
}

type MarketMetadata struct {
	CreatedDate     string     `json:"created_date"`
	CreatedChannel  string     `json:"created_channel"`
	CreatedBy       *PersonRef `json:"created_by,omitempty"`
	ModifiedDate    string     `json:"modified_date"`
	ModifiedChannel string     `json:"modified_channel"`
	ModifiedBy      *PersonRef `json:"modified_by,omitempty"`
}

type MarketBrokerTeam struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	CompanyName string `json:"company_name,omitempty"`
	BranchName  string `json:"branch_name,omitempty"`
}

type MarketBrokerUser struct {
	UserEmail string `json:"user_email"`
}

type MarketProgramme struct {
	ProgrammeID           string `json:"programme_id"`
	Description           string `json:"description"`
	EarliestInceptionDate string `json:"earliest_inception_date,omitempty"`
	Status                string `json:"status"`
}

type MarketResponse struct {
	Placements   []MarketPlacement `json:"placements"`
	PageNumber   int               `json:"page_number"`
	PageSize     int               `json:"page_size"`
	Count        int64             `json:"count"`
	TotalResults int64             `json:"total_results"`
}
