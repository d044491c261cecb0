package domain

// Placement is the aggregate root. Every nested entity below it is persisted
// in its own collection before the placement document itself is written.
type Placement struct {
	ID                  string              `json:"_id,omitempty"`
	Metadata            *Metadata           `json:"_metadata,omitempty"`
	User                *User               `json:"user,omitempty"`
	PlacementReadAccess []string            `json:"placement_read_access,omitempty"`
	Branch              *Branch             `json:"branch,omitempty"`
	ClientName          string              `json:"client_name,omitempty"`
	Description         string              `json:"description,omitempty"`
	EffectiveYear       *int                `json:"effective_year,omitempty"`
	BrokerTeam          *BrokerTeam         `json:"broker_team,omitempty"`
	InceptionDate       string              `json:"inception_date,omitempty"`
	Type                string              `json:"type,omitempty"`
	Status              string              `json:"status,omitempty"`
	UnderwriterPool     []UnderwriterPool   `json:"underwriter_pool,omitempty"`
	Documents           []Document          `json:"documents,omitempty"`
	Programmes          []Programme         `json:"programmes,omitempty"`
	SubmissionRequests  []SubmissionRequest `json:"submission_requests,omitempty"`
	SubmissionState     *SubmissionState    `json:"submission_state,omitempty"`
	AssignedBrokerEmail string              `json:"assigned_broker_email,omitempty"`
}

type Programme struct {
	ID              string           `json:"_id,omitempty"`
	BrokerTeam      *BrokerTeam      `json:"broker_team,omitempty"`
	User            *User            `json:"user,omitempty"`
	Description     string           `json:"description,omitempty"`
	InceptionDate   string           `json:"inception_date,omitempty"`
	StatusCode      string           `json:"status_code,omitempty"`
	SequenceNumber  *int             `json:"sequence_number,omitempty"`
	Metadata        *Metadata        `json:"_metadata,omitempty"`
	Documents       []Document       `json:"documents,omitempty"`
	Contracts       []Contract       `json:"contracts,omitempty"`
	SubmissionState *SubmissionState `json:"submission_state,omitempty"`
}

type Contract struct {
	ID                      string           `json:"_id,omitempty"`
	BrokerTeam              *BrokerTeam      `json:"broker_team,omitempty"`
	User                    *User            `json:"user,omitempty"`
	BrokerCode              string           `json:"broker_code,omitempty"`
	BrokerContractRef       string           `json:"broker_contract_ref,omitempty"`
	ContractUMR             string           `json:"contract_umr,omitempty"`
	SequenceNumber          *int             `json:"sequence_number,omitempty"`
	Description             string           `json:"description,omitempty"`
	ContractType            string           `json:"contract_type,omitempty"`
	CoverType               string           `json:"cover_type,omitempty"`
	Status                  string           `json:"status,omitempty"`
	SubStatus               string           `json:"sub_status,omitempty"`
	Version                 *int             `json:"version,omitempty"`
	Metadata                *Metadata        `json:"_metadata,omitempty"`
	Insureds                []Insured        `json:"insureds,omitempty"`
	Documents               []Document       `json:"documents,omitempty"`
	Sections                []Section        `json:"sections,omitempty"`
	StatusFlags             []string         `json:"status_flags,omitempty"`
	UsesDigitalContract     *bool            `json:"uses_digital_contract,omitempty"`
	CancelAndReplaceAllowed *bool            `json:"cancel_and_replace_allowed,omitempty"`
	BackloadIndicator       *bool            `json:"backload_indicator,omitempty"`
	BackloadReasonCode      string           `json:"backload_reason_code,omitempty"`
	BackloadDescription     string           `json:"backload_description,omitempty"`
	SubmissionState         *SubmissionState `json:"submission_state,omitempty"`
}

type Section struct {
	ID                            string              `json:"_id,omitempty"`
	Reference                     string              `json:"reference,omitempty"`
	Description                   string              `json:"description,omitempty"`
	SequenceNumber                *int                `json:"sequence_number,omitempty"`
	Status                        string              `json:"status,omitempty"`
	PeriodType                    string              `json:"period_type,omitempty"`
	ClassificationType            string              `json:"classification_type,omitempty"`
	CoverType                     string              `json:"cover_type,omitempty"`
	ProductCode                   string              `json:"product_code,omitempty"`
	InceptionDate                 string              `json:"inception_date,omitempty"`
	ExpiryDate                    string              `json:"expiry_date,omitempty"`
	PeriodDurationNumber          *int                `json:"period_duration_number,omitempty"`
	DurationUnitTypeCode          string              `json:"duration_unit_type_code,omitempty"`
	PeriodQualifierTypeCode       string              `json:"period_qualifier_type_code,omitempty"`
	OrderPercentage               *float64            `json:"order_percentage,omitempty"`
	LineOfBusiness                string              `json:"line_of_business,omitempty"`
	ClassOfBusiness               string              `json:"class_of_business,omitempty"`
	SettlementDueDate             string              `json:"settlement_due_date,omitempty"`
	InstallmentPeriodOfCredit     *int                `json:"installment_period_of_credit,omitempty"`
	AdjustmentPeriodOfCredit      *int                `json:"adjustment_period_of_credit,omitempty"`
	StampPermissionType           string              `json:"stamp_permission_type,omitempty"`
	GeographicCoverage            *GeographicCoverage `json:"geographic_coverage,omitempty"`
	GeographicCoverageDescription string              `json:"geographic_coverage_description,omitempty"`
	BindingInformation            *BindingInformation `json:"binding_information,omitempty"`
	Metadata                      *Metadata           `json:"_metadata,omitempty"`
	Risks                         []Risk              `json:"risks,omitempty"`
	Limits                        []Limit             `json:"limits,omitempty"`
	Excesses                      []Excess            `json:"excesses,omitempty"`
	Deductibles                   []Deductible        `json:"deductibles,omitempty"`
	Premiums                      []Premium           `json:"premiums,omitempty"`
	Insureds                      []Insured           `json:"insureds,omitempty"`
	Documents                     []Document          `json:"documents,omitempty"`
	StatusFlags                   []string            `json:"status_flags,omitempty"`
	FacilityUsage                 []string            `json:"facility_usage,omitempty"`
	SubmissionState               *SubmissionState    `json:"submission_state,omitempty"`
}

type BindingInformation struct {
	WrittenLineType           string   `json:"written_line_type,omitempty"`
	CurrencyCode              string   `json:"currency_code,omitempty"`
	WrittenLineBasis          string   `json:"written_line_basis,omitempty"`
	SignedLineBasis           string   `json:"signed_line_basis,omitempty"`
	SignedDownDecimalPlaces   *int     `json:"signed_down_decimal_places,omitempty"`
	SignedDownOrderPercentage *float64 `json:"signed_down_order_percentage,omitempty"`
}

type GeographicCoverage struct {
	Type string `json:"type,omitempty"`
	Code string `json:"code,omitempty"`
}

// Financial leaves. Each one carries monetary terms plus the basis the
// amount or rate applies to.

type Risk struct {
	ID           string   `json:"_id,omitempty"`
	RiskCode     string   `json:"risk_code,omitempty"`
	CurrencyCode string   `json:"currency_code,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	Rate         *float64 `json:"rate,omitempty"`
	BasisRefs    []string `json:"basis_refs,omitempty"`
}

type Limit struct {
	ID            string   `json:"_id,omitempty"`
	TypeRef       string   `json:"type_ref,omitempty"`
	CurrencyCode  string   `json:"currency_code,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	BasisRefs     []string `json:"basis_refs,omitempty"`
	Specification string   `json:"specification,omitempty"`
}

type Excess struct {
	ID            string   `json:"_id,omitempty"`
	TypeRef       string   `json:"type_ref,omitempty"`
	Type          string   `json:"type,omitempty"`
	CurrencyCode  string   `json:"currency_code,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"`
	BasisRefs     []string `json:"basis_refs,omitempty"`
	BasisTypeCode string   `json:"basis_type_code,omitempty"`
	Specification string   `json:"specification,omitempty"`
}

type Deductible struct {
	ID            string   `json:"_id,omitempty"`
	TypeRef       string   `json:"type_ref,omitempty"`
	Type          string   `json:"type,omitempty"`
	CurrencyCode  string   `json:"currency_code,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"`
	BasisRefs     []string `json:"basis_refs,omitempty"`
	BasisTypeCode string   `json:"basis_type_code,omitempty"`
	Specification string   `json:"specification,omitempty"`
}

type Premium struct {
	ID                       string   `json:"_id,omitempty"`
	TypeRef                  string   `json:"type_ref,omitempty"`
	BasisRefs                []string `json:"basis_refs,omitempty"`
	CurrencyCode             string   `json:"currency_code,omitempty"`
	Amount                   *float64 `json:"amount,omitempty"`
	Rate                     *float64 `json:"rate,omitempty"`
	RateUnitCode             string   `json:"rate_unit_code,omitempty"`
	DiscountAppliedIndicator string   `json:"discount_applied_indicator,omitempty"`
}

const (
	InsuredRoleInsured     = "insured"
	InsuredRoleReinsured   = "reinsured"
	InsuredRoleRetrocedent = "retrocedent"
)

type Insured struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

const (
	ContractTypeDirectInsurance = "direct_insurance_contract"
	ContractTypeReinsurance     = "reinsurance_contract"
	ContractTypeRetrocession    = "retrocession_contract"
)

// Metadata is required on every versioned entity. User fields hold user ids.
type Metadata struct {
	CreationDate    string `json:"creation_date,omitempty"`
	CreationChannel string `json:"creation_channel,omitempty"`
	CreationUser    string `json:"creation_user,omitempty"`
	ModifiedDate    string `json:"modified_date,omitempty"`
	ModifiedChannel string `json:"modified_channel,omitempty"`
	ModifiedUser    string `json:"modified_user,omitempty"`
}

type User struct {
	XID              string `json:"_xid,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	OrganisationName string `json:"organisation_name,omitempty"`
	CompanyName      string `json:"company_name,omitempty"`
	CompanyXID       string `json:"company_xid,omitempty"`
	OrganisationXID  string `json:"organisation_xid,omitempty"`
}

type Branch struct {
	XID  string `json:"_xid,omitempty"`
	Name string `json:"name,omitempty"`
}

// BrokerTeam is embedded on placements, programmes and contracts. The
// company and branch names are only populated on the broker_teams directory
// entries used by reassignment.
type BrokerTeam struct {
	XID         string `json:"_xid,omitempty"`
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	BranchName  string `json:"branch_name,omitempty"`
}

type UnderwriterPool struct {
	XID          string        `json:"_xid,omitempty"`
	FirstName    string        `json:"first_name,omitempty"`
	LastName     string        `json:"last_name,omitempty"`
	Organisation *Organisation `json:"organisation,omitempty"`
	Company      *Company      `json:"company,omitempty"`
}

type Organisation struct {
	XID  string `json:"_xid,omitempty"`
	Name string `json:"name,omitempty"`
}

type Company struct {
	XID  string `json:"_xid,omitempty"`
	Name string `json:"name,omitempty"`
}

type Document struct {
	XID             string           `json:"_xid,omitempty"`
	Name            string           `json:"name,omitempty"`
	SubmissionState *SubmissionState `json:"submission_state,omitempty"`
}

// SubmissionState tracks one details block per workflow stage.
type SubmissionState struct {
	FirmOrder             *SubmissionStateDetails `json:"firm_order,omitempty"`
	Correction            *SubmissionStateDetails `json:"correction,omitempty"`
	AdditionalInformation *SubmissionStateDetails `json:"additional_information,omitempty"`
	Quote                 *SubmissionStateDetails `json:"quote,omitempty"`
}

type SubmissionStateDetails struct {
	Selected           *bool    `json:"selected,omitempty"`
	Locked             *bool    `json:"locked,omitempty"`
	ActiveLocks        *int     `json:"active_locks,omitempty"`
	SubmissionRequests []string `json:"submission_requests,omitempty"`
}

type SubmissionRequest struct {
	ID               string      `json:"_id,omitempty"`
	Metadata         *Metadata   `json:"_metadata,omitempty"`
	Type             string      `json:"type,omitempty"`
	Status           string      `json:"status,omitempty"`
	Name             string      `json:"name,omitempty"`
	GeneralMessage   string      `json:"general_message,omitempty"`
	CreatedDate      string      `json:"created_date,omitempty"`
	SentDate         string      `json:"sent_date,omitempty"`
	CreatedBy        *PersonRef  `json:"created_by,omitempty"`
	SentBy           *PersonRef  `json:"sent_by,omitempty"`
	BrokerTeam       *BrokerTeam `json:"broker_team,omitempty"`
	TotalSubmissions *int        `json:"total_submissions,omitempty"`
	Approval         []Approval  `json:"approval,omitempty"`
}

type Approval struct {
	ID       string     `json:"_id,omitempty"`
	User     *PersonRef `json:"user,omitempty"`
	SentDate string     `json:"sent_date,omitempty"`
	Message  string     `json:"message,omitempty"`
	Status   string     `json:"status,omitempty"`
}

type PersonRef struct {
	XID       string `json:"_xid,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
