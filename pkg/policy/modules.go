package policy

// ModuleKind identifies one of the six policy module document kinds that
// together form a publishable baseline.
type ModuleKind string

const (
	ModuleMandates             ModuleKind = "mandates"
	ModuleExclusions           ModuleKind = "exclusions"
	ModuleRiskAppetite         ModuleKind = "risk_appetite"
	ModuleGovernanceThresholds ModuleKind = "governance_thresholds"
	ModuleReporting            ModuleKind = "reporting_obligations"
	ModuleEvidence             ModuleKind = "evidence_admissibility"
)

// AllModuleKinds lists every module kind in baseline order.
func AllModuleKinds() []ModuleKind {
	return []ModuleKind{
		ModuleMandates,
		ModuleExclusions,
		ModuleRiskAppetite,
		ModuleGovernanceThresholds,
		ModuleReporting,
		ModuleEvidence,
	}
}

// Valid reports whether k is a known module kind.
func (k ModuleKind) Valid() bool {
	switch k {
	case ModuleMandates, ModuleExclusions, ModuleRiskAppetite,
		ModuleGovernanceThresholds, ModuleReporting, ModuleEvidence:
		return true
	}
	return false
}

// MandateType enumerates what kind of mandate an item declares.
type MandateType string

const (
	MandatePrimary  MandateType = "PRIMARY"
	MandateThematic MandateType = "THEMATIC"
	MandateCarveout MandateType = "CARVEOUT"
)

// Valid reports whether t is a known mandate type.
func (t MandateType) Valid() bool {
	switch t {
	case MandatePrimary, MandateThematic, MandateCarveout:
		return true
	}
	return false
}

// MandateStatus enumerates a mandate's lifecycle state.
type MandateStatus string

const (
	MandateActive  MandateStatus = "ACTIVE"
	MandateRetired MandateStatus = "RETIRED"
	MandateDraft   MandateStatus = "DRAFT"
)

// Valid reports whether s is a known mandate status.
func (s MandateStatus) Valid() bool {
	switch s {
	case MandateActive, MandateRetired, MandateDraft:
		return true
	}
	return false
}

// HardConstraint is one inviolable bound attached to a mandate.
type HardConstraint struct {
	Dimension string `json:"dimension"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
}

// MandateScope bounds where a mandate applies.
type MandateScope struct {
	Geographies []string `json:"geographies"`
	Domains     []string `json:"domains"`
	Stages      []string `json:"stages"`
}

// Mandate is one investment mandate declaration.
type Mandate struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             MandateType      `json:"type"`
	Status           MandateStatus    `json:"status"`
	Priority         int              `json:"priority"`
	PrimaryObjective string           `json:"primaryObjective"`
	Scope            MandateScope     `json:"scope"`
	HardConstraints  []HardConstraint `json:"hardConstraints,omitempty"`
}

// MandatesDocument is the mandates module payload.
type MandatesDocument struct {
	SchemaVersion string    `json:"schemaVersion"`
	Mandates      []Mandate `json:"mandates"`
}

// ExclusionType enumerates how strictly an exclusion binds.
type ExclusionType string

const (
	ExclusionHard        ExclusionType = "HARD"
	ExclusionConditional ExclusionType = "CONDITIONAL"
)

// Valid reports whether t is a known exclusion type.
func (t ExclusionType) Valid() bool {
	return t == ExclusionHard || t == ExclusionConditional
}

// ExclusionApproval names who may waive a conditional exclusion.
type ExclusionApproval struct {
	CommitteeID string `json:"committeeId,omitempty"`
	RoleID      string `json:"roleId,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Exclusion is one excluded dimension/value declaration.
type Exclusion struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Type             ExclusionType      `json:"type"`
	Dimension        string             `json:"dimension"`
	Values           []string           `json:"values"`
	Rationale        string             `json:"rationale"`
	ApprovalRequired *ExclusionApproval `json:"approvalRequired,omitempty"`
}

// ExclusionsDocument is the exclusions module payload.
type ExclusionsDocument struct {
	SchemaVersion string      `json:"schemaVersion"`
	Exclusions    []Exclusion `json:"exclusions"`
}

// RiskDimension is one tolerance band in the risk appetite statement.
type RiskDimension struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ToleranceMin float64 `json:"toleranceMin"`
	ToleranceMax float64 `json:"toleranceMax"`
}

// RiskAppetiteDocument is the risk appetite module payload.
type RiskAppetiteDocument struct {
	SchemaVersion string          `json:"schemaVersion"`
	FrameworkName string          `json:"frameworkName,omitempty"`
	Dimensions    []RiskDimension `json:"dimensions"`
}

// ReportingPack is one recurring reporting obligation.
type ReportingPack struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Frequency    string   `json:"frequency"`
	Audience     []string `json:"audience"`
	Sections     []string `json:"sections"`
	SignoffRoles []string `json:"signoffRoles"`
}

// ReportingDocument is the reporting obligations module payload.
type ReportingDocument struct {
	SchemaVersion string          `json:"schemaVersion"`
	Packs         []ReportingPack `json:"packs"`
}

// EvidenceCategory enumerates admissible evidence categories.
type EvidenceCategory string

const (
	EvidenceFinancial   EvidenceCategory = "FINANCIAL"
	EvidenceLegal       EvidenceCategory = "LEGAL"
	EvidenceOperational EvidenceCategory = "OPERATIONAL"
	EvidenceMarket      EvidenceCategory = "MARKET"
	EvidenceTechnical   EvidenceCategory = "TECHNICAL"
)

// Valid reports whether c is a known evidence category.
func (c EvidenceCategory) Valid() bool {
	switch c {
	case EvidenceFinancial, EvidenceLegal, EvidenceOperational,
		EvidenceMarket, EvidenceTechnical:
		return true
	}
	return false
}

// EvidenceType is one declared evidence type.
type EvidenceType struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category EvidenceCategory `json:"category"`
}

// EvidenceDocument is the evidence admissibility module payload.
type EvidenceDocument struct {
	SchemaVersion          string         `json:"schemaVersion"`
	AllowedEvidenceTypes   []EvidenceType `json:"allowedEvidenceTypes"`
	ForbiddenEvidenceTypes []EvidenceType `json:"forbiddenEvidenceTypes,omitempty"`
}

// GovernanceDocument is the governance thresholds module payload. It embeds
// the aggregate policy evaluated by the engine.
type GovernanceDocument struct {
	GovernancePolicy
}
