// Package policy defines the governance policy document model.
//
// Documents are authored and edited outside the engine and handed in as
// immutable snapshots; nothing in this package mutates them. The JSON tags
// are the wire contract with the document store and the editing surface.
package policy

// VoteType enumerates how a committee counts a vote.
type VoteType string

const (
	VoteUnanimous     VoteType = "UNANIMOUS"
	VoteMajority      VoteType = "MAJORITY"
	VoteSupermajority VoteType = "SUPERMAJORITY"
	VoteSimple        VoteType = "SIMPLE"
)

// Valid reports whether v is a known vote type.
func (v VoteType) Valid() bool {
	switch v {
	case VoteUnanimous, VoteMajority, VoteSupermajority, VoteSimple:
		return true
	}
	return false
}

// Operator enumerates the condition predicate operators.
type Operator string

const (
	OpEquals    Operator = "EQUALS"
	OpNotEquals Operator = "NOT_EQUALS"
	OpGT        Operator = "GT"
	OpGTE       Operator = "GTE"
	OpLT        Operator = "LT"
	OpLTE       Operator = "LTE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT_IN"
	OpContains  Operator = "CONTAINS"
)

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpGT, OpGTE, OpLT, OpLTE, OpIn, OpNotIn, OpContains:
		return true
	}
	return false
}

// LogicOp tags how a condition joins its group.
type LogicOp string

const (
	LogicAnd LogicOp = "AND"
	LogicOr  LogicOp = "OR"
)

// Role is a named governance function (e.g. CIO, General Counsel).
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CaseOwnerRole is the reserved pseudo-role for the owner of the case under
// decision. It may appear in blockedRoles without being declared in the
// document's role set.
const CaseOwnerRole = "CASE_OWNER"

// Quorum is the vote threshold a committee must meet.
// Invariant: MinYesVotes <= MinVotes, both positive.
type Quorum struct {
	MinVotes    int      `json:"minVotes"`
	MinYesVotes int      `json:"minYesVotes"`
	VoteType    VoteType `json:"voteType"`
}

// Committee is a voting body composed of roles.
type Committee struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	RoleIDs []string `json:"roleIds"`
	Quorum  Quorum   `json:"quorum"`
}

// Condition is one predicate over the runtime evaluation context.
// Field is a dotted path whose first segment names the context root
// (case, policy, program, exception).
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
	Logic    LogicOp  `json:"logic,omitempty"`
}

// CommitteeApproval is one committee vote requirement attached to a tier.
type CommitteeApproval struct {
	CommitteeID string `json:"committeeId"`
	MinYesVotes int    `json:"minYesVotes"`
}

// Signoff is one role signoff obligation attached to a tier.
type Signoff struct {
	RoleID   string `json:"roleId"`
	Required bool   `json:"required"`
}

// ApprovalTier maps a condition group to the approvals and signoffs it
// demands when triggered. GuardExpression, when non-empty, is a CEL source
// that further narrows the tier; it can never widen matching.
type ApprovalTier struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Conditions        []Condition         `json:"conditions"`
	RequiredApprovals []CommitteeApproval `json:"requiredApprovals"`
	RequiredSignoffs  []Signoff           `json:"requiredSignoffs"`
	GuardExpression   string              `json:"guardExpression,omitempty"`
	TimeLimitHours    int                 `json:"timeLimitHours,omitempty"`
}

// ExceptionSeverityClass is one severity bucket for breach exceptions.
// Classes are evaluated in document order; the first match wins.
type ExceptionSeverityClass struct {
	Severity          string              `json:"severity"`
	Conditions        []Condition         `json:"conditions"`
	RequiredApprovals []CommitteeApproval `json:"requiredApprovals"`
	RequiredSignoffs  []Signoff           `json:"requiredSignoffs"`
}

// ExceptionPolicy governs how breach exceptions are classified and expire.
type ExceptionPolicy struct {
	RequiresExceptionRecord bool                     `json:"requiresExceptionRecord"`
	ExceptionSeverity       []ExceptionSeverityClass `json:"exceptionSeverity"`
	ExpiryDefaultDays       int                      `json:"expiryDefaultDays"`
	AllowExtensions         bool                     `json:"allowExtensions,omitempty"`
	MaxExtensions           int                      `json:"maxExtensions,omitempty"`
}

// ConflictsPolicy governs conflict-of-interest participation rules.
type ConflictsPolicy struct {
	RequiresDisclosure   bool     `json:"requiresDisclosure"`
	RecusalRequired      bool     `json:"recusalRequired"`
	BlockedRoles         []string `json:"blockedRoles"`
	DisclosureScope      string   `json:"disclosureScope,omitempty"`
	CoolingOffPeriodDays int      `json:"coolingOffPeriodDays,omitempty"`
}

// SignoffCapture enumerates how signoffs are captured for the record.
type SignoffCapture string

const (
	CaptureElectronic SignoffCapture = "ELECTRONIC"
	CaptureManual     SignoffCapture = "MANUAL"
	CaptureBoth       SignoffCapture = "BOTH"
)

// Valid reports whether c is a known capture mode.
func (c SignoffCapture) Valid() bool {
	switch c {
	case CaptureElectronic, CaptureManual, CaptureBoth:
		return true
	}
	return false
}

// AuditPolicy governs decision-record capture and retention.
type AuditPolicy struct {
	DecisionRecordRequired bool           `json:"decisionRecordRequired"`
	SignoffCapture         SignoffCapture `json:"signoffCapture"`
	RetainVersions         bool           `json:"retainVersions"`
}

// GovernancePolicy is the aggregate root handed to the engine for every
// evaluation. The engine treats it as read-only.
type GovernancePolicy struct {
	SchemaVersion string           `json:"schemaVersion"`
	Roles         []Role           `json:"roles"`
	Committees    []Committee      `json:"committees"`
	ApprovalTiers []ApprovalTier   `json:"approvalTiers"`
	Exceptions    *ExceptionPolicy `json:"exceptionPolicy,omitempty"`
	Conflicts     *ConflictsPolicy `json:"conflictsPolicy,omitempty"`
	Audit         *AuditPolicy     `json:"audit,omitempty"`
}
