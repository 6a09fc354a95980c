package policy

// ActionType discriminates what kind of action is being evaluated.
type ActionType string

const (
	ActionDecision  ActionType = "DECISION"
	ActionException ActionType = "EXCEPTION"
)

// FieldResolver resolves a relative field path (the segments after the
// context root) to a value. The second return is false when any segment is
// missing; callers treat that as "condition not met", never as an error.
type FieldResolver interface {
	Resolve(path []string) (any, bool)
}

// Bag is a flat key-value context root. Nested values are plain
// map[string]any, descended one segment at a time.
type Bag map[string]any

// Resolve implements FieldResolver over the bag.
func (b Bag) Resolve(path []string) (any, bool) {
	if len(path) == 0 || b == nil {
		return nil, false
	}
	var cur any = map[string]any(b)
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// CaseContext carries the per-case decision facts (commitment size, risk
// breach counts, flags produced by the risk module, and anything else the
// tenant's workflow attaches).
type CaseContext struct {
	Fields Bag `json:"fields"`
}

// Resolve implements FieldResolver.
func (c *CaseContext) Resolve(path []string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.Fields.Resolve(path)
}

// PolicyContext carries facts about the policy document under action
// (e.g. which module is being amended).
type PolicyContext struct {
	Fields Bag `json:"fields"`
}

// Resolve implements FieldResolver.
func (p *PolicyContext) Resolve(path []string) (any, bool) {
	if p == nil {
		return nil, false
	}
	return p.Fields.Resolve(path)
}

// ProgramContext carries program/fund level facts.
type ProgramContext struct {
	Fields Bag `json:"fields"`
}

// Resolve implements FieldResolver.
func (p *ProgramContext) Resolve(path []string) (any, bool) {
	if p == nil {
		return nil, false
	}
	return p.Fields.Resolve(path)
}

// ExceptionContext carries the breach facts for exception classification
// and blocking. Unlike the bag roots its fields are fixed.
type ExceptionContext struct {
	HardBreach        bool  `json:"hardBreach"`
	Count             int   `json:"count"`
	Items             []any `json:"items,omitempty"`
	HasExceptionDraft bool  `json:"hasExceptionDraft,omitempty"`
}

// Resolve implements FieldResolver over the fixed field set. Unknown names
// resolve to (nil, false) so conditions against them fail closed.
func (e *ExceptionContext) Resolve(path []string) (any, bool) {
	if e == nil || len(path) != 1 {
		return nil, false
	}
	switch path[0] {
	case "hardBreach":
		return e.HardBreach, true
	case "count":
		return e.Count, true
	case "items":
		return e.Items, true
	case "hasExceptionDraft":
		return e.HasExceptionDraft, true
	}
	return nil, false
}

// EvaluationContext is the immutable runtime snapshot a single evaluation
// runs against. Exactly the roots relevant to the action are populated;
// absent roots make every condition against them fail closed.
type EvaluationContext struct {
	ActionType ActionType        `json:"actionType"`
	Case       *CaseContext      `json:"case,omitempty"`
	Policy     *PolicyContext    `json:"policy,omitempty"`
	Program    *ProgramContext   `json:"program,omitempty"`
	Exception  *ExceptionContext `json:"exception,omitempty"`
}

// Root returns the resolver for a named context root. The boolean is false
// for unknown names and for roots not populated on this context.
func (c *EvaluationContext) Root(name string) (FieldResolver, bool) {
	if c == nil {
		return nil, false
	}
	switch name {
	case "case":
		if c.Case != nil {
			return c.Case, true
		}
	case "policy":
		if c.Policy != nil {
			return c.Policy, true
		}
	case "program":
		if c.Program != nil {
			return c.Program, true
		}
	case "exception":
		if c.Exception != nil {
			return c.Exception, true
		}
	}
	return nil, false
}
