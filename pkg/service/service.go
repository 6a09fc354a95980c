// Package service is the orchestration layer: it ties the pure evaluation
// engine and validators to storage, archival, audit, telemetry, and
// per-tenant rate limiting. All governance semantics live below this
// package; service only sequences them and records outcomes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-grc/keel/pkg/archive"
	"github.com/meridian-grc/keel/pkg/audit"
	"github.com/meridian-grc/keel/pkg/canonical"
	"github.com/meridian-grc/keel/pkg/engine"
	"github.com/meridian-grc/keel/pkg/observability"
	"github.com/meridian-grc/keel/pkg/policy"
	"github.com/meridian-grc/keel/pkg/store"
	"github.com/meridian-grc/keel/pkg/tenantcache"
	"github.com/meridian-grc/keel/pkg/validate"
)

// ErrRateLimited is returned when a tenant exceeds its evaluation rate.
var ErrRateLimited = errors.New("service: tenant rate limit exceeded")

// Verdict values recorded on decision records.
const (
	VerdictBlocked = "BLOCKED"
	VerdictClear   = "CLEAR"
)

// Options configures a Service. Zero-value fields fall back to safe
// defaults; Stores is the only required dependency.
type Options struct {
	Stores  *tenantcache.Arena
	Archive archive.Store
	Audit   audit.Logger
	Obs     *observability.Provider
	Limiter *TenantRateLimiter
	Clock   func() time.Time
}

// Service sequences evaluation, validation, and publication for tenants.
type Service struct {
	engine  *engine.Engine
	stores  *tenantcache.Arena
	archive archive.Store
	audit   audit.Logger
	obs     *observability.Provider
	limiter *TenantRateLimiter
	clock   func() time.Time
}

// New constructs a Service. The engine is created internally so every
// caller shares one guard-expression cache.
func New(opts Options) (*Service, error) {
	if opts.Stores == nil {
		return nil, errors.New("service: store arena is required")
	}
	eng, err := engine.New()
	if err != nil {
		return nil, err
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Obs == nil {
		obs, err := observability.New(context.Background(), nil)
		if err != nil {
			return nil, err
		}
		opts.Obs = obs
	}
	return &Service{
		engine:  eng,
		stores:  opts.Stores,
		archive: opts.Archive,
		audit:   opts.Audit,
		obs:     opts.Obs,
		limiter: opts.Limiter,
		clock:   opts.Clock,
	}, nil
}

// Decision is the recorded outcome of a governance evaluation.
type Decision struct {
	DecisionID string                      `json:"decisionId"`
	Verdict    string                      `json:"verdict"`
	PolicyHash string                      `json:"policyHash"`
	Evaluation engine.GovernanceEvaluation `json:"evaluation"`
}

// EvaluateDecision runs the governance evaluation for a decision action
// and records the outcome. Evaluation itself cannot fail; errors come
// only from the surrounding plumbing.
func (s *Service) EvaluateDecision(ctx context.Context, tenantID string, evalCtx *policy.EvaluationContext, pol *policy.GovernancePolicy) (*Decision, error) {
	if s.limiter != nil && !s.limiter.Allow(tenantID) {
		return nil, ErrRateLimited
	}
	start := s.clock()
	ctx, span := s.obs.StartSpan(ctx, "keel.evaluate")
	defer span.End()

	result := s.engine.EvaluateGovernance(evalCtx, pol)

	policyHash, err := canonical.Hash(pol)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	verdict := VerdictClear
	if result.Blocked {
		verdict = VerdictBlocked
	}

	dec := &Decision{
		DecisionID: uuid.New().String(),
		Verdict:    verdict,
		PolicyHash: policyHash,
		Evaluation: result,
	}

	if err := s.record(ctx, tenantID, dec, evalCtx.ActionType); err != nil {
		return nil, err
	}

	s.obs.CountEvaluation(ctx, result.Blocked)
	s.obs.RecordDuration(ctx, "evaluate", s.clock().Sub(start))
	return dec, nil
}

// ExceptionDecision is the recorded outcome of exception classification.
type ExceptionDecision struct {
	DecisionID string                     `json:"decisionId"`
	PolicyHash string                     `json:"policyHash"`
	Evaluation engine.ExceptionEvaluation `json:"evaluation"`
}

// EvaluateException classifies an exception against the policy's severity
// ladder and records the outcome.
func (s *Service) EvaluateException(ctx context.Context, tenantID string, exc *policy.ExceptionContext, pol *policy.GovernancePolicy) (*ExceptionDecision, error) {
	if s.limiter != nil && !s.limiter.Allow(tenantID) {
		return nil, ErrRateLimited
	}
	ctx, span := s.obs.StartSpan(ctx, "keel.evaluate.exception")
	defer span.End()

	result := s.engine.EvaluateExceptionPolicy(exc, pol)

	policyHash, err := canonical.Hash(pol)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	dec := &ExceptionDecision{
		DecisionID: uuid.New().String(),
		PolicyHash: policyHash,
		Evaluation: result,
	}

	detail, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal exception result: %w", err)
	}
	st, err := s.stores.Get(tenantID)
	if err != nil {
		return nil, err
	}
	rec := store.DecisionRecord{
		DecisionID: dec.DecisionID,
		TenantID:   tenantID,
		ActionType: policy.ActionException,
		Verdict:    VerdictClear,
		PolicyHash: policyHash,
		Detail:     detail,
		CreatedAt:  s.clock(),
	}
	if err := st.RecordDecision(ctx, rec); err != nil {
		return nil, err
	}

	class := "unclassified"
	if result.SeverityClass != nil {
		class = result.SeverityClass.Severity
	}
	if err := s.audit.Record(ctx, tenantID, audit.EventException, "classify", dec.DecisionID, map[string]any{
		"severityClass": class,
		"classIndex":    result.ClassIndex,
	}); err != nil {
		return nil, err
	}
	return dec, nil
}

// CanParticipate reports conflict-of-interest standing for a caller's
// roles. Pure passthrough to the engine; nothing is recorded.
func (s *Service) CanParticipate(pol *policy.GovernancePolicy, callerRoles []string, isCaseOwner bool) engine.Participation {
	return s.engine.CanParticipate(pol, callerRoles, isCaseOwner)
}

// ValidateModule validates one module document and records the result.
func (s *Service) ValidateModule(ctx context.Context, tenantID string, kind policy.ModuleKind, payload []byte) (*validate.ValidationResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "keel.validate")
	defer span.End()

	res := validate.ValidateModule(kind, payload)
	s.obs.CountValidation(ctx, string(kind), res.IsValid)

	if res.IsValid {
		st, err := s.stores.Get(tenantID)
		if err != nil {
			return nil, err
		}
		if _, err := st.PutModule(ctx, tenantID, kind, json.RawMessage(payload)); err != nil {
			return nil, err
		}
	}

	if err := s.audit.Record(ctx, tenantID, audit.EventValidation, "validate", string(kind), map[string]any{
		"valid":    res.IsValid,
		"complete": res.IsComplete,
		"errors":   len(res.Errors),
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// PublishResult is the outcome of a baseline publish attempt.
type PublishResult struct {
	Published    bool     `json:"published"`
	BaselineID   string   `json:"baselineId,omitempty"`
	SnapshotHash string   `json:"snapshotHash,omitempty"`
	Blockers     []string `json:"blockers"`
}

// PublishBaseline gates the tenant's current module set and, when the
// gate passes, archives a canonical snapshot and records the baseline.
// A gated-out publish is not an error; the blockers say why.
func (s *Service) PublishBaseline(ctx context.Context, tenantID string) (*PublishResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "keel.publish")
	defer span.End()

	st, err := s.stores.Get(tenantID)
	if err != nil {
		return nil, err
	}
	modules, err := st.CurrentModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	gate := validate.CanPublishBaseline(validate.ModuleSet(modules))
	if !gate.CanPublish {
		s.obs.CountPublish(ctx, false)
		if err := s.audit.Record(ctx, tenantID, audit.EventPublish, "blocked", "", map[string]any{
			"blockers": gate.Blockers,
		}); err != nil {
			return nil, err
		}
		return &PublishResult{Published: false, Blockers: gate.Blockers}, nil
	}

	snapshot, err := canonical.Marshal(modules)
	if err != nil {
		return nil, fmt.Errorf("snapshot baseline: %w", err)
	}

	hash := canonical.HashBytes(snapshot)
	if s.archive != nil {
		if hash, err = s.archive.Put(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("archive baseline: %w", err)
		}
	}

	baselineID := uuid.New().String()
	if err := st.RecordBaseline(ctx, store.Baseline{
		BaselineID:   baselineID,
		TenantID:     tenantID,
		SnapshotHash: hash,
		PublishedAt:  s.clock(),
	}); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, tenantID, audit.EventPublish, "published", baselineID, map[string]any{
		"snapshotHash": hash,
	}); err != nil {
		return nil, err
	}

	s.obs.CountPublish(ctx, true)
	return &PublishResult{Published: true, BaselineID: baselineID, SnapshotHash: hash, Blockers: []string{}}, nil
}

func (s *Service) record(ctx context.Context, tenantID string, dec *Decision, action policy.ActionType) error {
	detail, err := json.Marshal(dec.Evaluation)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	st, err := s.stores.Get(tenantID)
	if err != nil {
		return err
	}
	rec := store.DecisionRecord{
		DecisionID: dec.DecisionID,
		TenantID:   tenantID,
		ActionType: action,
		Verdict:    dec.Verdict,
		PolicyHash: dec.PolicyHash,
		Detail:     detail,
		CreatedAt:  s.clock(),
	}
	if err := st.RecordDecision(ctx, rec); err != nil {
		return err
	}
	return s.audit.Record(ctx, tenantID, audit.EventEvaluation, "evaluate", dec.DecisionID, map[string]any{
		"verdict":    dec.Verdict,
		"policyHash": dec.PolicyHash,
		"tiers":      len(dec.Evaluation.TriggeredTiers),
	})
}
