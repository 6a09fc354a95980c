package service

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/meridian-grc/keel/pkg/archive"
	"github.com/meridian-grc/keel/pkg/audit"
	"github.com/meridian-grc/keel/pkg/policy"
	"github.com/meridian-grc/keel/pkg/store"
	"github.com/meridian-grc/keel/pkg/tenantcache"
)

type harness struct {
	svc   *Service
	mock  sqlmock.Sqlmock
	audit *bytes.Buffer
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.MatchExpectationsInOrder(false)

	// The migration statement only runs when a tenant store is actually
	// opened, so the expectation is registered lazily with it.
	arena, err := tenantcache.New(2, func(string) (*store.Store, error) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS module_documents").
			WillReturnResult(sqlmock.NewResult(0, 0))
		return store.NewWithDB(db)
	})
	require.NoError(t, err)
	t.Cleanup(arena.Close)

	var auditBuf bytes.Buffer
	opts.Stores = arena
	opts.Audit = audit.NewLoggerWithWriter(&auditBuf)
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	}

	svc, err := New(opts)
	require.NoError(t, err)
	return &harness{svc: svc, mock: mock, audit: &auditBuf}
}

func decisionPolicy() *policy.GovernancePolicy {
	return &policy.GovernancePolicy{
		SchemaVersion: "1.0.0",
		ApprovalTiers: []policy.ApprovalTier{
			{
				ID:   "tier-1",
				Name: "Standard",
				Conditions: []policy.Condition{
					{Field: "case.commitmentMm", Operator: policy.OpGT, Value: 10},
				},
				RequiredApprovals: []policy.CommitteeApproval{{CommitteeID: "ic", MinYesVotes: 3}},
			},
		},
	}
}

// TestEvaluateDecisionRecords evaluates, persists a decision record, and
// emits an audit event.
func TestEvaluateDecisionRecords(t *testing.T) {
	h := newHarness(t, Options{})
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	evalCtx := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Case:       &policy.CaseContext{Fields: policy.Bag{"commitmentMm": 25.0}},
	}

	dec, err := h.svc.EvaluateDecision(context.Background(), "acme", evalCtx, decisionPolicy())
	require.NoError(t, err)
	require.Equal(t, VerdictClear, dec.Verdict)
	require.NotEmpty(t, dec.DecisionID)
	require.Regexp(t, `^sha256:[0-9a-f]{64}$`, dec.PolicyHash)
	require.Len(t, dec.Evaluation.TriggeredTiers, 1)

	require.Contains(t, h.audit.String(), "AUDIT: ")
	require.Contains(t, h.audit.String(), dec.DecisionID)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

// TestEvaluateDecisionBlockedVerdict maps a blocked evaluation to the
// BLOCKED verdict.
func TestEvaluateDecisionBlockedVerdict(t *testing.T) {
	h := newHarness(t, Options{})
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	evalCtx := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Exception:  &policy.ExceptionContext{HardBreach: true},
	}

	dec, err := h.svc.EvaluateDecision(context.Background(), "acme", evalCtx, decisionPolicy())
	require.NoError(t, err)
	require.Equal(t, VerdictBlocked, dec.Verdict)
	require.True(t, dec.Evaluation.Blocked)
}

// TestEvaluateDecisionRateLimited rejects calls beyond the per-tenant
// rate allowance without touching storage.
func TestEvaluateDecisionRateLimited(t *testing.T) {
	limiter := NewTenantRateLimiter(1, 1)
	defer limiter.Close()

	h := newHarness(t, Options{Limiter: limiter})
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	evalCtx := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Case:       &policy.CaseContext{Fields: policy.Bag{"commitmentMm": 25.0}},
	}

	_, err := h.svc.EvaluateDecision(context.Background(), "acme", evalCtx, decisionPolicy())
	require.NoError(t, err)

	_, err = h.svc.EvaluateDecision(context.Background(), "acme", evalCtx, decisionPolicy())
	require.ErrorIs(t, err, ErrRateLimited)
}

// TestEvaluateException classifies and records without ever blocking.
func TestEvaluateException(t *testing.T) {
	h := newHarness(t, Options{})
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pol := &policy.GovernancePolicy{
		Exceptions: &policy.ExceptionPolicy{
			ExpiryDefaultDays: 90,
			ExceptionSeverity: []policy.ExceptionSeverityClass{
				{
					Severity:   "material",
					Conditions: []policy.Condition{{Field: "exception.count", Operator: policy.OpGTE, Value: 1}},
				},
			},
		},
	}

	dec, err := h.svc.EvaluateException(context.Background(), "acme", &policy.ExceptionContext{Count: 2}, pol)
	require.NoError(t, err)
	require.False(t, dec.Evaluation.Blocked)
	require.Equal(t, "material", dec.Evaluation.SeverityClass.Severity)
	require.Contains(t, h.audit.String(), "material")
}

// TestValidateModuleStoresValidDocument persists only documents that
// validate.
func TestValidateModuleStoresValidDocument(t *testing.T) {
	h := newHarness(t, Options{})
	h.mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(version) FROM module_documents")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO module_documents")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := h.svc.ValidateModule(context.Background(), "acme", policy.ModuleExclusions,
		[]byte(`{"schemaVersion":"1.0.0","exclusions":[]}`))
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

// TestValidateModuleRejectsWithoutStoring returns the result for an
// invalid document and performs no writes.
func TestValidateModuleRejectsWithoutStoring(t *testing.T) {
	h := newHarness(t, Options{})

	res, err := h.svc.ValidateModule(context.Background(), "acme", policy.ModuleExclusions, []byte(`{{{`))
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

// TestPublishBaselineBlocked reports blockers without archiving when the
// gate fails.
func TestPublishBaselineBlocked(t *testing.T) {
	h := newHarness(t, Options{})
	for range policy.AllModuleKinds() {
		h.mock.ExpectQuery(regexp.QuoteMeta("SELECT version, body, updated_at FROM module_documents")).
			WillReturnRows(sqlmock.NewRows([]string{"version", "body", "updated_at"}))
	}

	res, err := h.svc.PublishBaseline(context.Background(), "acme")
	require.NoError(t, err)
	require.False(t, res.Published)
	require.NotEmpty(t, res.Blockers)
	require.Contains(t, h.audit.String(), "blocked")
}

// TestPublishBaselineArchivesSnapshot publishes a passing module set,
// archives the canonical snapshot, and records the baseline.
func TestPublishBaselineArchivesSnapshot(t *testing.T) {
	arch, err := archive.NewFileStore(t.TempDir())
	require.NoError(t, err)

	h := newHarness(t, Options{Archive: arch})

	mandates, err := json.Marshal(&policy.MandatesDocument{
		SchemaVersion: "1.0.0",
		Mandates: []policy.Mandate{{
			ID:               "m-1",
			Name:             "Core",
			Type:             policy.MandatePrimary,
			Status:           policy.MandateActive,
			Priority:         1,
			PrimaryObjective: "Long-term value",
			Scope: policy.MandateScope{
				Geographies: []string{"EU"},
				Domains:     []string{"energy"},
				Stages:      []string{"brownfield"},
			},
		}},
	})
	require.NoError(t, err)

	governance, err := json.Marshal(&policy.GovernanceDocument{GovernancePolicy: policy.GovernancePolicy{
		SchemaVersion: "1.0.0",
		Roles:         []policy.Role{{ID: "cio", Name: "CIO"}},
		Committees: []policy.Committee{{
			ID: "ic", Name: "IC", RoleIDs: []string{"cio"},
			Quorum: policy.Quorum{MinVotes: 3, MinYesVotes: 2, VoteType: policy.VoteMajority},
		}},
		ApprovalTiers: []policy.ApprovalTier{{
			ID: "tier-1", Name: "Standard",
			Conditions:        []policy.Condition{{Field: "case.commitmentMm", Operator: policy.OpGT, Value: 10}},
			RequiredApprovals: []policy.CommitteeApproval{{CommitteeID: "ic", MinYesVotes: 2}},
		}},
		Exceptions: &policy.ExceptionPolicy{ExpiryDefaultDays: 90},
		Conflicts:  &policy.ConflictsPolicy{RequiresDisclosure: true},
		Audit: &policy.AuditPolicy{
			DecisionRecordRequired: true,
			SignoffCapture:         policy.CaptureElectronic,
			RetainVersions:         true,
		},
	}})
	require.NoError(t, err)

	bodies := map[policy.ModuleKind][]byte{
		policy.ModuleMandates:             mandates,
		policy.ModuleGovernanceThresholds: governance,
	}
	for _, kind := range policy.AllModuleKinds() {
		rows := sqlmock.NewRows([]string{"version", "body", "updated_at"})
		if body, ok := bodies[kind]; ok {
			rows.AddRow(1, string(body), time.Now().UTC().Format(time.RFC3339Nano))
		}
		h.mock.ExpectQuery(regexp.QuoteMeta("SELECT version, body, updated_at FROM module_documents")).
			WillReturnRows(rows)
	}
	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO baselines")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := h.svc.PublishBaseline(context.Background(), "acme")
	require.NoError(t, err)
	require.True(t, res.Published, "blockers: %v", res.Blockers)
	require.NotEmpty(t, res.BaselineID)

	snapshot, err := arch.Get(context.Background(), res.SnapshotHash)
	require.NoError(t, err)
	require.NotEmpty(t, snapshot)
	require.Contains(t, h.audit.String(), res.BaselineID)
}
