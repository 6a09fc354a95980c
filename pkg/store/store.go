// Package store persists policy module documents, published baselines, and
// decision records. The engine never imports it; the service layer hands
// the engine immutable snapshots read from here.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-grc/keel/pkg/policy"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is a database/sql backed document store. Driver is typically
// "sqlite" (embedded) or "postgres" (server deployments). Statements use
// $N placeholders, which both drivers accept.
type Store struct {
	db *sql.DB
}

// Open opens the database and ensures the schema exists.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing handle (used by tests and by callers that
// manage pooling themselves).
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS module_documents (
		tenant_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		version INTEGER NOT NULL,
		body JSON NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (tenant_id, kind, version)
	);
	CREATE TABLE IF NOT EXISTS baselines (
		baseline_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		snapshot_hash TEXT NOT NULL,
		published_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS decision_records (
		decision_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		verdict TEXT NOT NULL,
		policy_hash TEXT NOT NULL,
		detail JSON NOT NULL,
		created_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("store migrate: %w", err)
	}
	return nil
}

// ModuleDocument is one stored module payload version.
type ModuleDocument struct {
	TenantID  string
	Kind      policy.ModuleKind
	Version   int
	Body      json.RawMessage
	UpdatedAt time.Time
}

// PutModule stores the next version of a module document and returns the
// version it was assigned.
func (s *Store) PutModule(ctx context.Context, tenantID string, kind policy.ModuleKind, body json.RawMessage) (int, error) {
	var current sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM module_documents WHERE tenant_id = $1 AND kind = $2`,
		tenantID, kind).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("store put module: %w", err)
	}
	next := int(current.Int64) + 1

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO module_documents (tenant_id, kind, version, body, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		tenantID, kind, next, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("store put module: %w", err)
	}
	return next, nil
}

// GetModule returns the newest version of a module document.
func (s *Store) GetModule(ctx context.Context, tenantID string, kind policy.ModuleKind) (*ModuleDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT version, body, updated_at FROM module_documents
		 WHERE tenant_id = $1 AND kind = $2 ORDER BY version DESC LIMIT 1`,
		tenantID, kind)

	var doc ModuleDocument
	var body string
	var updated string
	if err := row.Scan(&doc.Version, &body, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store get module: %w", err)
	}
	doc.TenantID = tenantID
	doc.Kind = kind
	doc.Body = json.RawMessage(body)
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		doc.UpdatedAt = t
	}
	return &doc, nil
}

// CurrentModules loads the newest version of every module kind the tenant
// has stored, keyed by kind.
func (s *Store) CurrentModules(ctx context.Context, tenantID string) (map[policy.ModuleKind]json.RawMessage, error) {
	out := make(map[policy.ModuleKind]json.RawMessage)
	for _, kind := range policy.AllModuleKinds() {
		doc, err := s.GetModule(ctx, tenantID, kind)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[kind] = doc.Body
	}
	return out, nil
}

// Baseline is one published baseline row.
type Baseline struct {
	BaselineID   string
	TenantID     string
	SnapshotHash string
	PublishedAt  time.Time
}

// RecordBaseline stores a published baseline pointer.
func (s *Store) RecordBaseline(ctx context.Context, b Baseline) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO baselines (baseline_id, tenant_id, snapshot_hash, published_at) VALUES ($1, $2, $3, $4)`,
		b.BaselineID, b.TenantID, b.SnapshotHash, b.PublishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store record baseline: %w", err)
	}
	return nil
}

// DecisionRecord captures one evaluation outcome for audit.
type DecisionRecord struct {
	DecisionID string
	TenantID   string
	ActionType policy.ActionType
	Verdict    string
	PolicyHash string
	Detail     json.RawMessage
	CreatedAt  time.Time
}

// RecordDecision appends a decision record.
func (s *Store) RecordDecision(ctx context.Context, rec DecisionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decision_records (decision_id, tenant_id, action_type, verdict, policy_hash, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.DecisionID, rec.TenantID, rec.ActionType, rec.Verdict, rec.PolicyHash,
		string(rec.Detail), rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store record decision: %w", err)
	}
	return nil
}

// ListDecisions returns the most recent decision records for a tenant.
func (s *Store) ListDecisions(ctx context.Context, tenantID string, limit int) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT decision_id, action_type, verdict, policy_hash, detail, created_at
		 FROM decision_records WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`,
		tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("store list decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DecisionRecord
	for rows.Next() {
		rec := DecisionRecord{TenantID: tenantID}
		var detail, created string
		if err := rows.Scan(&rec.DecisionID, &rec.ActionType, &rec.Verdict, &rec.PolicyHash, &detail, &created); err != nil {
			return nil, fmt.Errorf("store list decisions: %w", err)
		}
		rec.Detail = json.RawMessage(detail)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store list decisions: %w", err)
	}
	return out, nil
}
