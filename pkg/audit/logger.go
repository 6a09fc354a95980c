// Package audit records engine outcomes as structured events. The engine
// itself never logs; the service layer records here after each evaluation,
// validation, and publication.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of the audit event.
type EventType string

const (
	EventEvaluation EventType = "EVALUATION"
	EventException  EventType = "EXCEPTION"
	EventConflict   EventType = "CONFLICT"
	EventValidation EventType = "VALIDATION"
	EventPublish    EventType = "PUBLISH"
)

// Event represents a structured audit record.
type Event struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	Type      EventType      `json:"type"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Logger defines the interface for recording audit events.
type Logger interface {
	Record(ctx context.Context, tenantID string, eventType EventType, action, resource string, metadata map[string]any) error
}

// logger writes structured JSON lines to a configurable writer.
type logger struct {
	mu     sync.Mutex
	writer io.Writer
	clock  func() time.Time
}

// NewLogger creates a Logger writing to os.Stdout.
func NewLogger() Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter creates a Logger writing to the given writer, for
// tests and custom sinks.
func NewLoggerWithWriter(w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	return &logger{writer: w, clock: time.Now}
}

func (l *logger) Record(ctx context.Context, tenantID string, eventType EventType, action, resource string, metadata map[string]any) error {
	if tenantID == "" {
		tenantID = "system"
	}
	event := Event{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      eventType,
		Action:    action,
		Resource:  resource,
		Timestamp: l.clock().UTC(),
		Metadata:  metadata,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit marshal: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.writer, "AUDIT: %s\n", payload); err != nil {
		return fmt.Errorf("audit write: %w", err)
	}
	return nil
}
