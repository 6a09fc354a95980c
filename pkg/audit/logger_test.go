package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRecordWritesStructuredLine emits one prefixed JSON line per event.
func TestRecordWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	err := logger.Record(context.Background(), "acme", EventEvaluation, "evaluate", "d-1", map[string]any{
		"verdict": "BLOCKED",
	})
	require.NoError(t, err)

	line := buf.String()
	require.True(t, strings.HasPrefix(line, "AUDIT: "))
	require.True(t, strings.HasSuffix(line, "\n"))

	var event Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "AUDIT: ")), &event))
	require.NotEmpty(t, event.ID)
	require.Equal(t, "acme", event.TenantID)
	require.Equal(t, EventEvaluation, event.Type)
	require.Equal(t, "evaluate", event.Action)
	require.Equal(t, "d-1", event.Resource)
	require.Equal(t, "BLOCKED", event.Metadata["verdict"])
	require.False(t, event.Timestamp.IsZero())
}

// TestRecordDefaultsTenant attributes tenant-less events to "system".
func TestRecordDefaultsTenant(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	require.NoError(t, logger.Record(context.Background(), "", EventPublish, "published", "b-1", nil))

	var event Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(buf.String()), "AUDIT: ")), &event))
	require.Equal(t, "system", event.TenantID)
}

// TestRecordUniqueIDs gives every event its own id.
func TestRecordUniqueIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	for i := 0; i < 3; i++ {
		require.NoError(t, logger.Record(context.Background(), "acme", EventValidation, "validate", "mandates", nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	ids := make(map[string]bool)
	for _, line := range lines {
		var event Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "AUDIT: ")), &event))
		ids[event.ID] = true
	}
	require.Len(t, ids, 3)
}
