package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-api/internal/model"
)

func TestFormatAuditLine(t *testing.T) {
	rid := "p-1"
	ev := NewAuditRecordedEvent(model.AuditLog{
		ID:         "a-1",
		UserID:     "u-1",
		Role:       "ADMIN",
		Action:     model.ActionSoftDelete,
		Resource:   string(model.ResourceProduct),
		ResourceID: &rid,
		IP:         "10.0.0.7",
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	assert.Equal(t,
		"[2024-03-01T12:00:00Z] SOFT_DELETE PRODUCT | audit_id=a-1 | resource_id=p-1 | user_id=u-1 | role=ADMIN | ip=10.0.0.7\n",
		FormatAuditLine(ev))
}

func TestFormatAuditLine_MissingFields(t *testing.T) {
	line := FormatAuditLine(AuditRecordedEvent{ID: "a", UserID: "u", Action: "CREATE", Resource: "CATEGORY"})
	assert.Contains(t, line, "resource_id=-")
	assert.Contains(t, line, "role=-")
}

func TestAuditConsumer_HandleAppends(t *testing.T) {
	dir := t.TempDir()
	c := &AuditConsumer{LogDir: dir}

	body, err := json.Marshal(AuditRecordedEvent{ID: "a-1", UserID: "u", Action: "CREATE", Resource: "CATEGORY", RecordedAt: "t"})
	require.NoError(t, err)
	require.NoError(t, c.handle(body))
	require.NoError(t, c.handle(body))

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(string(data)))
}

func TestAuditConsumer_HandleRejectsGarbage(t *testing.T) {
	c := &AuditConsumer{LogDir: t.TempDir()}
	assert.Error(t, c.handle([]byte("{not json")))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
