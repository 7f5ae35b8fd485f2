package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuditEntry_Line(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 7, 9, 3, 2, 0, time.UTC)

	tests := []struct {
		name  string
		entry *AuditEntry
		want  string
	}{
		{
			name:  "dispatched",
			entry: NewDispatchedAuditEntry(ts, "alice", "1.2.3.4", 5000),
			want:  "2024/05/07 09:03:02: alice (1.2.3.4) 5000\n",
		},
		{
			name:  "rejected",
			entry: NewRejectedAuditEntry(ts, "bob", "5.6.7.8"),
			want:  "2024/05/07 09:03:02: bob (5.6.7.8) invalid request\n",
		},
		{
			name:  "anonymous without address",
			entry: NewRejectedAuditEntry(ts, "", ""),
			want:  "2024/05/07 09:03:02:  () invalid request\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Line())
		})
	}
}

func TestAuditEntry_LineUsesTimestampLocation(t *testing.T) {
	t.Parallel()

	plusTwo := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC).In(plusTwo)

	entry := NewDispatchedAuditEntry(ts, "alice", "1.2.3.4", 2)
	assert.Equal(t, "2025/01/01 01:30:00: alice (1.2.3.4) 2\n", entry.Line())
}
