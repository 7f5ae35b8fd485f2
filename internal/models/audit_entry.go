package models

import (
	"fmt"
	"strconv"
	"time"
)

// PayloadInvalidRequest is the audit payload of a rejected request.
const PayloadInvalidRequest = "invalid request"

const auditTimeLayout = "2006/01/02 15:04:05"

// AuditEntry is one line of the append-only audit log:
//
//	2024/05/17 14:03:22: alice (1.2.3.4) 5000
//	2024/05/17 14:03:25: bob (5.6.7.8) invalid request
type AuditEntry struct {
	Timestamp     time.Time
	AuthUser      string
	ClientAddress string
	Payload       string
}

func NewDispatchedAuditEntry(ts time.Time, authUser, clientAddress string, numParticles int) *AuditEntry {
	return &AuditEntry{
		Timestamp:     ts,
		AuthUser:      authUser,
		ClientAddress: clientAddress,
		Payload:       strconv.Itoa(numParticles),
	}
}

func NewRejectedAuditEntry(ts time.Time, authUser, clientAddress string) *AuditEntry {
	return &AuditEntry{
		Timestamp:     ts,
		AuthUser:      authUser,
		ClientAddress: clientAddress,
		Payload:       PayloadInvalidRequest,
	}
}

// Line renders the entry including the trailing newline. The timestamp is
// written in its own location.
func (e *AuditEntry) Line() string {
	return fmt.Sprintf("%s: %s (%s) %s\n", e.Timestamp.Format(auditTimeLayout), e.AuthUser, e.ClientAddress, e.Payload)
}
