package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityKind enumerates the admin operations recorded in the activity log.
type ActivityKind string

const (
	ActivityImport       ActivityKind = "IMPORT"
	ActivityExamImport   ActivityKind = "EXAM_IMPORT"
	ActivityClear        ActivityKind = "CLEAR"
	ActivityDistribution ActivityKind = "DISTRIBUTION"
)

// ActivityLog records the outcome of one import, clear or distribution call.
type ActivityLog struct {
	ID        uuid.UUID       `json:"id"`
	Kind      ActivityKind    `json:"kind"`
	ScopeKey  string          `json:"scope_key"`
	Summary   string          `json:"summary"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}
