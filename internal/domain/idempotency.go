package domain

import "time"

// Idempotency pins the outcome of a prediction request to the client-supplied
// Idempotency-Key. A retry carrying the same key within the TTL window maps
// back to PredictionID instead of charging a second model run. The unique
// index scopes keys per user and per case, so two lawyers reusing the same
// key value never collide.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_case_key,priority:1"`
	CaseID       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_case_key,priority:2"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_case_key,priority:3"`
	PredictionID string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
