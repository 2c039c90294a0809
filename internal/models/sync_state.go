package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncState records the outcome of the latest reconciliation per scope
// (holdings | bulk_deals | block_deals). Observational only; the reconcile
// contract does not depend on it.
type SyncState struct {
	Scope         string         `gorm:"primaryKey;type:text"`
	LastAttemptAt *time.Time     `gorm:"type:timestamptz"`
	LastSuccessAt *time.Time     `gorm:"type:timestamptz"`
	LastError     *string        `gorm:"type:text"`
	StatsJSON     datatypes.JSON `gorm:"type:jsonb"`
}

func (SyncState) TableName() string {
	return "sync_state"
}

const (
	ScopeHoldings   = "holdings"
	ScopeBulkDeals  = "bulk_deals"
	ScopeBlockDeals = "block_deals"
)
