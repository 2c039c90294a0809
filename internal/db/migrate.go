package db

import (
	"investorwatch/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Investor{},
		&models.Stock{},
		&models.Holding{},
		&models.BulkDeal{},
		&models.BlockDeal{},
		&models.IngestSchedule{},
		&models.SyncState{},
	)
}
