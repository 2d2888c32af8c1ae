package mock

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "flaromlab/internal/log"
	"flaromlab/models"
)

// SavedFormulasKey is the blob key the seeded formula list is stored under.
const SavedFormulasKey = "myFormulas"

// New returns an in-memory sqlite database seeded with a representative saved formula list.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:flaromlab-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.BlobRecord{}); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

// SeedFormulas returns the formulas written by New.
func SeedFormulas() []models.Formula {
	created := time.Date(2026, time.January, 12, 9, 30, 0, 0, time.UTC)
	return []models.Formula{
		{
			ID:       "CUSTOM-0193a1f0-aurum",
			Name:     "Aurum Nocturne",
			Category: "Amber",
			Components: []models.FormulaComponent{
				{MoleculeID: "AMB-001", Name: "Ambroxan", CAS: "6790-58-5", Percent: 40},
				{MoleculeID: "CIT-004", Name: "Linalool", CAS: "78-70-6", Percent: 60},
			},
			CostPerLiter:   52,
			RetailPerLiter: 338,
			ProfitMargin:   6.5,
			CreatedAt:      &created,
		},
		{
			ID:       "CUSTOM-0193a1f0-lumen",
			Name:     "Lumen Celeste",
			Category: "Floral",
			Components: []models.FormulaComponent{
				{MoleculeID: "FLO-010", Name: "Geraniol", CAS: "106-24-1", Percent: 100},
			},
			CostPerLiter:   18.4,
			RetailPerLiter: 119.6,
			ProfitMargin:   6.5,
			CreatedAt:      &created,
		},
	}
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	payload, err := json.Marshal(SeedFormulas())
	if err != nil {
		return err
	}

	record := models.BlobRecord{Key: SavedFormulasKey, Payload: payload, UpdatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Save(&record).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
