package local

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Counter struct {
	db *DB
}

func NewCounter(db *DB) *Counter {
	return &Counter{db: db}
}

func (c *Counter) Next(ctx context.Context, scope string, year int, month time.Month) (int64, error) {
	var value int64
	err := c.db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := counterModel{Scope: scope, Year: year, Month: int(month), Value: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("value + 1")}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		var stored counterModel
		if err := tx.First(&stored, "scope = ? AND year = ? AND month = ?", scope, year, int(month)).Error; err != nil {
			return err
		}
		value = stored.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing counter %s %04d-%02d: %w", scope, year, int(month), err)
	}
	return value, nil
}
