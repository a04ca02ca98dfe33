// db/repo_counter.go
package db

import (
	"context"
	"fmt"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwitchSequence names the counter row that hands out switch uniqueKeys.
const SwitchSequence = "switches"

// CounterAllocator is a lifecycle.Allocator backed by a counters row.
type CounterAllocator struct {
	db   *gorm.DB
	name string
}

func NewCounterAllocator(db *gorm.DB, name string) *CounterAllocator {
	return &CounterAllocator{db: db, name: name}
}

var _ lifecycle.Allocator = (*CounterAllocator)(nil)

// Next upserts the row with seq = seq + 1 and reads it back inside the same
// transaction; the upsert holds the row lock until commit, so concurrent
// callers on any instance never observe the same value.
func (a *CounterAllocator) Next(ctx context.Context) (int64, error) {
	var seq int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"seq": gorm.Expr(models.CounterTable + ".seq + 1")}),
		}).Create(&models.Counter{Name: a.name, Seq: 1}).Error; err != nil {
			return err
		}
		var c models.Counter
		if err := tx.First(&c, "name = ?", a.name).Error; err != nil {
			return err
		}
		seq = c.Seq
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next %s key: %w", a.name, err)
	}
	return seq, nil
}

// Reset removes the counter row; the next allocation starts again at 1.
func (a *CounterAllocator) Reset(ctx context.Context) error {
	return a.db.WithContext(ctx).Delete(&models.Counter{}, "name = ?", a.name).Error
}
