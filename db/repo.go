package db

import (
	"context"
	"errors"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ lifecycle.Store = (*Repo)(nil)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lifecycle.ErrNotFound
	}
	return err
}

// FindBySerial matches the serial against all three serial slots.
func (r *Repo) FindBySerial(ctx context.Context, serial string, excludeKey int64) ([]models.Switch, error) {
	q := r.DB.WithContext(ctx).
		Where("serial_number = ? OR old_serial_number = ? OR new_serial_number = ?", serial, serial, serial)
	if excludeKey != 0 {
		q = q.Where("unique_key <> ?", excludeKey)
	}
	var out []models.Switch
	if err := q.Order("unique_key").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) FindByKey(ctx context.Context, key int64) (*models.Switch, error) {
	var sw models.Switch
	if err := r.DB.WithContext(ctx).First(&sw, "unique_key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &sw, nil
}

func (r *Repo) FindAll(ctx context.Context) ([]models.Switch, error) {
	var out []models.Switch
	err := r.DB.WithContext(ctx).Order("unique_key").Find(&out).Error
	return out, err
}

func (r *Repo) Create(ctx context.Context, sw *models.Switch) error {
	return r.DB.WithContext(ctx).Create(sw).Error
}

// Replace overwrites every mutable column of the record with the given key.
func (r *Repo) Replace(ctx context.Context, key int64, sw *models.Switch) (*models.Switch, error) {
	var out models.Switch
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Switch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cur, "unique_key = ?", key).Error; err != nil {
			return err
		}
		next := *sw
		next.ID, next.UniqueKey, next.CreatedAt = cur.ID, cur.UniqueKey, cur.CreatedAt
		// Save writes zero values too, so cleared columns really clear
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *Repo) Delete(ctx context.Context, key int64) (*models.Switch, error) {
	var out models.Switch
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "unique_key = ?", key).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Switch{}, out.ID).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Switch{})
	return res.RowsAffected, res.Error
}

func (r *Repo) filtered(ctx context.Context, f lifecycle.Filter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Switch{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProviderMissing {
		q = q.Where("provider IS NULL OR provider = ''")
	} else if f.Provider != "" {
		q = q.Where("provider = ?", f.Provider)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.OldModel != "" {
		q = q.Where("old_model = ?", f.OldModel)
	}
	if f.NewModel != "" {
		q = q.Where("new_model = ?", f.NewModel)
	}
	if f.DeliveredStatus != "" {
		q = q.Where("delivered_status = ?", f.DeliveredStatus)
	}
	return q
}

func (r *Repo) List(ctx context.Context, f lifecycle.Filter, offset, limit int) ([]models.Switch, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Switch
	if err := r.filtered(ctx, f).
		Order("unique_key").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MaxKey returns the highest uniqueKey in use, or 0 for an empty table.
func (r *Repo) MaxKey(ctx context.Context) (int64, error) {
	var max int64
	err := r.DB.WithContext(ctx).Model(&models.Switch{}).
		Select("COALESCE(MAX(unique_key), 0)").
		Scan(&max).Error
	return max, err
}
