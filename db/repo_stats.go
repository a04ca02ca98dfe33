// db/repo_stats.go
package db

import (
	"context"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
	"gorm.io/gorm"
)

// Stats groups records by status and counts three lenses over the fixed
// subset. The lenses overlap.
func (r *Repo) Stats(ctx context.Context) (*lifecycle.Stats, error) {
	db := r.DB.WithContext(ctx)

	var groups []lifecycle.StatusCount
	if err := db.Model(&models.Switch{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	byStatus := make(map[models.Status]int64, len(groups))
	for _, g := range groups {
		byStatus[g.Status] = g.Count
	}

	st := &lifecycle.Stats{Breakdown: []lifecycle.StatusCount{}}
	for _, s := range models.Statuses {
		if n := byStatus[s]; n > 0 {
			st.Breakdown = append(st.Breakdown, lifecycle.StatusCount{Status: s, Count: n})
		}
	}
	for _, g := range groups {
		st.Total += g.Count
	}

	fixed := func() *gorm.DB { return db.Model(&models.Switch{}).Where("status = ?", models.StatusFixed) }

	if err := fixed().
		Where("provider IS NULL OR provider = ''").
		Count(&st.NoProviderCount).Error; err != nil {
		return nil, err
	}
	if err := fixed().
		Where("delivered_status = ?", models.Delivered).
		Count(&st.DeliveredCount).Error; err != nil {
		return nil, err
	}
	if err := fixed().
		Where("delivered_status IS NULL OR delivered_status = '' OR delivered_status = ?", models.NotDelivered).
		Count(&st.NotDeliveredCount).Error; err != nil {
		return nil, err
	}
	return st, nil
}
