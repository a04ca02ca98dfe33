package lifecycle

import (
	"context"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

// Store is the record persistence contract the engine runs against.
// Implementations return ErrNotFound when a key does not exist.
type Store interface {
	// FindBySerial returns records holding serial in any serial slot.
	// A non-zero excludeKey drops that record from the result.
	FindBySerial(ctx context.Context, serial string, excludeKey int64) ([]models.Switch, error)
	FindByKey(ctx context.Context, key int64) (*models.Switch, error)
	FindAll(ctx context.Context) ([]models.Switch, error)
	Create(ctx context.Context, sw *models.Switch) error
	Replace(ctx context.Context, key int64, sw *models.Switch) (*models.Switch, error)
	Delete(ctx context.Context, key int64) (*models.Switch, error)
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context, f Filter, offset, limit int) ([]models.Switch, int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Allocator hands out uniqueKeys. Next must be a single atomic
// increment-and-fetch on shared storage.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// StatsCache holds the last computed Stats between writes. Every
// Invalidate bumps a generation, and Set only stores a snapshot computed
// under the generation that is still current.
type StatsCache interface {
	// Get returns the cached Stats, nil on a miss, and the current generation.
	Get(ctx context.Context) (*Stats, int64, error)
	// Set stores s unless the generation has moved past gen.
	Set(ctx context.Context, gen int64, s *Stats) error
	Invalidate(ctx context.Context) error
}

type StatusCount struct {
	Status models.Status `json:"status"`
	Count  int64         `json:"count"`
}

type Stats struct {
	Total             int64         `json:"total"`
	Breakdown         []StatusCount `json:"breakdown"`
	NoProviderCount   int64         `json:"noProviderCount"`
	DeliveredCount    int64         `json:"deliveredCount"`
	NotDeliveredCount int64         `json:"notDeliveredCount"`
}
