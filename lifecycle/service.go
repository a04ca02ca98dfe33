package lifecycle

import (
	"context"
	"strconv"
	"strings"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

// Service is the entry point the transport layer calls into. It never logs
// and never formats responses.
type Service struct {
	store     Store
	alloc     Allocator
	validator *Validator
	cache     StatsCache
}

type Option func(*Service)

// WithStatsCache enables caching of Stats between writes.
func WithStatsCache(c StatsCache) Option { return func(s *Service) { s.cache = c } }

func NewService(store Store, alloc Allocator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		alloc:     alloc,
		validator: NewValidator(NewResolver(store)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Validator() *Validator { return s.validator }

// Create validates f, stamps a fresh uniqueKey and persists the record.
func (s *Service) Create(ctx context.Context, f Fields) (*models.Switch, error) {
	sub, err := s.validator.ValidateAndPrepare(ctx, f, false, 0)
	if err != nil {
		return nil, err
	}
	key, err := s.alloc.Next(ctx)
	if err != nil {
		return nil, storeErr("allocate key", err)
	}
	sw := sub.Record()
	sw.UniqueKey = key
	if err := s.store.Create(ctx, sw); err != nil {
		return nil, storeErr("create switch", err)
	}
	s.invalidate(ctx)
	return sw, nil
}

// Replace validates f against every other record and overwrites the record
// with the given key. The key itself never changes.
func (s *Service) Replace(ctx context.Context, key int64, f Fields) (*models.Switch, error) {
	sub, err := s.validator.ValidateAndPrepare(ctx, f, true, key)
	if err != nil {
		return nil, err
	}
	sw, err := s.store.Replace(ctx, key, sub.Record())
	if err != nil {
		return nil, storeErr("replace switch", err)
	}
	s.invalidate(ctx)
	return sw, nil
}

func (s *Service) Delete(ctx context.Context, key int64) (*models.Switch, error) {
	sw, err := s.store.Delete(ctx, key)
	if err != nil {
		return nil, storeErr("delete switch", err)
	}
	s.invalidate(ctx)
	return sw, nil
}

func (s *Service) Get(ctx context.Context, key int64) (*models.Switch, error) {
	sw, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, storeErr("find switch", err)
	}
	return sw, nil
}

func (s *Service) All(ctx context.Context) ([]models.Switch, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, storeErr("list switches", err)
	}
	return all, nil
}

const (
	SearchBySerial    = "serialNumber"
	SearchByUniqueKey = "uniqueKey"
)

// Search looks a record up by uniqueKey, or every record holding a serial
// in any slot.
func (s *Service) Search(ctx context.Context, field, value string) ([]models.Switch, error) {
	value = strings.TrimSpace(value)
	if field == "" || value == "" {
		return nil, invalid("", "Both 'field' and 'value' are required")
	}
	switch field {
	case SearchByUniqueKey:
		key, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			// no record can carry a non-numeric key
			return nil, ErrNotFound
		}
		sw, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return []models.Switch{*sw}, nil
	case SearchBySerial:
		found, err := s.store.FindBySerial(ctx, CanonicalSerial(value), 0)
		if err != nil {
			return nil, storeErr("search switches", err)
		}
		return found, nil
	default:
		return nil, invalid("field", "Search by '%s' is not supported", field)
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	rows, total, err := s.store.List(ctx, q.Filter, q.Offset(), q.Limit)
	if err != nil {
		return nil, storeErr("filter switches", err)
	}
	if rows == nil {
		rows = []models.Switch{}
	}
	return &Page{
		Switches:     rows,
		CurrentPage:  q.Page,
		TotalPages:   totalPages(total, q.Limit),
		TotalRecords: total,
	}, nil
}

// Stats returns the status breakdown and fixed-subset counters, served from
// the cache when one is configured and warm.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		st, g, err := s.cache.Get(ctx)
		if err == nil && st != nil {
			return st, nil
		}
		// the generation is read before the store so a write that lands
		// in between keeps this snapshot out of the cache
		gen, cacheable = g, err == nil
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, storeErr("switch stats", err)
	}
	if cacheable {
		_ = s.cache.Set(ctx, gen, st)
	}
	return st, nil
}

// Reset deletes every record and zeroes the key sequence so the next
// created record gets uniqueKey 1.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, storeErr("clear switches", err)
	}
	if err := s.alloc.Reset(ctx); err != nil {
		return n, storeErr("reset sequence", err)
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
