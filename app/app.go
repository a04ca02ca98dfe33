package app

import (
	"context"
	"time"

	"github.com/Ahmed-Ibrahim-0/switches-controller/config"
	"github.com/Ahmed-Ibrahim-0/switches-controller/db"
	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/sequence"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Short aliases for handlers.
type Ctx = gin.Context
type H = gin.H

// App holds every long-lived dependency.
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client
	Config  *config.Config
	Log     *logrus.Logger
	Service *lifecycle.Service
	Metrics *Metrics
}

// MustNew wires storage, allocation, caching and the router. It exits the
// process on any wiring failure.
func MustNew(cfg *config.Config) *App {
	log := NewLogger(cfg.Logging)
	a, err := New(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}
	return a
}

func New(cfg *config.Config, log *logrus.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{Config: cfg, Log: log}

	dbConn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN(), log)
	if err != nil {
		return nil, err
	}
	var store lifecycle.Store
	if dbConn != nil {
		if err := db.Migrate(dbConn); err != nil {
			return nil, err
		}
		a.DB = dbConn
		store = db.NewRepo(dbConn)
		log.WithField("driver", cfg.Database.Driver).Info("database connected")
	} else {
		store = lifecycle.NewMemoryStore()
		log.Warn("no database configured, records live in memory")
	}

	var opts []lifecycle.Option
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		a.RDB = rdb
		if cfg.StatsCacheTTL > 0 {
			opts = append(opts, lifecycle.WithStatsCache(sequence.NewStatsCache(rdb, cfg.StatsCacheTTL)))
		}
	}

	alloc, err := a.allocator()
	if err != nil {
		return nil, err
	}

	a.Metrics = NewMetrics(reg)
	a.Service = lifecycle.NewService(store, a.Metrics.CountAllocations(alloc), opts...)

	if gin.Mode() != gin.TestMode && cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log), gin.Recovery())
	useCORS(r, cfg.WebOrigin)
	a.Router = r
	return a, nil
}

func (a *App) allocator() (lifecycle.Allocator, error) {
	switch {
	case a.Config.SequenceBackend == "redis":
		ra := sequence.NewRedisAllocator(a.RDB, db.SwitchSequence)
		if a.DB != nil {
			if err := BootstrapSequence(context.Background(), db.NewRepo(a.DB), ra, a.Log); err != nil {
				return nil, err
			}
		}
		return ra, nil
	case a.DB != nil:
		return db.NewCounterAllocator(a.DB, db.SwitchSequence), nil
	default:
		return &lifecycle.MemoryAllocator{}, nil
	}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
