// app/bootstrap.go
package app

import (
	"context"
	"fmt"

	"github.com/Ahmed-Ibrahim-0/switches-controller/db"
	"github.com/Ahmed-Ibrahim-0/switches-controller/sequence"
	"github.com/sirupsen/logrus"
)

// BootstrapSequence makes sure a Redis sequence never hands out a key that
// the database already holds, e.g. after moving from SEQUENCE_BACKEND=db.
func BootstrapSequence(ctx context.Context, repo *db.Repo, ra *sequence.RedisAllocator, log *logrus.Logger) error {
	max, err := repo.MaxKey(ctx)
	if err != nil {
		return fmt.Errorf("read highest uniqueKey: %w", err)
	}
	if max == 0 {
		return nil
	}
	if err := ra.Seed(ctx, max); err != nil {
		return fmt.Errorf("seed redis sequence: %w", err)
	}
	log.WithField("floor", max).Info("redis sequence seeded from database")
	return nil
}
