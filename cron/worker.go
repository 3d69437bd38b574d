package cron

import (
	"context"
	"fmt"
	"time"

	"medirouter/config"
	"medirouter/services/ledger"
	"medirouter/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitHoldSweeper starts the periodic sweep that reverts expired holds
// back to Open. The ledger also checks lazily on access; the sweep
// bounds how long an abandoned hold can linger beyond its TTL.
func InitHoldSweeper(l ledger.BookingLedger) *cron.Cron {
	logger := utils.GetLogger()
	c := cron.New(cron.WithSeconds())

	spec := fmt.Sprintf("@every %s", config.SweepInterval())
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		released, err := l.ExpireHeld(ctx)
		if err != nil {
			logger.Warn("hold sweep failed", zap.Error(err))
			return
		}
		if released > 0 {
			logger.Info("hold sweep released expired holds", zap.Int("count", released))
		}
	})
	if err != nil {
		logger.Error("failed to schedule hold sweep", zap.Error(err))
		return c
	}

	c.Start()
	logger.Info("hold sweeper started", zap.Duration("interval", config.SweepInterval()))
	return c
}
