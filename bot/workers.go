package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// expiryBatchSize bounds the trades expired per tick
const expiryBatchSize = 50

// tradeExpirer cancels open trades past their deadline
type tradeExpirer interface {
	ExpireTrades(ctx context.Context, limit int) (int, error)
}

// StartTradeExpirationWorker periodically cancels expired trades.
// Returns a cleanup function to stop the worker gracefully.
func StartTradeExpirationWorker(ctx context.Context, expirer tradeExpirer, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	processExpiredTrades := func() {
		for {
			expired, err := expirer.ExpireTrades(ctx, expiryBatchSize)
			if err != nil {
				log.Errorf("Error expiring trades: %v", err)
				return
			}
			if expired > 0 {
				log.Infof("Expired %d trade(s)", expired)
			}
			if expired < expiryBatchSize {
				return
			}
		}
	}

	go func() {
		defer close(done)
		log.WithField("interval", interval).Info("Trade expiration worker started")

		// Run immediately on startup
		processExpiredTrades()

		for {
			select {
			case <-ctx.Done():
				log.Info("Trade expiration worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Trade expiration worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				processExpiredTrades()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
		<-done
	}
}
