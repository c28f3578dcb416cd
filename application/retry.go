package application

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	maxTransactionRetries = 3

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isRetryable reports whether the transaction failed on a conflict that a fresh attempt can resolve
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// withRetry runs op until it succeeds, fails permanently or the retry budget is spent
func withRetry(ctx context.Context, name string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}

		log.WithFields(log.Fields{
			"operation": name,
			"attempt":   attempt,
			"error":     err,
		}).Warn("Transaction conflict, retrying")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxTransactionRetries), ctx))
}
