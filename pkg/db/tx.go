package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RunInTransaction executes fn inside a gorm transaction, retrying the whole
// transaction on serialization conflicts up to maxAttempts with exponential
// backoff. Non-transient errors abort immediately; retry is bounded so
// contending writers never block indefinitely.
func RunInTransaction(ctx context.Context, conn *gorm.DB, maxAttempts int, backoff time.Duration, fn func(tx *gorm.DB) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = conn.WithContext(ctx).Transaction(fn)
		if err == nil || !IsSerializationErr(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff << (attempt - 1)):
		}
	}
	return err
}
