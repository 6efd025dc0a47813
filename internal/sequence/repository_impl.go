// Package sequence implements the per-namespace code allocator as an atomic
// find-and-increment on a single counter row. The counter lives in the
// database (not in memory) so concurrent processes sharing the store never
// observe the same value twice.
package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/openwater/aquabill/internal/sequence/domain"
	"gorm.io/gorm"
)

type allocator struct{}

func Provide() domain.Allocator {
	return &allocator{}
}

const (
	upsertReturning = `INSERT INTO sequence_counters (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
		 RETURNING value`

	// MySQL has neither ON CONFLICT nor RETURNING. LAST_INSERT_ID(expr)
	// stashes the expression in the session on both the insert and the
	// update path, so the follow-up SELECT reads the value this statement
	// produced.
	upsertMySQL = `INSERT INTO sequence_counters (name, value) VALUES (?, LAST_INSERT_ID(1))
		 ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`
	mysqlLastInsert = `SELECT LAST_INSERT_ID()`
)

func upsertStatements(dialect string) (upsert, followup string) {
	if dialect == "mysql" {
		return upsertMySQL, mysqlLastInsert
	}
	return upsertReturning, ""
}

func (a *allocator) Next(ctx context.Context, tx *gorm.DB, namespace string) (int64, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return 0, domain.ErrInvalidNamespace
	}

	// Upsert-and-increment in one statement. The row update takes a write
	// lock, so two transactions incrementing the same namespace serialize
	// and can never read the same value.
	var value int64
	upsert, followup := upsertStatements(tx.Dialector.Name())
	var err error
	if followup != "" {
		err = tx.WithContext(ctx).Exec(upsert, namespace).Error
		if err == nil {
			err = tx.WithContext(ctx).Raw(followup).Scan(&value).Error
		}
	} else {
		err = tx.WithContext(ctx).Raw(upsert, namespace).Scan(&value).Error
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrAllocatorUnavailable, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: counter returned %d", domain.ErrAllocatorUnavailable, value)
	}
	return value, nil
}

func (a *allocator) Reset(ctx context.Context, db *gorm.DB, namespace string) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return domain.ErrInvalidNamespace
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM sequence_counters WHERE name = ?`,
		namespace,
	).Error
}
