package sequence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/openwater/aquabill/internal/sequence/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, db.AutoMigrate(&domain.Counter{}))
	return db
}

func TestNext_StartsAtOneAndIncrements(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		var got int64
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = alloc.Next(ctx, tx, "reading")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNext_NamespacesAreIndependent(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		v, err := alloc.Next(ctx, tx, "reading")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = alloc.Next(ctx, tx, "invoice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = alloc.Next(ctx, tx, "reading")
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
		return nil
	})
	require.NoError(t, err)
}

func TestNext_EmptyNamespace(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()

	_, err := alloc.Next(context.Background(), db, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidNamespace)
}

func TestNext_ConcurrentCallersNeverShareAValue(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()
	ctx := context.Background()

	const callers = 32
	values := make(chan int64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// sqlite serializes writers; retry the transient lock error the
			// same way a real caller retries a serialization conflict
			for {
				err := db.Transaction(func(tx *gorm.DB) error {
					v, err := alloc.Next(ctx, tx, "reading")
					if err != nil {
						return err
					}
					values <- v
					return nil
				})
				if err == nil {
					return
				}
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, callers)
	for v := range values {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)
}

func TestNext_RollbackDoesNotBurnPersistedValue(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		v, err := alloc.Next(ctx, tx, "reading")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		return assert.AnError
	})
	require.Error(t, err)

	// The increment rolled back with the transaction, so the next commit
	// reissues from the durable state without duplicating a used code.
	var got int64
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = alloc.Next(ctx, tx, "reading")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestUpsertStatements_PerDialect(t *testing.T) {
	// postgres and sqlite take the single-statement RETURNING form
	for _, dialect := range []string{"postgres", "sqlite"} {
		upsert, followup := upsertStatements(dialect)
		assert.Contains(t, upsert, "ON CONFLICT", "dialect %s", dialect)
		assert.Contains(t, upsert, "RETURNING", "dialect %s", dialect)
		assert.Empty(t, followup, "dialect %s", dialect)
	}

	// mysql supports neither, so the increment goes through
	// LAST_INSERT_ID and a follow-up read on the same session
	upsert, followup := upsertStatements("mysql")
	assert.Contains(t, upsert, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, upsert, "LAST_INSERT_ID(value + 1)")
	assert.Equal(t, "SELECT LAST_INSERT_ID()", followup)
	assert.NotContains(t, upsert, "RETURNING")
}

func TestReset(t *testing.T) {
	db := setupDB(t)
	alloc := Provide()
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := alloc.Next(ctx, tx, "reading")
		return err
	}))

	require.NoError(t, alloc.Reset(ctx, db, "reading"))

	var got int64
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = alloc.Next(ctx, tx, "reading")
		return err
	}))
	assert.Equal(t, int64(1), got)
}
