package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestRunInTransaction_RetriesSerializationConflicts(t *testing.T) {
	conn := openTestDB(t)

	attempts := 0
	err := RunInTransaction(context.Background(), conn, 3, time.Millisecond, func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return errors.New("pq: deadlock detected")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRunInTransaction_GivesUpAfterMaxAttempts(t *testing.T) {
	conn := openTestDB(t)

	attempts := 0
	serErr := errors.New("could not serialize access due to concurrent update")
	err := RunInTransaction(context.Background(), conn, 3, time.Millisecond, func(tx *gorm.DB) error {
		attempts++
		return serErr
	})
	require.ErrorIs(t, err, serErr)
	assert.Equal(t, 3, attempts)
}

func TestRunInTransaction_DoesNotRetryDomainErrors(t *testing.T) {
	conn := openTestDB(t)

	attempts := 0
	err := RunInTransaction(context.Background(), conn, 3, time.Millisecond, func(tx *gorm.DB) error {
		attempts++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, attempts)
}

func TestRunInTransaction_StopsOnContextCancel(t *testing.T) {
	conn := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RunInTransaction(ctx, conn, 5, 50*time.Millisecond, func(tx *gorm.DB) error {
		attempts++
		cancel()
		return errors.New("pq: deadlock detected")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsSerializationErr(t *testing.T) {
	assert.True(t, IsSerializationErr(errors.New("pq: could not serialize access due to read/write dependencies")))
	assert.True(t, IsSerializationErr(errors.New("Error 1213: Deadlock found when trying to get lock")))
	assert.True(t, IsSerializationErr(errors.New("database is locked")))
	assert.False(t, IsSerializationErr(nil))
	assert.False(t, IsSerializationErr(assert.AnError))
}
