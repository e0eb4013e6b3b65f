package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestBaseDBBindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBaseTransactionRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS tx_probe (id TEXT PRIMARY KEY)`).Error)
	base := NewBase(db)

	boom := errors.New("boom")
	err := base.Transaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO tx_probe (id) VALUES ('a')`).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM tx_probe`).Scan(&count).Error)
	assert.Zero(t, count)
}
