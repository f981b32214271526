package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type record struct {
	ID   uint
	Name string
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Init(Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "nested", "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.AutoMigrate(&record{}))
	return d
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestWithTx_Commit(t *testing.T) {
	d := openTestDB(t)
	err := d.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&record{Name: "a"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, d.Model(&record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithTx_Rollback(t *testing.T) {
	d := openTestDB(t)
	boom := errors.New("boom")
	err := d.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&record{Name: "a"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, d.Model(&record{}).Count(&count).Error)
	assert.Zero(t, count)
}
