package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"keepers-ledger/internal/cache"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newTestCampaignService(t *testing.T) (*CampaignService, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	log := logger.NewNop()
	identity := NewIdentityService(conn, log)
	return NewCampaignService(conn, log, identity), conn
}

func newTestWeaponCatalog(t *testing.T) (*Catalog[db.Weapon], *gorm.DB, *cache.Memory) {
	t.Helper()
	conn := newTestDB(t)
	mem := cache.NewMemory()
	return NewWeaponCatalog(conn, logger.NewNop(), mem, time.Minute), conn, mem
}
