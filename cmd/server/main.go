package main

import (
	"log"
	"net/http"

	"keepers-ledger/internal/cache"
	"keepers-ledger/internal/config"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
	"keepers-ledger/internal/server"
	"keepers-ledger/internal/services"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	conn, err := db.Open(cfg.DatabaseURL, db.PoolSettings{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		zlog.Fatal("database open failed", "error", err)
	}
	if err := db.Migrate(conn); err != nil {
		zlog.Fatal("database migration failed", "error", err)
	}

	var catalogCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(zlog, cfg.RedisAddr)
		if err != nil {
			zlog.Fatal("redis cache unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		defer redisCache.Close()
		catalogCache = redisCache
	}

	identity := services.NewIdentityService(conn, zlog)
	srv := server.New(conn, cfg, zlog, server.Services{
		Identity:   identity,
		Campaigns:  services.NewCampaignService(conn, zlog, identity),
		Characters: services.NewCharacterService(conn, zlog),
		Weapons:    services.NewWeaponCatalog(conn, zlog, catalogCache, cfg.CatalogCacheTTL),
		Spells:     services.NewSpellCatalog(conn, zlog, catalogCache, cfg.CatalogCacheTTL),
		Skills:     services.NewSkillCatalog(conn, zlog, catalogCache, cfg.CatalogCacheTTL),
		Creatures:  services.NewCreatureCatalog(conn, zlog, catalogCache, cfg.CatalogCacheTTL),
		Items:      services.NewItemCatalog(conn, zlog, catalogCache, cfg.CatalogCacheTTL),
	})

	zlog.Info("keepers-ledger listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		zlog.Fatal("server stopped", "error", err)
	}
}
