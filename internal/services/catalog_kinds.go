package services

import (
	"time"

	"gorm.io/gorm"

	"keepers-ledger/internal/cache"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

// One catalog service per reference-data kind. Weapons and creatures carry
// category partitions; the remaining kinds cache a single collection.

func NewWeaponCatalog(conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration) *Catalog[db.Weapon] {
	cat := newCatalog[db.Weapon](conn, log, c, ttl, "weapons")
	cat.partitions = db.WeaponCategories
	cat.categoryOf = func(w db.Weapon) string { return w.Category }
	return cat
}

func NewSpellCatalog(conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration) *Catalog[db.Spell] {
	return newCatalog[db.Spell](conn, log, c, ttl, "spells")
}

// Skill categories are free-form, so the cache stays unpartitioned and the
// category filter runs over the full collection in memory.
func NewSkillCatalog(conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration) *Catalog[db.Skill] {
	cat := newCatalog[db.Skill](conn, log, c, ttl, "skills")
	cat.categoryOf = func(s db.Skill) string { return s.Category }
	return cat
}

func NewCreatureCatalog(conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration) *Catalog[db.Creature] {
	cat := newCatalog[db.Creature](conn, log, c, ttl, "creatures")
	cat.partitions = []string{
		db.CreatureBeast,
		db.CreatureLesserServitor,
		db.CreatureGreaterServitor,
		db.CreatureGreatOldOne,
		db.CreatureOuterGod,
	}
	cat.categoryOf = func(cr db.Creature) string { return cr.Category }
	return cat
}

func NewItemCatalog(conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration) *Catalog[db.Item] {
	return newCatalog[db.Item](conn, log, c, ttl, "items")
}
