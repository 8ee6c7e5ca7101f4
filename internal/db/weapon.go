package db

import "time"

const (
	WeaponMelee     = "melee"
	WeaponHandgun   = "handgun"
	WeaponRifle     = "rifle"
	WeaponShotgun   = "shotgun"
	WeaponSMG       = "smg"
	WeaponExplosive = "explosive"
)

// WeaponCategories lists every valid Weapon.Category. The weapon cache is
// partitioned on this dimension, so invalidation walks the whole list.
var WeaponCategories = []string{
	WeaponMelee,
	WeaponHandgun,
	WeaponRifle,
	WeaponShotgun,
	WeaponSMG,
	WeaponExplosive,
}

type Weapon struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Category     string    `gorm:"size:32;not null;index" json:"category"`
	Skill        string    `gorm:"size:64;not null" json:"skill"`
	Damage       string    `gorm:"size:64;not null" json:"damage"`
	Range        string    `gorm:"size:32" json:"range,omitempty"`
	UsesPerRound string    `gorm:"size:16" json:"uses_per_round,omitempty"`
	Ammo         string    `gorm:"size:16" json:"ammo,omitempty"`
	Malfunction  string    `gorm:"size:16" json:"malfunction,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
