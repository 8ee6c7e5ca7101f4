package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CreatureBeast           = "beast"
	CreatureLesserServitor  = "lesser_servitor"
	CreatureGreaterServitor = "greater_servitor"
	CreatureGreatOldOne     = "great_old_one"
	CreatureOuterGod        = "outer_god"
)

type Creature struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Category    string         `gorm:"size:32;not null;index" json:"category"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Sheet       datatypes.JSON `gorm:"type:jsonb" json:"sheet,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}
