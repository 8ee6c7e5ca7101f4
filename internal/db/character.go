package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CharacterActive   = "active"
	CharacterInactive = "inactive"
	CharacterRetired  = "retired"
	CharacterDead     = "dead"
)

// Character belongs to exactly one CampaignPlayer. At most one character
// per membership holds CharacterActive; the character service enforces
// that inside a transaction.
type Character struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CampaignPlayerID uint           `gorm:"index;not null" json:"campaign_player_id"`
	Name             string         `gorm:"size:64;not null" json:"name"`
	Status           string         `gorm:"size:16;not null;default:inactive" json:"status"`
	Sheet            datatypes.JSON `gorm:"type:jsonb" json:"sheet,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}
