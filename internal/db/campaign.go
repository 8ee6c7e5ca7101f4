package db

import "time"

const (
	CampaignPlanning  = "planning"
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignArchived  = "archived"
)

// Campaign is owned by its Keeper. KeeperID is set at creation and never
// reassigned. Memberships are reached by querying CampaignPlayer on
// CampaignID; the model deliberately carries no navigation slice back.
type Campaign struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Status    string    `gorm:"size:32;not null;default:planning" json:"status"`
	KeeperID  uint      `gorm:"index;not null" json:"keeper_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
