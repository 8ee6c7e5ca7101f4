package db

import "time"

// CampaignPlayer binds one participant to one campaign. The composite
// unique index is what makes join idempotent under concurrency: a second
// insert for the same (campaign, email) pair fails at the storage layer.
type CampaignPlayer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CampaignID uint      `gorm:"index;not null;uniqueIndex:idx_campaign_players_campaign_email" json:"campaign_id"`
	Email      string    `gorm:"size:254;not null;uniqueIndex:idx_campaign_players_campaign_email" json:"email"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	JoinedAt   time.Time `gorm:"not null" json:"joined_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
