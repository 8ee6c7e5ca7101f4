package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

// CampaignService owns the campaign aggregate: campaigns, memberships and
// the join operation.
type CampaignService struct {
	db       *gorm.DB
	log      *logger.Logger
	identity *IdentityService
}

func NewCampaignService(conn *gorm.DB, log *logger.Logger, identity *IdentityService) *CampaignService {
	return &CampaignService{db: conn, log: log.With("service", "campaign"), identity: identity}
}

// JoinResult reports the membership a join resolved to. AlreadyMember is a
// soft outcome, not an error: re-applying to a campaign is a no-op.
type JoinResult struct {
	Membership    *db.CampaignPlayer
	AlreadyMember bool
}

func (s *CampaignService) CreateCampaign(ctx context.Context, p Principal, name string) (*db.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidArgument
	}
	user, err := s.identity.Resolve(ctx, nil, p)
	if err != nil {
		return nil, err
	}
	if !CanCreateCampaign(user.Role) {
		return nil, ErrForbidden
	}
	campaign := db.Campaign{
		Name:     name,
		Status:   db.CampaignPlanning,
		KeeperID: user.ID,
	}
	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		s.log.Error("campaign create failed", "keeper", user.Email, "name", name, "error", err)
		return nil, err
	}
	return &campaign, nil
}

// ListUserCampaigns returns every campaign the email participates in,
// whether as keeper or as a joined player.
func (s *CampaignService) ListUserCampaigns(ctx context.Context, email string) ([]db.Campaign, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrUnauthenticated
	}
	memberOf := s.db.Model(&db.CampaignPlayer{}).Select("campaign_id").Where("email = ?", email)
	keeperOf := s.db.Model(&db.User{}).Select("id").Where("email = ?", email)

	var campaigns []db.Campaign
	err := s.db.WithContext(ctx).
		Where("id IN (?) OR keeper_id IN (?)", memberOf, keeperOf).
		Order("created_at desc").
		Find(&campaigns).Error
	if err != nil {
		s.log.Error("user campaign list failed", "email", email, "error", err)
		return nil, err
	}
	return campaigns, nil
}

// ListOpenCampaigns returns campaigns still in planning, the ones players
// may apply to.
func (s *CampaignService) ListOpenCampaigns(ctx context.Context) ([]db.Campaign, error) {
	var campaigns []db.Campaign
	err := s.db.WithContext(ctx).
		Where("status = ?", db.CampaignPlanning).
		Order("created_at desc").
		Find(&campaigns).Error
	if err != nil {
		s.log.Error("open campaign list failed", "error", err)
		return nil, err
	}
	return campaigns, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id uint) (*db.Campaign, error) {
	var campaign db.Campaign
	err := s.db.WithContext(ctx).First(&campaign, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("campaign lookup failed", "campaign_id", id, "error", err)
		return nil, err
	}
	return &campaign, nil
}

// Join applies a principal to a campaign. The whole check-resolve-create
// sequence runs in one transaction, and the composite unique index on
// (campaign_id, email) closes the remaining race: a concurrent duplicate
// insert comes back as gorm.ErrDuplicatedKey and is reported as an
// existing membership, never as a second row.
func (s *CampaignService) Join(ctx context.Context, campaignID uint, p Principal) (JoinResult, error) {
	var result JoinResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign db.Campaign
		if err := tx.First(&campaign, campaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		user, err := s.identity.Resolve(ctx, tx, p)
		if err != nil {
			return err
		}

		var existing db.CampaignPlayer
		err = tx.Where("campaign_id = ? AND email = ?", campaignID, user.Email).First(&existing).Error
		if err == nil {
			result = JoinResult{Membership: &existing, AlreadyMember: true}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		membership := db.CampaignPlayer{
			CampaignID: campaignID,
			Email:      user.Email,
			Name:       displayName(Principal{Email: user.Email, Name: p.Name}),
			JoinedAt:   time.Now().UTC(),
		}
		// On postgres a unique violation aborts the whole transaction, so
		// the insert runs under a savepoint; losing the race leaves tx
		// usable for the recovery read.
		createErr := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&membership).Error
		})
		if createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				if err := tx.Where("campaign_id = ? AND email = ?", campaignID, user.Email).First(&existing).Error; err != nil {
					return err
				}
				result = JoinResult{Membership: &existing, AlreadyMember: true}
				return nil
			}
			return createErr
		}
		result = JoinResult{Membership: &membership}
		return nil
	})
	if err != nil {
		if !isValidationErr(err) {
			s.log.Error("campaign join failed", "campaign_id", campaignID, "email", p.Email, "error", err)
		}
		return JoinResult{}, err
	}
	return result, nil
}

// GetMembership looks up the caller's membership in a campaign.
func (s *CampaignService) GetMembership(ctx context.Context, campaignID uint, email string) (*db.CampaignPlayer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var membership db.CampaignPlayer
	err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND email = ?", campaignID, email).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("membership lookup failed", "campaign_id", campaignID, "email", email, "error", err)
		return nil, err
	}
	return &membership, nil
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidArgument)
}
