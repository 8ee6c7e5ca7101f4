package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

// CharacterService manages the characters under a campaign membership and
// the one-active-character invariant.
type CharacterService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterService(conn *gorm.DB, log *logger.Logger) *CharacterService {
	return &CharacterService{db: conn, log: log.With("service", "character")}
}

// Create adds a character to the caller's membership in a campaign. New
// characters start inactive; promotion is a separate, explicit step.
func (s *CharacterService) Create(ctx context.Context, p Principal, campaignID uint, name string, sheet datatypes.JSON) (*db.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidArgument
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return nil, ErrUnauthenticated
	}

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

	character := db.Character{
		CampaignPlayerID: membership.ID,
		Name:             name,
		Status:           db.CharacterInactive,
		Sheet:            sheet,
	}
	if err := s.db.WithContext(ctx).Create(&character).Error; err != nil {
		s.log.Error("character create failed", "membership_id", membership.ID, "email", email, "error", err)
		return nil, err
	}
	return &character, nil
}

// SetActive promotes a character and, in the same transaction, demotes
// whichever character of the membership was active before. A character
// outside the caller's membership is a conflict, not a not-found, so the
// caller learns the id exists but is not theirs to play.
func (s *CharacterService) SetActive(ctx context.Context, p Principal, characterID uint) (*db.Character, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var character db.Character
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&character, characterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var membership db.CampaignPlayer
		if err := tx.First(&membership, character.CampaignPlayerID).Error; err != nil {
			return err
		}
		if membership.Email != email {
			return ErrConflict
		}

		if character.Status == db.CharacterActive {
			return nil
		}

		demote := tx.Model(&db.Character{}).
			Where("campaign_player_id = ? AND status = ? AND id <> ?",
				membership.ID, db.CharacterActive, character.ID).
			Update("status", db.CharacterInactive)
		if demote.Error != nil {
			return demote.Error
		}

		character.Status = db.CharacterActive
		return tx.Model(&character).Update("status", db.CharacterActive).Error
	})
	if err != nil {
		if !isValidationErr(err) {
			s.log.Error("character activation failed", "character_id", characterID, "email", email, "error", err)
		}
		return nil, err
	}
	return &character, nil
}

// Retire marks a character retired. Retiring the active character leaves
// the membership with no active character until the player promotes
// another one.
func (s *CharacterService) Retire(ctx context.Context, p Principal, characterID uint) (*db.Character, error) {
	return s.setTerminalStatus(ctx, p, characterID, db.CharacterRetired)
}

// MarkDead marks a character dead.
func (s *CharacterService) MarkDead(ctx context.Context, p Principal, characterID uint) (*db.Character, error) {
	return s.setTerminalStatus(ctx, p, characterID, db.CharacterDead)
}

func (s *CharacterService) setTerminalStatus(ctx context.Context, p Principal, characterID uint, status string) (*db.Character, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return nil, ErrUnauthenticated
	}
	var character db.Character
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&character, characterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var membership db.CampaignPlayer
		if err := tx.First(&membership, character.CampaignPlayerID).Error; err != nil {
			return err
		}
		if membership.Email != email {
			return ErrConflict
		}
		character.Status = status
		return tx.Model(&character).Update("status", status).Error
	})
	if err != nil {
		if !isValidationErr(err) {
			s.log.Error("character status change failed", "character_id", characterID, "email", email, "status", status, "error", err)
		}
		return nil, err
	}
	return &character, nil
}

// List returns the characters under a membership, active first.
func (s *CharacterService) List(ctx context.Context, membershipID uint) ([]db.Character, error) {
	var characters []db.Character
	err := s.db.WithContext(ctx).
		Where("campaign_player_id = ?", membershipID).
		Order("status = 'active' desc, name asc").
		Find(&characters).Error
	if err != nil {
		s.log.Error("character list failed", "membership_id", membershipID, "error", err)
		return nil, err
	}
	return characters, nil
}
