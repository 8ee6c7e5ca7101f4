package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

// Principal is the identity claim set handed over by the authentication
// boundary: an email and a display name, already verified upstream.
type Principal struct {
	Email string
	Name  string
}

func (p Principal) normalized() Principal {
	return Principal{
		Email: strings.ToLower(strings.TrimSpace(p.Email)),
		Name:  strings.TrimSpace(p.Name),
	}
}

// IdentityService maps principals to local user rows, creating them lazily
// on first sight.
type IdentityService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdentityService(conn *gorm.DB, log *logger.Logger) *IdentityService {
	return &IdentityService{db: conn, log: log.With("service", "identity")}
}

// Resolve returns the user for a principal, creating one with the player
// role if none exists. Passing a transaction keeps the lazy create inside
// the caller's atomic unit; nil falls back to the service connection.
func (s *IdentityService) Resolve(ctx context.Context, tx *gorm.DB, p Principal) (*db.User, error) {
	conn := tx
	if conn == nil {
		conn = s.db
	}
	p = p.normalized()
	if p.Email == "" {
		return nil, ErrUnauthenticated
	}

	var user db.User
	err := conn.WithContext(ctx).Where("email = ?", p.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("user lookup failed", "email", p.Email, "error", err)
		return nil, err
	}

	user = db.User{
		Email: p.Email,
		Name:  displayName(p),
		Role:  db.RolePlayer,
	}
	// A savepoint around the insert keeps a caller-supplied transaction
	// usable on postgres when the create loses a unique-index race.
	createErr := conn.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return inner.Create(&user).Error
	})
	if createErr != nil {
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Lost the create race to a concurrent request; the row is there now.
			if err := conn.WithContext(ctx).Where("email = ?", p.Email).First(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		s.log.Error("user create failed", "email", p.Email, "error", createErr)
		return nil, createErr
	}
	return &user, nil
}

func displayName(p Principal) string {
	if p.Name != "" {
		return p.Name
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}

// CanCreateCampaign is the single decision point for campaign creation.
// Any authenticated role qualifies; tightening this to keepers only is a
// one-line change.
func CanCreateCampaign(role string) bool {
	return role == db.RolePlayer || role == db.RoleKeeper || role == db.RoleAdmin
}

// CanEditCatalog gates reference-data writes to administrators.
func CanEditCatalog(role string) bool {
	return role == db.RoleAdmin
}
