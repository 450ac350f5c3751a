package entitlements

import (
	"context"

	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/internal/pkg/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway grants and revokes entitlement group membership. Both calls are
// idempotent: granting an existing membership or revoking an absent one
// succeeds without effect.
type Gateway interface {
	Grant(ctx context.Context, groupID, userID uint) error
	Revoke(ctx context.Context, groupID, userID uint) error
}

// LinkedAccounts resolves child accounts tied to a subscriber so grants can
// fan out to them. The default resolver returns none.
type LinkedAccounts interface {
	Children(ctx context.Context, userID uint) ([]uint, error)
}

// NoLinkedAccounts is the default LinkedAccounts resolver.
type NoLinkedAccounts struct{}

func (NoLinkedAccounts) Children(ctx context.Context, userID uint) ([]uint, error) {
	return nil, nil
}

// GroupStore is the database-backed Gateway over group membership rows.
type GroupStore struct {
	db *gorm.DB
}

// NewGroupStore creates a Gateway backed by the group_memberships table.
func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

func (g *GroupStore) Grant(ctx context.Context, groupID, userID uint) error {
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "group_id"},
			{Name: "user_id"},
		},
		DoNothing: true,
	}).Create(&models.GroupMembership{GroupID: groupID, UserID: userID}).Error
	if err != nil {
		return err
	}
	return cache.ClearTag(cache.GroupUserTag(groupID, userID))
}

func (g *GroupStore) Revoke(ctx context.Context, groupID, userID uint) error {
	err := g.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{}).Error
	if err != nil {
		return err
	}
	return cache.ClearTag(cache.GroupUserTag(groupID, userID))
}

// IsMember reports whether the user currently belongs to the group.
func (g *GroupStore) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
