package models

import "time"

// GroupMembership records that a user belongs to an entitlement group.
// Grant and revoke are idempotent: granting twice keeps one row, revoking a
// missing row is a no-op.
type GroupMembership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index:ux_group_memberships_group_user,unique,priority:1" json:"group_id"`
	UserID    uint      `gorm:"not null;index:ux_group_memberships_group_user,unique,priority:2;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
