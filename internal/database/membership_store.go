package database

import (
	"context"
	"errors"
	"time"

	"foodshare/internal/models"

	"gorm.io/gorm"
)

var ErrMembershipNotFound = errors.New("membership not found")

// MembershipStore persists group memberships with gorm.
type MembershipStore struct {
	db      *gorm.DB
	history *HistoryStore
}

func NewMembershipStore(db *gorm.DB) *MembershipStore {
	return &MembershipStore{db: db, history: NewHistoryStore(db)}
}

func (s *MembershipStore) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Group").Preload("User")
}

// FindSeenBefore returns active memberships last seen at or before cutoff.
func (s *MembershipStore) FindSeenBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	var memberships []models.GroupMembership
	err := s.preloaded(ctx).
		Where("lastseen_at <= ? AND inactive_at IS NULL", cutoff).
		Order("id").
		Find(&memberships).Error
	return memberships, err
}

// FindInactiveBefore returns unwarned memberships flagged inactive at or before cutoff.
func (s *MembershipStore) FindInactiveBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	var memberships []models.GroupMembership
	err := s.preloaded(ctx).
		Where("inactive_at <= ? AND removal_notification_at IS NULL", cutoff).
		Order("id").
		Find(&memberships).Error
	return memberships, err
}

// FindNotifiedBefore returns memberships warned at or before cutoff.
func (s *MembershipStore) FindNotifiedBefore(ctx context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	var memberships []models.GroupMembership
	err := s.preloaded(ctx).
		Where("removal_notification_at <= ?", cutoff).
		Order("id").
		Find(&memberships).Error
	return memberships, err
}

// FindByGroup returns all memberships of a group.
func (s *MembershipStore) FindByGroup(ctx context.Context, groupID uint) ([]models.GroupMembership, error) {
	var memberships []models.GroupMembership
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("id").
		Find(&memberships).Error
	return memberships, err
}

// Find returns the membership of a user in a group.
func (s *MembershipStore) Find(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveLifecycle writes only the lifecycle timestamps of m.
func (s *MembershipStore) SaveLifecycle(ctx context.Context, m *models.GroupMembership) error {
	result := s.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"inactive_at":             m.InactiveAt,
			"removal_notification_at": m.RemovalNotificationAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// Remove deletes the membership row and records typus for its user in the
// same transaction. A membership that is already gone is left alone.
func (s *MembershipStore) Remove(ctx context.Context, m *models.GroupMembership, typus models.HistoryTypus, payload map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.GroupMembership{}, m.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return s.history.create(tx, typus, m.GroupID, []uint{m.UserID}, payload)
	})
}

// MarkSeen records that the user was active in the group just now. A returning
// member starts over as active.
func (s *MembershipStore) MarkSeen(ctx context.Context, groupID, userID uint, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Updates(map[string]interface{}{
				"lastseen_at":             now,
				"inactive_at":             nil,
				"removal_notification_at": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMembershipNotFound
		}
		return tx.Model(&models.Group{}).
			Where("id = ?", groupID).
			Update("last_active_at", now).Error
	})
}
