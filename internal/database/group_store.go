package database

import (
	"context"
	"errors"
	"time"

	"foodshare/internal/models"

	"gorm.io/gorm"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupStore persists groups with gorm.
type GroupStore struct {
	db *gorm.DB
}

func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

// FindWithMembers returns groups that have at least one member, with members and users preloaded.
func (s *GroupStore) FindWithMembers(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		Where("EXISTS (SELECT 1 FROM group_membership WHERE group_membership.group_id = \"group\".id)").
		Order("id").
		Find(&groups).Error
	return groups, err
}

// FindAll returns every group.
func (s *GroupStore) FindAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).Order("id").Find(&groups).Error
	return groups, err
}

// FindByStatus returns groups in the given status.
func (s *GroupStore) FindByStatus(ctx context.Context, status models.GroupStatus) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&groups).Error
	return groups, err
}

// Find returns a single group.
func (s *GroupStore) Find(ctx context.Context, id uint) (*models.Group, error) {
	var g models.Group
	err := s.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GroupWithCount is a group with its number of members.
type GroupWithCount struct {
	models.Group
	MemberCount int64 `json:"member_count"`
}

// ListWithMemberCounts returns all groups with their member counts.
func (s *GroupStore) ListWithMemberCounts(ctx context.Context) ([]GroupWithCount, error) {
	groups, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		GroupID     uint
		MemberCount int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Select("group_id, COUNT(*) AS member_count").
		Group("group_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byGroup := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byGroup[c.GroupID] = c.MemberCount
	}

	result := make([]GroupWithCount, 0, len(groups))
	for _, g := range groups {
		result = append(result, GroupWithCount{Group: g, MemberCount: byGroup[g.ID]})
	}
	return result, nil
}

// UpdateStatus sets the status column of a group.
func (s *GroupStore) UpdateStatus(ctx context.Context, groupID uint, status models.GroupStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// AdvanceSummaryCursor moves sent_summary_up_to to upTo unless it is already
// at or past it.
func (s *GroupStore) AdvanceSummaryCursor(ctx context.Context, groupID uint, upTo time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ? AND (sent_summary_up_to IS NULL OR sent_summary_up_to < ?)", groupID, upTo).
		Update("sent_summary_up_to", upTo).Error
}
