package database

import (
	"context"
	"time"

	"foodshare/internal/models"

	"gorm.io/gorm"
)

// ReportStore answers the counting queries of group summaries.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// CountMessages counts conversation messages of the group in [from, to).
func (s *ReportStore) CountMessages(ctx context.Context, groupID uint, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("group_id = ? AND created_at >= ? AND created_at < ?", groupID, from, to).
		Count(&count).Error
	return count, err
}

// CountFeedback counts feedback given on the group's activities in [from, to).
func (s *ReportStore) CountFeedback(ctx context.Context, groupID uint, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Joins("JOIN activity ON activity.id = feedback.activity_id").
		Where("activity.group_id = ? AND feedback.created_at >= ? AND feedback.created_at < ?", groupID, from, to).
		Count(&count).Error
	return count, err
}

// CountNewMembers counts memberships created in [from, to).
func (s *ReportStore) CountNewMembers(ctx context.Context, groupID uint, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND created_at >= ? AND created_at < ?", groupID, from, to).
		Count(&count).Error
	return count, err
}

// CountActivities counts activities in [from, to) that had participants (done)
// and enabled ones that had none (missed).
func (s *ReportStore) CountActivities(ctx context.Context, groupID uint, from, to time.Time) (int64, int64, error) {
	const hasParticipants = "EXISTS (SELECT 1 FROM activity_participant WHERE activity_participant.activity_id = activity.id)"

	window := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("group_id = ? AND date >= ? AND date < ?", groupID, from, to).
		Session(&gorm.Session{})

	var done int64
	if err := window.Where(hasParticipants).Count(&done).Error; err != nil {
		return 0, 0, err
	}

	var missed int64
	if err := window.
		Where("is_disabled = ?", false).
		Where("NOT " + hasParticipants).
		Count(&missed).Error; err != nil {
		return 0, 0, err
	}
	return done, missed, nil
}
