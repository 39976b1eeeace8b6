package database

import (
	"context"
	"time"

	"foodshare/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryStore appends history records.
type HistoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Append inserts a new history record.
func (s *HistoryStore) Append(ctx context.Context, typus models.HistoryTypus, groupID uint, users []uint, payload map[string]any) error {
	return s.create(s.db.WithContext(ctx), typus, groupID, users, payload)
}

func (s *HistoryStore) create(tx *gorm.DB, typus models.HistoryTypus, groupID uint, users []uint, payload map[string]any) error {
	entry := models.History{
		Typus:   typus,
		GroupID: groupID,
		Users:   datatypes.JSONSlice[uint](users),
		Payload: datatypes.JSONMap(payload),
		Date:    s.now(),
	}
	return tx.Create(&entry).Error
}

// ForGroup returns a group's history, newest first.
func (s *HistoryStore) ForGroup(ctx context.Context, groupID uint) ([]models.History, error) {
	var entries []models.History
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
