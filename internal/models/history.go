package models

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryTypus identifies what happened
type HistoryTypus string

const (
	HistoryGroupLeaveInactive HistoryTypus = "GROUP_LEAVE_INACTIVE"
)

// History is an append-only record of group events
type History struct {
	ID      uint                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Typus   HistoryTypus              `gorm:"size:40;not null;index" json:"typus"`
	GroupID uint                      `gorm:"not null;index" json:"group_id"`
	Users   datatypes.JSONSlice[uint] `json:"users"`
	Payload datatypes.JSONMap         `json:"payload"`
	Date    time.Time                 `gorm:"not null;index" json:"date"`
}

// TableName specifies the table name for the History model
func (History) TableName() string {
	return "history"
}
