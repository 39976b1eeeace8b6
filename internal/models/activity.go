package models

import "time"

// Activity is a scheduled pickup of a group
type Activity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GroupID    uint      `gorm:"not null;index:idx_activity_group_date" json:"group_id"`
	Date       time.Time `gorm:"not null;index:idx_activity_group_date" json:"date"`
	IsDisabled bool      `gorm:"not null;default:false" json:"is_disabled"`

	Participants []ActivityParticipant `gorm:"foreignKey:ActivityID" json:"participants"`
}

// ActivityParticipant links a user to an activity they signed up for
type ActivityParticipant struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ActivityID uint `gorm:"not null;uniqueIndex:idx_participant_activity_user" json:"activity_id"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_participant_activity_user" json:"user_id"`
}

// Feedback is given by a participant after an activity
type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;index" json:"activity_id"`
	GivenByID  uint      `gorm:"not null" json:"given_by_id"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
