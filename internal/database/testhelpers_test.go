package database

import (
	"context"
	"testing"
	"time"

	"foodshare/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)

// openTestDB returns a migrated in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), NewGormConfig(zaptest.NewLogger(t)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, DisplayName: email}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedGroup(t *testing.T, db *gorm.DB, name string) models.Group {
	t.Helper()
	g := models.Group{Name: name, Timezone: "UTC", Status: models.GroupActive, LastActiveAt: testNow}
	require.NoError(t, db.Create(&g).Error)
	return g
}

func seedMembership(t *testing.T, db *gorm.DB, g models.Group, u models.User, lastSeen time.Time) models.GroupMembership {
	t.Helper()
	m := models.GroupMembership{
		GroupID:           g.ID,
		UserID:            u.ID,
		CreatedAt:         lastSeen,
		LastSeenAt:        lastSeen,
		NotificationTypes: models.DefaultNotificationTypes(),
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func at(t time.Time) *time.Time {
	return &t
}

var bg = context.Background()
