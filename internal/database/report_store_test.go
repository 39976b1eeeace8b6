package database

import (
	"testing"

	"foodshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStoreCountsInsideWindow(t *testing.T) {
	db := openTestDB(t)
	store := NewReportStore(db)

	g := seedGroup(t, db, "Report")
	other := seedGroup(t, db, "Other")
	u := seedUser(t, db, "a@example.com")

	from := testNow.AddDate(0, 0, -7)
	to := testNow
	inside := testNow.AddDate(0, 0, -3)
	before := from.AddDate(0, 0, -1)

	require.NoError(t, db.Create(&[]models.Message{
		{GroupID: g.ID, AuthorID: u.ID, Content: "hi", CreatedAt: inside},
		{GroupID: g.ID, AuthorID: u.ID, Content: "edge", CreatedAt: from},
		{GroupID: g.ID, AuthorID: u.ID, Content: "too late", CreatedAt: to},
		{GroupID: g.ID, AuthorID: u.ID, Content: "old", CreatedAt: before},
		{GroupID: other.ID, AuthorID: u.ID, Content: "elsewhere", CreatedAt: inside},
	}).Error)

	seedMembership(t, db, g, u, inside)
	seedMembership(t, db, g, seedUser(t, db, "old@example.com"), before)

	done := models.Activity{GroupID: g.ID, Date: inside}
	missed := models.Activity{GroupID: g.ID, Date: inside}
	disabled := models.Activity{GroupID: g.ID, Date: inside, IsDisabled: true}
	outside := models.Activity{GroupID: g.ID, Date: before}
	for _, a := range []*models.Activity{&done, &missed, &disabled, &outside} {
		require.NoError(t, db.Create(a).Error)
	}
	require.NoError(t, db.Create(&models.ActivityParticipant{ActivityID: done.ID, UserID: u.ID}).Error)
	require.NoError(t, db.Create(&models.Feedback{ActivityID: done.ID, GivenByID: u.ID, Comment: "great", CreatedAt: inside}).Error)
	require.NoError(t, db.Create(&models.Feedback{ActivityID: outside.ID, GivenByID: u.ID, CreatedAt: before}).Error)

	messages, err := store.CountMessages(bg, g.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), messages)

	members, err := store.CountNewMembers(bg, g.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), members)

	feedback, err := store.CountFeedback(bg, g.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), feedback)

	doneCount, missedCount, err := store.CountActivities(bg, g.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doneCount)
	assert.Equal(t, int64(1), missedCount)
}
