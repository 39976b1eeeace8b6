package database

import (
	"testing"

	"foodshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStoreFindWithMembers(t *testing.T) {
	db := openTestDB(t)
	store := NewGroupStore(db)

	withMembers := seedGroup(t, db, "Busy")
	seedGroup(t, db, "Empty")
	seedMembership(t, db, withMembers, seedUser(t, db, "a@example.com"), testNow)
	seedMembership(t, db, withMembers, seedUser(t, db, "b@example.com"), testNow)

	groups, err := store.FindWithMembers(bg)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Busy", groups[0].Name)
	require.Len(t, groups[0].Members, 2)
	assert.NotEmpty(t, groups[0].Members[0].User.Email)
}

func TestGroupStoreListWithMemberCounts(t *testing.T) {
	db := openTestDB(t)
	store := NewGroupStore(db)

	busy := seedGroup(t, db, "Busy")
	seedGroup(t, db, "Empty")
	seedMembership(t, db, busy, seedUser(t, db, "a@example.com"), testNow)
	seedMembership(t, db, busy, seedUser(t, db, "b@example.com"), testNow)

	groups, err := store.ListWithMemberCounts(bg)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(2), groups[0].MemberCount)
	assert.Equal(t, int64(0), groups[1].MemberCount)
}

func TestGroupStoreStatus(t *testing.T) {
	db := openTestDB(t)
	store := NewGroupStore(db)
	g := seedGroup(t, db, "Sleepy")

	require.NoError(t, store.UpdateStatus(bg, g.ID, models.GroupInactive))

	inactive, err := store.FindByStatus(bg, models.GroupInactive)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, g.ID, inactive[0].ID)

	assert.ErrorIs(t, store.UpdateStatus(bg, 999, models.GroupInactive), ErrGroupNotFound)

	_, err = store.Find(bg, 999)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupStoreSummaryCursorIsMonotonic(t *testing.T) {
	db := openTestDB(t)
	store := NewGroupStore(db)
	g := seedGroup(t, db, "Weekly")

	require.NoError(t, store.AdvanceSummaryCursor(bg, g.ID, testNow))
	require.NoError(t, store.AdvanceSummaryCursor(bg, g.ID, testNow.AddDate(0, 0, -7)))

	stored, err := store.Find(bg, g.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SentSummaryUpTo)
	assert.True(t, stored.SentSummaryUpTo.Equal(testNow))

	next := testNow.AddDate(0, 0, 7)
	require.NoError(t, store.AdvanceSummaryCursor(bg, g.ID, next))
	stored, err = store.Find(bg, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.SentSummaryUpTo.Equal(next))
}
