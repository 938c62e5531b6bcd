package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"researchnett/internal/db/dbtest"
	"researchnett/internal/model"
)

func newUser(t *testing.T, gdb *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(gdb).Create(context.Background(), u))
	return u
}

func newCall(t *testing.T, repo CallRepository, owner uuid.UUID, title string, keywords []string, createdAt time.Time) *model.CollabCall {
	t.Helper()
	c := &model.CollabCall{
		OwnerUserID:      owner,
		Title:            title,
		Summary:          "summary of " + title,
		CollaborationFor: model.CallCategoryResearch,
		Keywords:         keywords,
		CreatedAt:        createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestUserRepository(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	u := newUser(t, gdb, "a.b@nitt.edu")
	assert.NotEqual(t, uuid.Nil, u.ID)

	err := repo.Create(ctx, &model.User{Email: "a.b@nitt.edu", PasswordHash: "y"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.FindByEmail(ctx, "a.b@nitt.edu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.False(t, found.Confirmed())

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.ConfirmEmail(ctx, u.ID, at))
	require.NoError(t, repo.ConfirmEmail(ctx, u.ID, at.Add(time.Hour)))
	found, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, found.Confirmed())
	assert.True(t, found.EmailConfirmedAt.Equal(at))

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "h"), gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdminRepository(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewAdminRepository(gdb)
	ctx := context.Background()
	u := newUser(t, gdb, "admin@nitt.edu")

	ok, err := repo.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Grant(ctx, u.ID))
	require.NoError(t, repo.Grant(ctx, u.ID))
	ok, _ = repo.IsAdmin(ctx, u.ID)
	assert.True(t, ok)

	admins, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	removed, err := repo.Revoke(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, _ = repo.Revoke(ctx, u.ID)
	assert.False(t, removed)
}

func TestProfileRepository(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewProfileRepository(gdb)
	ctx := context.Background()
	u := newUser(t, gdb, "p@nitt.edu")
	other := newUser(t, gdb, "q@nitt.edu")

	p := &model.Profile{UserID: u.ID, FullName: "P", Department: "CSE", InstituteURL: "https://nitt.edu/p"}
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, &model.Profile{UserID: u.ID, FullName: "dup"}), gorm.ErrDuplicatedKey)

	exists, err := repo.ExistsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	overview := "Graph learning"
	p.Department = "EEE"
	p.Overview = &overview
	require.NoError(t, repo.Update(ctx, p))
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "EEE", got.Department)
	require.NotNil(t, got.Overview)
	assert.Equal(t, overview, *got.Overview)

	assert.ErrorIs(t, repo.Update(ctx, &model.Profile{UserID: other.ID, FullName: "x"}), gorm.ErrRecordNotFound)

	byUser, err := repo.FindByUserIDs(ctx, []uuid.UUID{u.ID, other.ID})
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
	assert.Equal(t, "P", byUser[u.ID].FullName)
}

func TestCallRepository_SearchByKeywordOverlap(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewCallRepository(gdb)
	ctx := context.Background()
	owner := newUser(t, gdb, "o@nitt.edu").ID
	base := time.Now().UTC().Add(-time.Hour)

	older := newCall(t, repo, owner, "older", []string{"ai", "bio"}, base)
	newer := newCall(t, repo, owner, "newer", []string{"ai"}, base.Add(time.Minute))
	other := newCall(t, repo, owner, "other", []string{"chem"}, base.Add(2*time.Minute))

	all, err := repo.Search(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{other.ID, newer.ID, older.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	hits, err := repo.Search(ctx, []string{"ai", "bio"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, newer.ID, hits[0].ID)
	assert.Equal(t, older.ID, hits[1].ID)
	assert.Equal(t, []string{"ai", "bio"}, hits[1].Keywords)

	none, err := repo.Search(ctx, []string{"physics"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCallRepository_UpdateRebuildsKeywordsAndChecksOwner(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewCallRepository(gdb)
	ctx := context.Background()
	owner := newUser(t, gdb, "o@nitt.edu").ID

	c := newCall(t, repo, owner, "t", []string{"ai"}, time.Now().UTC())
	c.Keywords = []string{"quantum"}
	c.Links = []string{"https://x.org"}
	require.NoError(t, repo.Update(ctx, c))
	require.NoError(t, repo.Update(ctx, c))

	hits, err := repo.Search(ctx, []string{"ai"})
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = repo.Search(ctx, []string{"quantum"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"https://x.org"}, hits[0].Links)

	foreign := *c
	foreign.OwnerUserID = uuid.New()
	assert.ErrorIs(t, repo.Update(ctx, &foreign), gorm.ErrRecordNotFound)

	c.Links = nil
	require.NoError(t, repo.Update(ctx, c))
	var raw sql.NullString
	require.NoError(t, gdb.Raw("SELECT links FROM collab_calls WHERE id = ?", c.ID).Row().Scan(&raw))
	assert.False(t, raw.Valid)
}

func TestCallRepository_DeleteCascades(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewCallRepository(gdb)
	engagement := NewEngagementRepository(gdb)
	ctx := context.Background()
	owner := newUser(t, gdb, "o@nitt.edu").ID
	fan := newUser(t, gdb, "f@nitt.edu").ID

	c := newCall(t, repo, owner, "t", []string{"ai"}, time.Now().UTC())
	require.NoError(t, engagement.AddInterest(ctx, &model.Interest{CallID: c.ID, UserID: fan}))
	require.NoError(t, engagement.AddBookmark(ctx, &model.Bookmark{CallID: c.ID, UserID: fan}))

	deleted, err := repo.Delete(ctx, c.ID, fan)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, c.ID, owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, m := range []interface{}{&model.CallKeyword{}, &model.Interest{}, &model.Bookmark{}} {
		var count int64
		require.NoError(t, gdb.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestEngagementRepository(t *testing.T) {
	gdb := dbtest.New(t)
	calls := NewCallRepository(gdb)
	repo := NewEngagementRepository(gdb)
	ctx := context.Background()
	owner := newUser(t, gdb, "o@nitt.edu").ID
	fan := newUser(t, gdb, "f@nitt.edu").ID
	c := newCall(t, calls, owner, "t", nil, time.Now().UTC())

	require.NoError(t, repo.AddInterest(ctx, &model.Interest{CallID: c.ID, UserID: fan}))
	assert.ErrorIs(t, repo.AddInterest(ctx, &model.Interest{CallID: c.ID, UserID: fan}), gorm.ErrDuplicatedKey)

	has, err := repo.HasInterest(ctx, c.ID, fan)
	require.NoError(t, err)
	assert.True(t, has)
	has, _ = repo.HasBookmark(ctx, c.ID, fan)
	assert.False(t, has)

	ids, err := calls.ListIDsByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID}, ids)

	times, err := repo.RecentInterestTimes(ctx, ids, 200)
	require.NoError(t, err)
	assert.Len(t, times, 1)

	on, err := repo.ListInterestsOnCalls(ctx, ids)
	require.NoError(t, err)
	require.Len(t, on, 1)
	assert.Equal(t, fan, on[0].UserID)

	empty, err := repo.RecentInterestTimes(ctx, nil, 200)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFounderRepository_DecideIfPending(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewFounderRepository(gdb)
	ctx := context.Background()
	u := newUser(t, gdb, "f@nitt.edu").ID
	admin := newUser(t, gdb, "admin@nitt.edu").ID

	req := &model.FoundingMemberRequest{UserID: u, Email: "f@nitt.edu"}
	require.NoError(t, repo.Create(ctx, req))
	assert.Equal(t, model.FounderStatusPending, req.Status)
	assert.ErrorIs(t, repo.Create(ctx, &model.FoundingMemberRequest{UserID: u, Email: "f@nitt.edu"}), gorm.ErrDuplicatedKey)

	pending, err := repo.CountByStatus(ctx, model.FounderStatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	now := time.Now().UTC()
	ok, err := repo.DecideIfPending(ctx, req.ID, model.FounderStatusApproved, admin, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecideIfPending(ctx, req.ID, model.FounderStatusRejected, admin, now)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FounderStatusApproved, stored.Status)
	require.NotNil(t, stored.DecidedBy)
	assert.Equal(t, admin, *stored.DecidedBy)

	approved, err := repo.List(ctx, model.FounderStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
	rejected, err := repo.List(ctx, model.FounderStatusRejected)
	require.NoError(t, err)
	assert.Empty(t, rejected)

	removed, err := repo.Delete(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestFeedbackAndAdRepositories(t *testing.T) {
	gdb := dbtest.New(t)
	feedback := NewFeedbackRepository(gdb)
	ads := NewAdRepository(gdb)
	ctx := context.Background()
	u := newUser(t, gdb, "u@nitt.edu").ID

	f := &model.Feedback{UserID: u, Email: "u@nitt.edu", Kind: model.FeedbackKindBug, Message: "broken"}
	require.NoError(t, feedback.Create(ctx, f))
	count, err := feedback.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	removed, err := feedback.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	items, err := feedback.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, ads.Create(ctx, &model.Ad{OwnerUserID: u, Title: "t", Summary: "s"}))
	list, err := ads.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
