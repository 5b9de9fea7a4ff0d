package repository

import (
	"testing"
	"time"

	replydomain "replydesk/internal/reply/domain"
	"replydesk/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (EmailReplyRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&replydomain.EmailReply{}))

	return NewEmailReplyRepository(db), db
}

func TestFindByEmailReturnsNilWhenMissing(t *testing.T) {
	repo, _ := setupRepo(t)

	row, err := repo.FindByEmail("99", "default", "user-1")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSaveDraftUpsertsSingleRow(t *testing.T) {
	repo, db := setupRepo(t)

	history := replydomain.ChatHistory{
		{Role: ai.RoleSystem, Content: "persona"},
		{Role: ai.RoleUser, Content: "context"},
		{Role: ai.RoleUser, Content: "instruction"},
		{Role: ai.RoleAssistant, Content: "first draft"},
	}

	first, err := repo.SaveDraft("42", "default", "user-1", "first draft", history)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, replydomain.StatusDraft, first.Status)

	history = append(history,
		ai.Message{Role: ai.RoleUser, Content: "make it shorter"},
		ai.Message{Role: ai.RoleAssistant, Content: "second draft"})

	second, err := repo.SaveDraft("42", "default", "user-1", "second draft", history)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&replydomain.EmailReply{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := repo.FindByEmail("42", "default", "user-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "second draft", row.LatestAIReply)
	require.Len(t, row.ChatHistory, 6)
	assert.Equal(t, "second draft", row.ChatHistory[5].Content)
}

func TestSaveDraftSeparatesAccountsAndUsers(t *testing.T) {
	repo, db := setupRepo(t)

	_, err := repo.SaveDraft("42", "default", "user-1", "a", nil)
	require.NoError(t, err)
	_, err = repo.SaveDraft("42", "info", "user-1", "b", nil)
	require.NoError(t, err)
	_, err = repo.SaveDraft("42", "default", "user-2", "c", nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&replydomain.EmailReply{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestMarkSendingClearsPreviousFailure(t *testing.T) {
	repo, _ := setupRepo(t)

	row, err := repo.MarkSending("42", "default", "user-1", "body", "jane@example.com", "Re: hello")
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(row.ID, "connection refused"))

	row, err = repo.MarkSending("42", "default", "user-1", "body", "jane@example.com", "Re: hello")
	require.NoError(t, err)
	assert.Equal(t, replydomain.StatusSending, row.Status)
	assert.Empty(t, row.ErrorMessage)
	assert.Nil(t, row.FailedAt)
	assert.Equal(t, "jane@example.com", row.RecipientEmail)
	assert.Equal(t, "Re: hello", row.Subject)
}

func TestMarkSentRecordsTimestamp(t *testing.T) {
	repo, _ := setupRepo(t)

	row, err := repo.MarkSending("42", "default", "user-1", "body", "jane@example.com", "Re: hello")
	require.NoError(t, err)
	require.NoError(t, repo.MarkSent(row.ID))

	row, err = repo.FindByEmail("42", "default", "user-1")
	require.NoError(t, err)
	assert.Equal(t, replydomain.StatusSent, row.Status)
	require.NotNil(t, row.SentAt)
	assert.WithinDuration(t, time.Now(), *row.SentAt, 5*time.Second)
}

// seedOutcome inserts a finished reply row directly, bypassing the state
// machine, so stats scenarios can control timestamps.
func seedOutcome(t *testing.T, db *gorm.DB, id, userID, account string, status replydomain.Status, when time.Time) {
	t.Helper()

	row := replydomain.EmailReply{
		ID:        id,
		EmailID:   id,
		Account:   account,
		UserID:    userID,
		Status:    status,
		CreatedAt: when,
		UpdatedAt: when,
	}
	switch status {
	case replydomain.StatusSent:
		row.SentAt = &when
	case replydomain.StatusFailed:
		row.FailedAt = &when
	}
	require.NoError(t, db.Create(&row).Error)
}

func TestStats(t *testing.T) {
	repo, db := setupRepo(t)

	now := time.Now()
	seedOutcome(t, db, "r1", "user-1", "default", replydomain.StatusSent, now.Add(-time.Minute))
	seedOutcome(t, db, "r2", "user-1", "default", replydomain.StatusSent, now.AddDate(0, 0, -10))
	seedOutcome(t, db, "r3", "user-1", "info", replydomain.StatusFailed, now.Add(-time.Minute))
	// another user's activity must not leak in
	seedOutcome(t, db, "r4", "user-2", "default", replydomain.StatusSent, now)

	stats, err := repo.Stats("user-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSent)
	assert.Equal(t, int64(1), stats.SentToday)
	assert.Equal(t, int64(1), stats.SentThisWeek)
	assert.Equal(t, int64(1), stats.FailedCount)

	stats, err = repo.Stats("user-1", "info")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalSent)
	assert.Equal(t, int64(1), stats.FailedCount)
}

func TestAccountStats(t *testing.T) {
	repo, db := setupRepo(t)

	now := time.Now()
	seedOutcome(t, db, "r1", "user-1", "default", replydomain.StatusSent, now)
	seedOutcome(t, db, "r2", "user-1", "default", replydomain.StatusSent, now)
	seedOutcome(t, db, "r3", "user-1", "default", replydomain.StatusFailed, now)
	seedOutcome(t, db, "r4", "user-1", "info", replydomain.StatusSent, now)

	breakdown, err := repo.AccountStats("user-1")
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, int64(2), breakdown["default"].Sent)
	assert.Equal(t, int64(1), breakdown["default"].Failed)
	assert.Equal(t, int64(1), breakdown["info"].Sent)
	assert.Equal(t, int64(0), breakdown["info"].Failed)
}

func TestRecentActivityExcludesDraftsAndSending(t *testing.T) {
	repo, db := setupRepo(t)

	now := time.Now()
	seedOutcome(t, db, "r1", "user-1", "default", replydomain.StatusSent, now)
	seedOutcome(t, db, "r2", "user-1", "default", replydomain.StatusFailed, now)

	_, err := repo.SaveDraft("99", "default", "user-1", "draft only", nil)
	require.NoError(t, err)
	_, err = repo.MarkSending("98", "default", "user-1", "in flight", "a@b.c", "Re: x")
	require.NoError(t, err)

	rows, err := repo.RecentActivity("user-1", "", 20)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.RecentUpdated("user-1", "", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
