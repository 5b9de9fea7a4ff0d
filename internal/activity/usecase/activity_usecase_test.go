package usecase

import (
	"testing"
	"time"

	replydomain "replydesk/internal/reply/domain"
	replyRepo "replydesk/internal/reply/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupActivity(t *testing.T) (ActivityUsecase, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&replydomain.EmailReply{}))

	return NewActivityUsecase(replyRepo.NewEmailReplyRepository(db)), db
}

func seedReply(t *testing.T, db *gorm.DB, id, account string, status replydomain.Status, when time.Time) {
	t.Helper()

	row := replydomain.EmailReply{
		ID:        id,
		EmailID:   id,
		Account:   account,
		UserID:    "user-1",
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

func TestDashboardAggregates(t *testing.T) {
	uc, db := setupActivity(t)

	now := time.Now()
	seedReply(t, db, "r1", "default", replydomain.StatusSent, now.Add(-time.Minute))
	seedReply(t, db, "r2", "info", replydomain.StatusFailed, now.Add(-2*time.Minute))
	seedReply(t, db, "r3", "default", replydomain.StatusDraft, now)

	dashboard, err := uc.Dashboard("user-1", "")
	require.NoError(t, err)

	assert.Len(t, dashboard.Activities, 2)
	assert.Equal(t, int64(1), dashboard.Stats.TotalSent)
	assert.Equal(t, int64(1), dashboard.Stats.FailedCount)
	require.Len(t, dashboard.Accounts, 2)
	assert.Equal(t, int64(1), dashboard.Accounts["default"].Sent)
	assert.Equal(t, int64(1), dashboard.Accounts["info"].Failed)
}

func TestDashboardFiltersByAccount(t *testing.T) {
	uc, db := setupActivity(t)

	now := time.Now()
	seedReply(t, db, "r1", "default", replydomain.StatusSent, now)
	seedReply(t, db, "r2", "info", replydomain.StatusSent, now)

	dashboard, err := uc.Dashboard("user-1", "info")
	require.NoError(t, err)

	assert.Len(t, dashboard.Activities, 1)
	assert.Equal(t, int64(1), dashboard.Stats.TotalSent)
	// account breakdown always spans all accounts
	assert.Len(t, dashboard.Accounts, 2)
}

func TestRecentIncludesInFlightRows(t *testing.T) {
	uc, db := setupActivity(t)

	now := time.Now()
	seedReply(t, db, "r1", "default", replydomain.StatusSent, now.Add(-time.Hour))
	seedReply(t, db, "r2", "default", replydomain.StatusSending, now)

	rows, err := uc.Recent("user-1", "")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, replydomain.StatusSending, rows[0].Status)
}
