package repository

import (
	"errors"
	"time"

	replydomain "replydesk/internal/reply/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailReplyRepository defines persistence for email reply records.
type EmailReplyRepository interface {
	// FindByEmail returns the reply row for (email_id, account, user_id),
	// or nil when none exists.
	FindByEmail(emailID, account, userID string) (*replydomain.EmailReply, error)
	// SaveDraft upserts the draft text and chat history. Status becomes
	// draft; sent_at is left untouched.
	SaveDraft(emailID, account, userID, reply string, history replydomain.ChatHistory) (*replydomain.EmailReply, error)
	// MarkSending upserts the row into the sending state with a
	// recipient/subject snapshot, clearing any previous failure.
	MarkSending(emailID, account, userID, reply, recipient, subject string) (*replydomain.EmailReply, error)
	// MarkSent records a confirmed delivery.
	MarkSent(id string) error
	// MarkFailed records a delivery failure and its error message.
	MarkFailed(id, errorMessage string) error

	// RecentActivity returns sent/failed rows, most recent outcome first.
	RecentActivity(userID, account string, limit int) ([]replydomain.EmailReply, error)
	// RecentUpdated returns the latest rows including the transient
	// sending state, ordered by last update.
	RecentUpdated(userID, account string, limit int) ([]replydomain.EmailReply, error)
	// Stats aggregates send outcomes for the user.
	Stats(userID, account string) (replydomain.ActivityStats, error)
	// AccountStats tallies sent/failed per account for the user.
	AccountStats(userID string) (map[string]replydomain.AccountBreakdown, error)
}

// emailReplyRepository implements EmailReplyRepository interface
type emailReplyRepository struct {
	db *gorm.DB
}

// NewEmailReplyRepository creates a new instance of emailReplyRepository
func NewEmailReplyRepository(db *gorm.DB) EmailReplyRepository {
	return &emailReplyRepository{
		db: db,
	}
}

func (r *emailReplyRepository) FindByEmail(emailID, account, userID string) (*replydomain.EmailReply, error) {
	var reply replydomain.EmailReply
	err := r.db.Where("email_id = ? AND account = ? AND user_id = ?", emailID, account, userID).First(&reply).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

// upsert runs a read-then-insert-or-update inside a transaction so the
// natural-key upsert cannot race itself into duplicate rows.
func (r *emailReplyRepository) upsert(emailID, account, userID string, apply func(*replydomain.EmailReply)) (*replydomain.EmailReply, error) {
	var result *replydomain.EmailReply

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing replydomain.EmailReply
		err := tx.Where("email_id = ? AND account = ? AND user_id = ?", emailID, account, userID).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			existing = replydomain.EmailReply{
				ID:        uuid.New().String(),
				EmailID:   emailID,
				Account:   account,
				UserID:    userID,
				CreatedAt: time.Now(),
			}
			apply(&existing)
			existing.UpdatedAt = time.Now()
			result = &existing
			return tx.Create(&existing).Error
		} else if err != nil {
			return err
		}

		apply(&existing)
		existing.UpdatedAt = time.Now()
		result = &existing
		return tx.Save(&existing).Error
	})

	return result, err
}

func (r *emailReplyRepository) SaveDraft(emailID, account, userID, reply string, history replydomain.ChatHistory) (*replydomain.EmailReply, error) {
	return r.upsert(emailID, account, userID, func(row *replydomain.EmailReply) {
		row.LatestAIReply = reply
		row.ChatHistory = history
		row.Status = replydomain.StatusDraft
		// sent_at remains untouched for drafts
	})
}

func (r *emailReplyRepository) MarkSending(emailID, account, userID, reply, recipient, subject string) (*replydomain.EmailReply, error) {
	return r.upsert(emailID, account, userID, func(row *replydomain.EmailReply) {
		row.LatestAIReply = reply
		row.Status = replydomain.StatusSending
		row.RecipientEmail = recipient
		row.Subject = subject
		row.ErrorMessage = ""
		row.FailedAt = nil
	})
}

func (r *emailReplyRepository) MarkSent(id string) error {
	now := time.Now()
	return r.db.Model(&replydomain.EmailReply{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        replydomain.StatusSent,
		"sent_at":       now,
		"error_message": "",
		"updated_at":    now,
	}).Error
}

func (r *emailReplyRepository) MarkFailed(id, errorMessage string) error {
	now := time.Now()
	return r.db.Model(&replydomain.EmailReply{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        replydomain.StatusFailed,
		"failed_at":     now,
		"error_message": errorMessage,
		"updated_at":    now,
	}).Error
}

func (r *emailReplyRepository) RecentActivity(userID, account string, limit int) ([]replydomain.EmailReply, error) {
	query := r.db.Where("user_id = ?", userID).
		Where("status IN ?", []replydomain.Status{replydomain.StatusSent, replydomain.StatusFailed})
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var replies []replydomain.EmailReply
	err := query.Order("sent_at desc").Order("failed_at desc").Limit(limit).Find(&replies).Error
	return replies, err
}

func (r *emailReplyRepository) RecentUpdated(userID, account string, limit int) ([]replydomain.EmailReply, error) {
	query := r.db.Where("user_id = ?", userID).
		Where("status IN ?", []replydomain.Status{replydomain.StatusSent, replydomain.StatusFailed, replydomain.StatusSending})
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var replies []replydomain.EmailReply
	err := query.Order("updated_at desc").Limit(limit).Find(&replies).Error
	return replies, err
}

func (r *emailReplyRepository) Stats(userID, account string) (replydomain.ActivityStats, error) {
	var stats replydomain.ActivityStats

	base := func() *gorm.DB {
		q := r.db.Model(&replydomain.EmailReply{}).Where("user_id = ?", userID)
		if account != "" {
			q = q.Where("account = ?", account)
		}
		return q
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := startOfWeek(now)

	if err := base().Where("status = ?", replydomain.StatusSent).Count(&stats.TotalSent).Error; err != nil {
		return stats, err
	}
	if err := base().Where("status = ? AND sent_at >= ?", replydomain.StatusSent, dayStart).Count(&stats.SentToday).Error; err != nil {
		return stats, err
	}
	if err := base().Where("status = ? AND sent_at >= ? AND sent_at <= ?", replydomain.StatusSent, weekStart, now).Count(&stats.SentThisWeek).Error; err != nil {
		return stats, err
	}
	if err := base().Where("status = ?", replydomain.StatusFailed).Count(&stats.FailedCount).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

func (r *emailReplyRepository) AccountStats(userID string) (map[string]replydomain.AccountBreakdown, error) {
	var rows []struct {
		Account string
		Status  replydomain.Status
		Count   int64
	}

	err := r.db.Model(&replydomain.EmailReply{}).
		Select("account, status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Where("status IN ?", []replydomain.Status{replydomain.StatusSent, replydomain.StatusFailed}).
		Group("account").Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]replydomain.AccountBreakdown, len(rows))
	for _, row := range rows {
		breakdown := result[row.Account]
		switch row.Status {
		case replydomain.StatusSent:
			breakdown.Sent = row.Count
		case replydomain.StatusFailed:
			breakdown.Failed = row.Count
		}
		result[row.Account] = breakdown
	}
	return result, nil
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
