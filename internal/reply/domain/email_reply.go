package domain

import (
	"time"

	"replydesk/pkg/ai"
)

// Status is the lifecycle state of an email reply.
// Transitions: draft -> sending -> sent | failed. A new send request
// re-enters sending on the same row; there is no way back to draft.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// ChatHistory is the append-only log of the AI conversation for one email.
type ChatHistory []ai.Message

// EmailReply tracks the draft/send record for one email, account and user.
// At most one row exists per (email_id, account, user_id).
type EmailReply struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	EmailID        string      `json:"email_id" gorm:"uniqueIndex:idx_email_account_user;not null"`
	Account        string      `json:"account" gorm:"uniqueIndex:idx_email_account_user;index;not null"`
	UserID         string      `json:"user_id" gorm:"uniqueIndex:idx_email_account_user;index;not null"`
	LatestAIReply  string      `json:"latest_ai_reply" gorm:"type:text"`
	ChatHistory    ChatHistory `json:"chat_history" gorm:"type:text;serializer:json"`
	Status         Status      `json:"status" gorm:"default:draft;index"`
	SentAt         *time.Time  `json:"sent_at"`
	FailedAt       *time.Time  `json:"failed_at"`
	ErrorMessage   string      `json:"error_message,omitempty" gorm:"type:text"`
	RecipientEmail string      `json:"recipient_email,omitempty"`
	Subject        string      `json:"subject,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (EmailReply) TableName() string {
	return "email_replies"
}

// ActivityStats aggregates send outcomes for one user.
type ActivityStats struct {
	TotalSent    int64 `json:"total_sent"`
	SentToday    int64 `json:"sent_today"`
	SentThisWeek int64 `json:"sent_this_week"`
	FailedCount  int64 `json:"failed_count"`
}

// AccountBreakdown is the per-account sent/failed tally.
type AccountBreakdown struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}
