package domain

import "time"

// QuickReplyTemplate is a reusable canned message body usable as a
// starting instruction for AI generation. Active templates are readable by
// everyone; only the owner may change or delete one.
type QuickReplyTemplate struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex:idx_owner_name;index;not null"`
	Name         string    `json:"name" gorm:"uniqueIndex:idx_owner_name;not null"`
	TemplateText string    `json:"template_text" gorm:"type:text;not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	SortOrder    int       `json:"sort_order" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (QuickReplyTemplate) TableName() string {
	return "quick_reply_templates"
}
