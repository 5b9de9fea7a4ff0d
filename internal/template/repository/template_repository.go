package repository

import (
	"errors"
	"time"

	templatedomain "replydesk/internal/template/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateRepository defines persistence for quick reply templates.
type TemplateRepository interface {
	Create(template *templatedomain.QuickReplyTemplate) error
	// FindActiveByID returns an active template regardless of owner, or
	// nil when none exists.
	FindActiveByID(id string) (*templatedomain.QuickReplyTemplate, error)
	// ListActive returns all active templates ordered by (sort_order, name).
	ListActive() ([]templatedomain.QuickReplyTemplate, error)
	// UpdateOwned applies changes when the template belongs to userID.
	// Returns false when no matching row exists.
	UpdateOwned(id, userID string, changes map[string]interface{}) (bool, error)
	// DeleteOwned removes the template when it belongs to userID.
	// Returns false when no matching row exists.
	DeleteOwned(id, userID string) (bool, error)
	// UpsertByOwnerAndName creates the template or updates the existing
	// row with the same (owner, name).
	UpsertByOwnerAndName(template *templatedomain.QuickReplyTemplate) error
}

// templateRepository implements TemplateRepository interface
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new instance of templateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{
		db: db,
	}
}

func (r *templateRepository) Create(template *templatedomain.QuickReplyTemplate) error {
	template.ID = uuid.New().String()
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	return r.db.Create(template).Error
}

func (r *templateRepository) FindActiveByID(id string) (*templatedomain.QuickReplyTemplate, error) {
	var template templatedomain.QuickReplyTemplate
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListActive() ([]templatedomain.QuickReplyTemplate, error) {
	var templates []templatedomain.QuickReplyTemplate
	err := r.db.Where("is_active = ?", true).
		Order("sort_order").Order("name").
		Find(&templates).Error
	return templates, err
}

func (r *templateRepository) UpdateOwned(id, userID string, changes map[string]interface{}) (bool, error) {
	changes["updated_at"] = time.Now()
	result := r.db.Model(&templatedomain.QuickReplyTemplate{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(changes)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *templateRepository) DeleteOwned(id, userID string) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&templatedomain.QuickReplyTemplate{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *templateRepository) UpsertByOwnerAndName(template *templatedomain.QuickReplyTemplate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing templatedomain.QuickReplyTemplate
		err := tx.Where("user_id = ? AND name = ?", template.UserID, template.Name).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			template.ID = uuid.New().String()
			template.CreatedAt = time.Now()
			template.UpdatedAt = time.Now()
			return tx.Create(template).Error
		} else if err != nil {
			return err
		}

		existing.TemplateText = template.TemplateText
		existing.SortOrder = template.SortOrder
		existing.IsActive = template.IsActive
		existing.UpdatedAt = time.Now()
		return tx.Save(&existing).Error
	})
}
