package usecase

import (
	templatedomain "replydesk/internal/template/domain"
	templatedto "replydesk/internal/template/dto"
	"replydesk/internal/template/repository"
)

// defaultTemplates are seeded for a user by CreateDefaultTemplates.
var defaultTemplates = []templatedomain.QuickReplyTemplate{
	{
		Name:         "Account Activation (German)",
		TemplateText: "Dein Account auf www.myitjob.ch ist jetzt aktiv! Ich freue mich, dir mitteilen zu können, dass schon einige spannende Jobvorschläge auf dich warten. Es wäre grossartig, wenn du die Gelegenheit findest, dich bald einzuloggen und sie dir anzuschauen.",
		SortOrder:    1,
	},
	{
		Name:         "Thank You",
		TemplateText: "Thank you for your email. I appreciate you reaching out.",
		SortOrder:    2,
	},
	{
		Name:         "Follow Up",
		TemplateText: "I wanted to follow up on our previous conversation.",
		SortOrder:    3,
	},
}

// TemplateUsecase defines the quick reply template operations.
type TemplateUsecase interface {
	// GetUserTemplates returns all active templates, globally readable.
	GetUserTemplates() ([]templatedomain.QuickReplyTemplate, error)
	// GetTemplate returns an active template by id, or nil.
	GetTemplate(id string) (*templatedomain.QuickReplyTemplate, error)
	CreateTemplate(userID, name, templateText string, sortOrder int) (*templatedomain.QuickReplyTemplate, error)
	// UpdateTemplate applies the update when userID owns the template;
	// returns false otherwise.
	UpdateTemplate(id, userID string, req *templatedto.UpdateTemplateRequest) (bool, error)
	// DeleteTemplate removes the template when userID owns it; returns
	// false otherwise.
	DeleteTemplate(id, userID string) (bool, error)
	// CreateDefaultTemplates seeds the fixed starter templates for the
	// user. Idempotent: re-running updates the existing rows in place.
	CreateDefaultTemplates(userID string) error
}

// templateUsecase implements TemplateUsecase interface
type templateUsecase struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateUsecase creates a new instance of templateUsecase
func NewTemplateUsecase(templateRepo repository.TemplateRepository) TemplateUsecase {
	return &templateUsecase{
		templateRepo: templateRepo,
	}
}

func (u *templateUsecase) GetUserTemplates() ([]templatedomain.QuickReplyTemplate, error) {
	return u.templateRepo.ListActive()
}

func (u *templateUsecase) GetTemplate(id string) (*templatedomain.QuickReplyTemplate, error) {
	return u.templateRepo.FindActiveByID(id)
}

func (u *templateUsecase) CreateTemplate(userID, name, templateText string, sortOrder int) (*templatedomain.QuickReplyTemplate, error) {
	template := &templatedomain.QuickReplyTemplate{
		UserID:       userID,
		Name:         name,
		TemplateText: templateText,
		SortOrder:    sortOrder,
		IsActive:     true,
	}
	if err := u.templateRepo.Create(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (u *templateUsecase) UpdateTemplate(id, userID string, req *templatedto.UpdateTemplateRequest) (bool, error) {
	changes := map[string]interface{}{
		"name":          req.Name,
		"template_text": req.TemplateText,
	}
	if req.SortOrder != nil {
		changes["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}

	return u.templateRepo.UpdateOwned(id, userID, changes)
}

func (u *templateUsecase) DeleteTemplate(id, userID string) (bool, error) {
	return u.templateRepo.DeleteOwned(id, userID)
}

func (u *templateUsecase) CreateDefaultTemplates(userID string) error {
	for _, template := range defaultTemplates {
		t := template
		t.UserID = userID
		t.IsActive = true
		if err := u.templateRepo.UpsertByOwnerAndName(&t); err != nil {
			return err
		}
	}
	return nil
}
