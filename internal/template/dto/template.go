package dto

type CreateTemplateRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	TemplateText string `json:"template_text" binding:"required"`
	SortOrder    int    `json:"sort_order" binding:"omitempty,min=0"`
}

type UpdateTemplateRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	TemplateText string `json:"template_text" binding:"required"`
	SortOrder    *int   `json:"sort_order" binding:"omitempty"`
	IsActive     *bool  `json:"is_active" binding:"omitempty"`
}
