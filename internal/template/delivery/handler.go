package delivery

import (
	"net/http"

	templatedto "replydesk/internal/template/dto"
	"replydesk/internal/template/usecase"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateUsecase usecase.TemplateUsecase
}

func NewTemplateHandler(templateUsecase usecase.TemplateUsecase) *TemplateHandler {
	return &TemplateHandler{
		templateUsecase: templateUsecase,
	}
}

func (h *TemplateHandler) Index(c *gin.Context) {
	templates, err := h.templateUsecase.GetUserTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Store(c *gin.Context) {
	var req templatedto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	template, err := h.templateUsecase.CreateTemplate(userID, req.Name, req.TemplateText, req.SortOrder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template": template,
		"message":  "Template created successfully.",
	})
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req templatedto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	userID := c.GetString("userID")

	ok, err := h.templateUsecase.UpdateTemplate(id, userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template updated successfully."})
}

func (h *TemplateHandler) Destroy(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("userID")

	ok, err := h.templateUsecase.DeleteTemplate(id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully."})
}

func (h *TemplateHandler) CreateDefaults(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.templateUsecase.CreateDefaultTemplates(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Default templates created successfully."})
}
