package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	AIModel string `json:"ai_model"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(aiModel string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{AIModel: aiModel}
}

// GetRuntimeAIModel returns the current completion model
func GetRuntimeAIModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.AIModel
}

// UpdateAISettingsRequest represents the request body for updating AI settings
type UpdateAISettingsRequest struct {
	AIModel string `json:"ai_model" binding:"required"`
}

// GetAISettings returns the current AI configuration
// GET /api/settings/ai
func GetAISettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"ai_model": runtimeConfig.AIModel,
	})
}

// UpdateAISettings switches the completion model at runtime
// PUT /api/settings/ai
func UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.AIModel = req.AIModel
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":  "AI settings updated successfully",
		"ai_model": req.AIModel,
	})
}
