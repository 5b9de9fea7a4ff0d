package delivery

import (
	"net/http"

	activityUsecase "replydesk/internal/activity/usecase"
	"replydesk/pkg/config"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityUsecase activityUsecase.ActivityUsecase
	cfg             *config.Config
}

func NewActivityHandler(uc activityUsecase.ActivityUsecase, cfg *config.Config) *ActivityHandler {
	return &ActivityHandler{activityUsecase: uc, cfg: cfg}
}

// Index renders the send-activity dashboard for the user.
func (h *ActivityHandler) Index(c *gin.Context) {
	account, _ := h.cfg.Account(c.Query("account"))
	userID := c.GetString("userID")

	dashboard, err := h.activityUsecase.Dashboard(userID, account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities":   dashboard.Activities,
		"stats":        dashboard.Stats,
		"accountStats": dashboard.Accounts,
		"account":      account,
	})
}

// Recent returns the latest reply rows, including in-flight ones, for
// polling clients.
func (h *ActivityHandler) Recent(c *gin.Context) {
	account, _ := h.cfg.Account(c.Query("account"))
	userID := c.GetString("userID")

	activities, err := h.activityUsecase.Recent(userID, account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
