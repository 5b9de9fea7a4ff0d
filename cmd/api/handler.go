package api

import (
	activityDelivery "replydesk/internal/activity/delivery"
	activityUsecasePkg "replydesk/internal/activity/usecase"
	authUsecasePkg "replydesk/internal/auth/usecase"
	replyDelivery "replydesk/internal/reply/delivery"
	replyUsecasePkg "replydesk/internal/reply/usecase"
	templateDelivery "replydesk/internal/template/delivery"
	templateUsecasePkg "replydesk/internal/template/usecase"
	"replydesk/pkg/config"
	"replydesk/pkg/imap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase     authUsecasePkg.AuthUsecase
	inboxHandler    *replyDelivery.InboxHandler
	templateHandler *templateDelivery.TemplateHandler
	activityHandler *activityDelivery.ActivityHandler
	config          *config.Config
	logger          *zap.Logger
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	replyUc replyUsecasePkg.ReplyUsecase,
	templateUc templateUsecasePkg.TemplateUsecase,
	activityUc activityUsecasePkg.ActivityUsecase,
	mailbox imap.MailboxReader,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		authUsecase:     authUc,
		inboxHandler:    replyDelivery.NewInboxHandler(mailbox, replyUc, templateUc, cfg, logger),
		templateHandler: templateDelivery.NewTemplateHandler(templateUc),
		activityHandler: activityDelivery.NewActivityHandler(activityUc, cfg),
		config:          cfg,
		logger:          logger,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.inboxHandler, h.templateHandler, h.activityHandler)

	return r.Run(addr)
}
