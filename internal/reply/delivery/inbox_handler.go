package delivery

import (
	"net/http"
	"strings"

	replydomain "replydesk/internal/reply/domain"
	replydto "replydesk/internal/reply/dto"
	replyUsecase "replydesk/internal/reply/usecase"
	templateUsecase "replydesk/internal/template/usecase"
	"replydesk/pkg/config"
	"replydesk/pkg/imap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InboxHandler struct {
	mailbox         imap.MailboxReader
	replyUsecase    replyUsecase.ReplyUsecase
	templateUsecase templateUsecase.TemplateUsecase
	cfg             *config.Config
	logger          *zap.Logger
}

func NewInboxHandler(mailbox imap.MailboxReader, replyUC replyUsecase.ReplyUsecase, templateUC templateUsecase.TemplateUsecase, cfg *config.Config, logger *zap.Logger) *InboxHandler {
	return &InboxHandler{
		mailbox:         mailbox,
		replyUsecase:    replyUC,
		templateUsecase: templateUC,
		cfg:             cfg,
		logger:          logger,
	}
}

// Index lists the inbox for the requested account. An IMAP failure is
// reported inside a normal page payload, not as an HTTP error.
func (h *InboxHandler) Index(c *gin.Context) {
	account, _ := h.cfg.Account(c.Query("account"))

	emails, err := h.mailbox.ListInbox(c.Request.Context(), account)
	if err != nil {
		h.logger.Error("error retrieving emails from IMAP server",
			zap.String("account", account),
			zap.Error(err))

		c.JSON(http.StatusOK, gin.H{
			"emails":  []imap.EmailSummary{},
			"account": account,
			"error":   "Failed to connect to the email server: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emails":  emails,
		"account": account,
	})
}

// Show returns one email together with any existing draft, its chat
// history, the account signature and the active quick reply templates.
func (h *InboxHandler) Show(c *gin.Context) {
	id := c.Param("id")
	account, _ := h.cfg.Account(c.Query("account"))
	userID := c.GetString("userID")

	email, err := h.mailbox.GetEmail(c.Request.Context(), id, account)
	if err != nil {
		h.logger.Error("error retrieving email details",
			zap.String("email_id", id),
			zap.String("account", account),
			zap.Error(err))

		c.JSON(http.StatusOK, gin.H{
			"email":   nil,
			"account": account,
			"error":   "Failed to retrieve email: " + err.Error(),
		})
		return
	}
	if email == nil {
		h.notFound(c, id, account)
		return
	}

	reply, err := h.replyUsecase.GetDraft(id, account, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var latestReply string
	chatHistory := replydomain.ChatHistory{}
	if reply != nil {
		latestReply = reply.LatestAIReply
		chatHistory = reply.ChatHistory
	}

	templates, err := h.templateUsecase.GetUserTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":               email,
		"latestReply":         latestReply,
		"chatHistory":         chatHistory,
		"signature":           h.cfg.Signature(account),
		"account":             account,
		"quickReplyTemplates": templates,
	})
}

// GenerateReply extends the AI conversation for the email and saves the
// resulting draft. Instruction precedence: quick-reply template, free-text
// instruction, refinement options, generic fallback.
func (h *InboxHandler) GenerateReply(c *gin.Context) {
	var req replydto.GenerateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	account, _ := h.cfg.Account(c.Query("account"))
	userID := c.GetString("userID")

	email, err := h.mailbox.GetEmail(c.Request.Context(), id, account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if email == nil {
		h.notFound(c, id, account)
		return
	}

	existing, err := h.replyUsecase.GetDraft(id, account, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var history replydomain.ChatHistory
	if existing != nil {
		history = existing.ChatHistory
	}

	var templateText string
	if req.TemplateID != "" {
		template, err := h.templateUsecase.GetTemplate(req.TemplateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if template != nil {
			templateText = template.TemplateText
		}
	}

	instruction := h.replyUsecase.ResolveInstruction(templateText, req.Instruction, req.RefinementOptions)

	reply, updatedHistory, err := h.replyUsecase.GenerateDraft(c.Request.Context(), email, instruction, history)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.replyUsecase.SaveDraft(id, account, userID, reply, updatedHistory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       email,
		"latestReply": reply,
		"chatHistory": updatedHistory,
		"signature":   h.cfg.Signature(account),
		"account":     account,
		"message":     "Reply generated successfully.",
	})
}

// SendReply delivers the reply (with optional signature appended) through
// the account's transport and reports the outcome as a boolean.
func (h *InboxHandler) SendReply(c *gin.Context) {
	var req replydto.SendReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	account, _ := h.cfg.Account(c.Query("account"))
	userID := c.GetString("userID")

	email, err := h.mailbox.GetEmail(c.Request.Context(), id, account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if email == nil {
		h.notFound(c, id, account)
		return
	}

	combined := strings.TrimSpace(req.Reply)
	if signature := strings.TrimSpace(req.Signature); signature != "" {
		combined += "\n\n" + signature
	}

	if h.replyUsecase.SendReply(c.Request.Context(), email, combined, account, userID) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"account": account,
			"message": "Reply sent successfully",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     false,
		"email":       email,
		"latestReply": req.Reply,
		"account":     account,
		"message":     "Failed to send reply. Please try again.",
	})
}

// notFound reports an unresolvable email id inside a normal payload; the
// UI renders it as a not-found page.
func (h *InboxHandler) notFound(c *gin.Context, id, account string) {
	h.logger.Warn("email not found",
		zap.String("email_id", id),
		zap.String("account", account))

	c.JSON(http.StatusOK, gin.H{
		"email":   nil,
		"account": account,
		"error":   "Email not found",
	})
}
