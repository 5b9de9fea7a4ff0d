package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	replydomain "replydesk/internal/reply/domain"
	replyRepo "replydesk/internal/reply/repository"
	replyUsecase "replydesk/internal/reply/usecase"
	templatedomain "replydesk/internal/template/domain"
	templateRepo "replydesk/internal/template/repository"
	templateUsecase "replydesk/internal/template/usecase"
	"replydesk/pkg/ai"
	"replydesk/pkg/config"
	"replydesk/pkg/imap"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailbox struct {
	emails  []imap.EmailSummary
	detail  *imap.EmailDetail
	listErr error
	getErr  error
}

func (f *fakeMailbox) ListInbox(_ context.Context, _ string) ([]imap.EmailSummary, error) {
	return f.emails, f.listErr
}

func (f *fakeMailbox) GetEmail(_ context.Context, id, _ string) (*imap.EmailDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.detail != nil && f.detail.ID == id {
		return f.detail, nil
	}
	return nil, nil
}

type stubAIClient struct {
	reply string
	err   error
}

func (s *stubAIClient) Complete(_ context.Context, _ []ai.Message) (string, error) {
	return s.reply, s.err
}

type stubTransport struct {
	err error
}

func (s *stubTransport) Deliver(_ context.Context, _, _, _, _, _ string) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultAccount: "default",
		Accounts: map[string]config.AccountConfig{
			"default": {Signature: "Best regards,\nThe Team"},
		},
	}
}

func setupRouter(t *testing.T, mailbox imap.MailboxReader, aiClient ai.Client, transport *stubTransport) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&replydomain.EmailReply{}, &templatedomain.QuickReplyTemplate{}))

	replyUC := replyUsecase.NewReplyUsecase(replyRepo.NewEmailReplyRepository(db), aiClient, transport, zap.NewNop())
	templateUC := templateUsecase.NewTemplateUsecase(templateRepo.NewTemplateRepository(db))

	handler := NewInboxHandler(mailbox, replyUC, templateUC, testConfig(), zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
	})
	r.GET("/api/inbox", handler.Index)
	r.GET("/api/inbox/:id", handler.Show)
	r.POST("/api/inbox/:id/generate-reply", handler.GenerateReply)
	r.POST("/api/inbox/:id/send-reply", handler.SendReply)

	return r, db
}

func fixtureEmail() *imap.EmailDetail {
	return &imap.EmailDetail{
		ID:        "42",
		Subject:   "Project update",
		From:      "Jane Doe <jane@example.com>",
		Date:      time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		Body:      "Can you share the latest numbers?",
		MessageID: "<abc123@example.com>",
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestIndexListsEmails(t *testing.T) {
	mailbox := &fakeMailbox{emails: []imap.EmailSummary{
		{ID: "42", Subject: "Project update", From: "jane@example.com"},
	}}
	r, _ := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodGet, "/api/inbox", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", body["account"])
	assert.Len(t, body["emails"], 1)
	assert.NotContains(t, body, "error")
}

func TestIndexReportsIMAPFailureInPayload(t *testing.T) {
	mailbox := &fakeMailbox{listErr: errors.New("dial tcp: connection refused")}
	r, _ := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodGet, "/api/inbox", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["emails"])
	assert.Contains(t, body["error"], "Failed to connect to the email server")
}

func TestShowReturnsEmailWithDraftAndTemplates(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, db := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	repo := replyRepo.NewEmailReplyRepository(db)
	_, err := repo.SaveDraft("42", "default", "user-1", "existing draft", replydomain.ChatHistory{
		{Role: ai.RoleSystem, Content: "persona"},
	})
	require.NoError(t, err)

	w, body := doJSON(t, r, http.MethodGet, "/api/inbox/42", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "existing draft", body["latestReply"])
	assert.Equal(t, "Best regards,\nThe Team", body["signature"])
	assert.Len(t, body["chatHistory"], 1)
	assert.NotNil(t, body["email"])
}

func TestShowUnknownEmailReturnsNotFoundPayload(t *testing.T) {
	mailbox := &fakeMailbox{}
	r, _ := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodGet, "/api/inbox/77", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["email"])
	assert.Equal(t, "Email not found", body["error"])
}

func TestGenerateReplyPersistsDraft(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, db := setupRouter(t, mailbox, &stubAIClient{reply: "Here are the numbers."}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodPost, "/api/inbox/42/generate-reply", gin.H{
		"instruction": "Share the Q1 numbers",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Here are the numbers.", body["latestReply"])
	assert.Equal(t, "Reply generated successfully.", body["message"])
	assert.Len(t, body["chatHistory"], 4)

	row, err := replyRepo.NewEmailReplyRepository(db).FindByEmail("42", "default", "user-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, replydomain.StatusDraft, row.Status)
	assert.Equal(t, "Here are the numbers.", row.LatestAIReply)
}

func TestGenerateReplyUsesTemplate(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	client := &recordingAIClient{reply: "adapted"}
	r, db := setupRouter(t, mailbox, client, &stubTransport{})

	template, err := templateUsecase.NewTemplateUsecase(templateRepo.NewTemplateRepository(db)).
		CreateTemplate("user-1", "Thank You", "Thanks for reaching out!", 1)
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodPost, "/api/inbox/42/generate-reply", gin.H{
		"instruction": "ignored in favor of the template",
		"templateId": template.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	instruction := client.lastMessages[len(client.lastMessages)-1].Content
	assert.Contains(t, instruction, "Use this template as the basis for your reply")
	assert.Contains(t, instruction, "Thanks for reaching out!")
}

type recordingAIClient struct {
	reply        string
	lastMessages []ai.Message
}

func (c *recordingAIClient) Complete(_ context.Context, messages []ai.Message) (string, error) {
	c.lastMessages = messages
	return c.reply, nil
}

func TestGenerateReplyReturnsBadGatewayOnAIFailure(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, _ := setupRouter(t, mailbox, &stubAIClient{err: errors.New("upstream timeout")}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodPost, "/api/inbox/42/generate-reply", gin.H{
		"instruction": "anything",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, body["error"], "failed to generate reply")
}

func TestSendReplyValidatesBody(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, _ := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	w, _ := doJSON(t, r, http.MethodPost, "/api/inbox/42/send-reply", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSendReplySuccess(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, db := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{})

	w, body := doJSON(t, r, http.MethodPost, "/api/inbox/42/send-reply", gin.H{
		"reply":     "Here you go.",
		"signature": "Best regards,\nThe Team",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	row, err := replyRepo.NewEmailReplyRepository(db).FindByEmail("42", "default", "user-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, replydomain.StatusSent, row.Status)
	assert.Equal(t, "Here you go.\n\nBest regards,\nThe Team", row.LatestAIReply)
}

func TestSendReplyTransportFailure(t *testing.T) {
	mailbox := &fakeMailbox{detail: fixtureEmail()}
	r, db := setupRouter(t, mailbox, &stubAIClient{}, &stubTransport{err: errors.New("550 relay denied")})

	w, body := doJSON(t, r, http.MethodPost, "/api/inbox/42/send-reply", gin.H{
		"reply": "Here you go.",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to send reply. Please try again.", body["message"])

	row, err := replyRepo.NewEmailReplyRepository(db).FindByEmail("42", "default", "user-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, replydomain.StatusFailed, row.Status)
	assert.Equal(t, "550 relay denied", row.ErrorMessage)
}
