package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	replydomain "replydesk/internal/reply/domain"
	replydto "replydesk/internal/reply/dto"
	"replydesk/internal/reply/repository"
	"replydesk/pkg/ai"
	"replydesk/pkg/imap"
	"replydesk/pkg/mailer"

	"go.uber.org/zap"
)

// systemPrompt is the assistant persona seeded at the start of every
// per-email conversation.
const systemPrompt = `You are an email assistant that helps the user craft replies. The user will provide you with an email to respond to and specific instructions on how to craft the reply. Generate a professional and appropriate response according to the user's instructions. Do not include any email closing, signature or placeholder fields. Return ONLY the reply body text (including greeting and closing phrases) with NO "Subject:" line.`

const fallbackRefineInstruction = "Refine this reply to make it better."

const fallbackGenerateInstruction = "Generate a reply to this email."

var toneDescriptions = map[string]string{
	"professional": "professional and business-appropriate",
	"friendly":     "friendly and warm",
	"casual":       "casual and relaxed",
	"formal":       "formal and respectful",
	"warm":         "warm and caring",
	"direct":       "direct and to-the-point",
}

var lengthDescriptions = map[string]string{
	"concise":  "make it concise and brief",
	"medium":   "use a balanced length",
	"detailed": "make it detailed and comprehensive",
}

var formalityDescriptions = map[int]string{
	1: "very casual language",
	2: "casual language",
	4: "formal language",
	5: "very formal language",
}

// ReplyUsecase owns the draft/send lifecycle of email replies and the
// chat-history accumulation sent to the AI completion service.
type ReplyUsecase interface {
	GetDraft(emailID, account, userID string) (*replydomain.EmailReply, error)
	GenerateDraft(ctx context.Context, email *imap.EmailDetail, instruction string, history replydomain.ChatHistory) (string, replydomain.ChatHistory, error)
	BuildInstructionFromOptions(opts replydto.RefinementOptions) string
	ResolveInstruction(templateText, instruction string, opts *replydto.RefinementOptions) string
	SaveDraft(emailID, account, userID, reply string, history replydomain.ChatHistory) error
	SendReply(ctx context.Context, email *imap.EmailDetail, combined, account, userID string) bool
}

// replyUsecase implements ReplyUsecase interface
type replyUsecase struct {
	replyRepo repository.EmailReplyRepository
	aiClient  ai.Client
	transport mailer.Transport
	logger    *zap.Logger
}

// NewReplyUsecase creates a new instance of replyUsecase
func NewReplyUsecase(replyRepo repository.EmailReplyRepository, aiClient ai.Client, transport mailer.Transport, logger *zap.Logger) ReplyUsecase {
	return &replyUsecase{
		replyRepo: replyRepo,
		aiClient:  aiClient,
		transport: transport,
		logger:    logger,
	}
}

func (u *replyUsecase) GetDraft(emailID, account, userID string) (*replydomain.EmailReply, error) {
	return u.replyRepo.FindByEmail(emailID, account, userID)
}

// GenerateDraft extends the conversation for the email with the given
// instruction and returns the new assistant reply plus the full updated
// history. An empty history is seeded with the assistant persona and the
// email context exactly once; afterwards only the instruction and the
// assistant reply are appended. Completion failures propagate unretried.
func (u *replyUsecase) GenerateDraft(ctx context.Context, email *imap.EmailDetail, instruction string, history replydomain.ChatHistory) (string, replydomain.ChatHistory, error) {
	if len(history) == 0 {
		history = replydomain.ChatHistory{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: emailContext(email)},
		}
	}

	history = append(history, ai.Message{Role: ai.RoleUser, Content: instruction})

	reply, err := u.aiClient.Complete(ctx, history)
	if err != nil {
		u.logger.Error("reply generation failed",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return "", nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	history = append(history, ai.Message{Role: ai.RoleAssistant, Content: reply})

	return reply, history, nil
}

// BuildInstructionFromOptions compiles structured refinement options into a
// natural-language instruction. A non-empty custom instruction is returned
// verbatim and all other fields are ignored. Otherwise clauses are composed
// in the fixed order tone, length, formality, urgency, skipping fields at
// their neutral default (formality 3 is neutral; only "high" urgency emits
// a clause).
func (u *replyUsecase) BuildInstructionFromOptions(opts replydto.RefinementOptions) string {
	if opts.CustomInstruction != "" {
		return opts.CustomInstruction
	}

	var parts []string

	if desc, ok := toneDescriptions[opts.Tone]; ok {
		parts = append(parts, "Write in a "+desc+" tone")
	}

	if desc, ok := lengthDescriptions[opts.Length]; ok {
		parts = append(parts, desc)
	}

	if desc, ok := formalityDescriptions[opts.Formality]; ok {
		parts = append(parts, "use "+desc)
	}

	if opts.Urgency == "high" {
		parts = append(parts, "convey appropriate urgency")
	}

	if len(parts) == 0 {
		return fallbackRefineInstruction
	}

	return capitalize(strings.Join(parts, ", ")) + "."
}

// ResolveInstruction picks the single instruction source for a generation
// request: quick-reply template first, then free-text instruction, then
// compiled refinement options, then the generic fallback.
func (u *replyUsecase) ResolveInstruction(templateText, instruction string, opts *replydto.RefinementOptions) string {
	if templateText != "" {
		return fmt.Sprintf("Use this template as the basis for your reply, adapting it to respond to the specific email context: \"%s\"", templateText)
	}
	if instruction != "" {
		return instruction
	}
	if opts != nil {
		return u.BuildInstructionFromOptions(*opts)
	}
	return fallbackGenerateInstruction
}

func (u *replyUsecase) SaveDraft(emailID, account, userID, reply string, history replydomain.ChatHistory) error {
	_, err := u.replyRepo.SaveDraft(emailID, account, userID, reply, history)
	return err
}

// SendReply moves the reply row through sending and delivers it. On
// success the row becomes sent; on transport failure the row becomes
// failed with the error recorded, and false is returned without the error
// escaping to the caller.
func (u *replyUsecase) SendReply(ctx context.Context, email *imap.EmailDetail, combined, account, userID string) bool {
	subject := formatReplySubject(email.Subject)
	recipient := extractAddress(email.From)

	row, err := u.replyRepo.MarkSending(email.ID, account, userID, combined, recipient, subject)
	if err != nil {
		u.logger.Error("failed to record sending state",
			zap.String("email_id", email.ID),
			zap.String("account", account),
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}

	if err := u.transport.Deliver(ctx, account, recipient, subject, combined, email.MessageID); err != nil {
		if markErr := u.replyRepo.MarkFailed(row.ID, err.Error()); markErr != nil {
			u.logger.Error("failed to record failed state",
				zap.String("email_id", email.ID),
				zap.Error(markErr))
		}

		u.logger.Error("failed to send email reply",
			zap.String("email_id", email.ID),
			zap.String("account", account),
			zap.String("recipient", recipient),
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}

	if err := u.replyRepo.MarkSent(row.ID); err != nil {
		u.logger.Error("failed to record sent state",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return false
	}

	u.logger.Info("email reply sent successfully",
		zap.String("email_id", email.ID),
		zap.String("account", account),
		zap.String("recipient", recipient),
		zap.String("user_id", userID))

	return true
}

// emailContext renders the original email into the first user message of
// the conversation.
func emailContext(email *imap.EmailDetail) string {
	return fmt.Sprintf("I need to reply to this email:\n\nFrom: %s\nSubject: %s\nDate: %s\n\n%s",
		email.From, email.Subject, email.Date.Format("Mon, 02 Jan 2006 15:04:05 -0700"), email.Body)
}

// formatReplySubject prefixes "Re: " unless the subject already carries it.
func formatReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// extractAddress pulls the bare address out of a "Name <addr>" header value.
func extractAddress(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return from
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
