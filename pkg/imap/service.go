package imap

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"replydesk/pkg/config"
)

// listLimit caps how many recent messages an inbox listing returns.
const listLimit = 50

// EmailSummary is one row of an inbox listing.
type EmailSummary struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	From      string    `json:"from"`
	Date      time.Time `json:"date"`
	MessageID string    `json:"message_id"`
}

// EmailDetail is a single fully fetched message.
type EmailDetail struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Date      time.Time `json:"date"`
	Body      string    `json:"body"`
	HTML      string    `json:"html,omitempty"`
	MessageID string    `json:"message_id"`
}

// MailboxReader lists and fetches emails for a logical account.
type MailboxReader interface {
	ListInbox(ctx context.Context, account string) ([]EmailSummary, error)
	GetEmail(ctx context.Context, id, account string) (*EmailDetail, error)
}

// Service implements MailboxReader over IMAP. Each call dials, logs in,
// and logs out; there is no connection pooling.
type Service struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// ListInbox returns envelope summaries for the most recent messages in the
// account's INBOX, newest first.
func (s *Service) ListInbox(ctx context.Context, account string) ([]EmailSummary, error) {
	accountID, acct := s.cfg.Account(account)

	c, err := s.connect(acct)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	if mbox.Messages == 0 {
		return []EmailSummary{}, nil
	}

	from := uint32(1)
	if mbox.Messages > listLimit {
		from = mbox.Messages - listLimit + 1
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, listLimit)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid}, messages)
	}()

	var summaries []EmailSummary
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		summaries = append(summaries, EmailSummary{
			ID:        strconv.FormatUint(uint64(msg.Uid), 10),
			Subject:   msg.Envelope.Subject,
			From:      formatAddresses(msg.Envelope.From),
			Date:      msg.Envelope.Date,
			MessageID: msg.Envelope.MessageId,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching envelopes: %w", err)
	}

	// Newest first
	for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
		summaries[i], summaries[j] = summaries[j], summaries[i]
	}

	s.logger.Info("listed inbox",
		zap.String("account", accountID),
		zap.Int("count", len(summaries)))

	return summaries, nil
}

// GetEmail fetches a single message by UID. Returns (nil, nil) when the UID
// does not resolve to a message.
func (s *Service) GetEmail(ctx context.Context, id, account string) (*EmailDetail, error) {
	accountID, acct := s.cfg.Account(account)

	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, nil
	}

	c, err := s.connect(acct)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	msg := <-messages
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	if msg == nil || msg.Envelope == nil {
		s.logger.Warn("email not found",
			zap.String("email_id", id),
			zap.String("account", accountID))
		return nil, nil
	}

	detail := &EmailDetail{
		ID:        strconv.FormatUint(uint64(msg.Uid), 10),
		Subject:   msg.Envelope.Subject,
		From:      formatAddresses(msg.Envelope.From),
		To:        formatAddresses(msg.Envelope.To),
		Date:      msg.Envelope.Date,
		MessageID: msg.Envelope.MessageId,
	}

	if body := msg.GetBody(section); body != nil {
		text, html := parseBody(body)
		detail.Body = text
		detail.HTML = html
	}

	return detail, nil
}

func (s *Service) connect(acct config.AccountConfig) (*client.Client, error) {
	var c *client.Client
	var err error

	if acct.IMAPTLS {
		c, err = client.DialTLS(acct.IMAPAddr(), nil)
	} else {
		c, err = client.Dial(acct.IMAPAddr())
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", acct.IMAPAddr(), err)
	}

	if err := c.Login(acct.IMAPUsername, acct.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login for %s: %w", acct.IMAPUsername, err)
	}

	return c, nil
}

// parseBody extracts the text/plain and text/html parts of a raw message.
func parseBody(r io.Reader) (text, html string) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		// Unparseable MIME: treat the raw content as plain text
		raw, _ := io.ReadAll(r)
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			text = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			html = string(body)
		}
	}

	return text, html
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		addr := a.MailboxName + "@" + a.HostName
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, addr))
		} else {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}
