package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"replydesk/pkg/config"
)

// Transport delivers a rendered reply through the account's outbound
// channel. Implementations must not retry.
type Transport interface {
	Deliver(ctx context.Context, account, recipient, subject, body, inReplyToID string) error
}

// Mailer implements Transport over per-account SMTP.
type Mailer struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewMailer(cfg *config.Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Deliver composes a text/plain reply message and sends it through the SMTP
// server configured for the account.
func (m *Mailer) Deliver(ctx context.Context, account, recipient, subject, body, inReplyToID string) error {
	accountID, acct := m.cfg.Account(account)

	msg, err := composeMessage(acct, recipient, subject, body, inReplyToID)
	if err != nil {
		return fmt.Errorf("composing message: %w", err)
	}

	from := acct.FromAddress
	if from == "" {
		from = acct.SMTPUsername
	}

	if err := m.send(acct, from, recipient, msg); err != nil {
		return err
	}

	m.logger.Info("reply delivered",
		zap.String("account", accountID),
		zap.String("recipient", recipient))

	return nil
}

func (m *Mailer) send(acct config.AccountConfig, from, to string, msg []byte) error {
	var c *smtp.Client
	var err error

	if acct.SMTPTLS {
		c, err = smtp.DialTLS(acct.SMTPAddr(), &tls.Config{ServerName: acct.SMTPHost})
		if err != nil {
			return fmt.Errorf("TLS dial to %s: %w", acct.SMTPAddr(), err)
		}
	} else {
		c, err = smtp.DialStartTLS(acct.SMTPAddr(), &tls.Config{ServerName: acct.SMTPHost})
		if err != nil {
			return fmt.Errorf("dial to %s: %w", acct.SMTPAddr(), err)
		}
	}
	defer c.Close()

	auth := sasl.NewPlainClient("", acct.SMTPUsername, acct.SMTPPassword)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	if err := c.SendMail(from, []string{to}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("SMTP send: %w", err)
	}

	return c.Quit()
}

// composeMessage renders the RFC 2822 reply with threading headers.
func composeMessage(acct config.AccountConfig, recipient, subject, body, inReplyToID string) ([]byte, error) {
	fromAddr := acct.FromAddress
	if fromAddr == "" {
		fromAddr = acct.SMTPUsername
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: acct.FromName, Address: fromAddr}})
	h.SetAddressList("To", []*mail.Address{{Address: recipient}})
	h.SetSubject(subject)

	if id := strings.Trim(inReplyToID, "<>"); id != "" {
		h.SetMsgIDList("In-Reply-To", []string{id})
		h.SetMsgIDList("References", []string{id})
	}

	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
