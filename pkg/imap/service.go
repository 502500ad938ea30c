package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/smtp"
	"strings"

	monitordomain "mailminder-backend/internal/monitor/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Service implements the MailProvider contract over IMAP for reading and
// SMTP for submission. Message identity is the Message-Id header so markers
// survive mailbox renumbering.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// connect dials the account's IMAP host and selects INBOX
func (s *Service) connect(creds monitordomain.MailCredentials) (*client.Client, error) {
	c, err := client.DialTLS(creds.IMAPHost, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to IMAP server: %v", err)
	}
	if err := c.Login(creds.Address, creds.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %v", err)
	}
	if _, err := c.Select("INBOX", false); err != nil {
		c.Logout()
		return nil, fmt.Errorf("unable to select INBOX: %v", err)
	}
	return c, nil
}

// ListUnread returns unseen messages from the sender, with bodies populated.
// The keyword filter is applied client-side because SUBJECT search matches a
// single substring only.
func (s *Service) ListUnread(ctx context.Context, creds monitordomain.MailCredentials, q monitordomain.MailQuery, _ monitordomain.TokenUpdateFunc) ([]*monitordomain.MailMessage, error) {
	c, err := s.connect(creds)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if q.FromSender != "" {
		criteria.Header.Add("From", q.FromSender)
	}

	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %v", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var result []*monitordomain.MailMessage
	for msg := range messages {
		converted := convertMessage(msg, section)
		if converted == nil {
			continue
		}
		if len(q.Keywords) > 0 && !matchesKeywords(converted.Subject, q.Keywords) {
			continue
		}
		result = append(result, converted)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %v", err)
	}
	return result, nil
}

// GetFull is a no-op lookup for IMAP: ListUnread already fetches bodies, so
// this only re-finds a message by its Message-Id header.
func (s *Service) GetFull(ctx context.Context, creds monitordomain.MailCredentials, messageID string, _ monitordomain.TokenUpdateFunc) (*monitordomain.MailMessage, error) {
	c, err := s.connect(creds)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	ids, err := searchByMessageID(c, messageID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("message %s not found", messageID)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids[0])

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var result *monitordomain.MailMessage
	for msg := range messages {
		result = convertMessage(msg, section)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %v", err)
	}
	if result == nil {
		return nil, fmt.Errorf("message %s not found", messageID)
	}
	return result, nil
}

// SendReply submits a threaded plain-text reply over SMTP
func (s *Service) SendReply(ctx context.Context, creds monitordomain.MailCredentials, original *monitordomain.MailMessage, body string, _ monitordomain.TokenUpdateFunc) error {
	if creds.SMTPHost == "" {
		return fmt.Errorf("account has no SMTP host configured")
	}

	subject := original.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", creds.Address))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", original.From))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", original.ID))
	msg.WriteString(fmt.Sprintf("References: %s\r\n", original.ID))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	host := creds.SMTPHost
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	auth := smtp.PlainAuth("", creds.Address, creds.Password, host)
	if err := smtp.SendMail(creds.SMTPHost, auth, creds.Address, []string{original.From}, msg.Bytes()); err != nil {
		return fmt.Errorf("unable to send message: %v", err)
	}
	return nil
}

// MarkRead sets the \Seen flag on the message with the given Message-Id
func (s *Service) MarkRead(ctx context.Context, creds monitordomain.MailCredentials, messageID string, _ monitordomain.TokenUpdateFunc) error {
	c, err := s.connect(creds)
	if err != nil {
		return err
	}
	defer c.Logout()

	ids, err := searchByMessageID(c, messageID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := c.Store(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("unable to mark message as read: %v", err)
	}
	return nil
}

func searchByMessageID(c *client.Client, messageID string) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Message-Id", messageID)
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %v", err)
	}
	return ids, nil
}

func matchesKeywords(subject string, keywords []string) bool {
	lower := strings.ToLower(subject)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func convertMessage(msg *imap.Message, section *imap.BodySectionName) *monitordomain.MailMessage {
	if msg == nil || msg.Envelope == nil {
		return nil
	}

	result := &monitordomain.MailMessage{
		ID:         msg.Envelope.MessageId,
		ThreadID:   msg.Envelope.MessageId,
		Subject:    msg.Envelope.Subject,
		ReceivedAt: msg.Envelope.Date,
	}
	if len(msg.Envelope.From) > 0 {
		from := msg.Envelope.From[0]
		result.From = from.Address()
		result.FromName = from.PersonalName
		if result.FromName == "" {
			result.FromName = result.From
		}
	}

	r := msg.GetBody(section)
	if r == nil {
		return result
	}
	mr, err := mail.CreateReader(r)
	if err != nil {
		return result
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if _, ok := part.Header.(*mail.InlineHeader); ok {
			if b, err := io.ReadAll(part.Body); err == nil && result.Body == "" {
				result.Body = string(b)
			}
		}
	}
	return result
}
