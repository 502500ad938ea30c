package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	monitordomain "mailminder-backend/internal/monitor/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = monitordomain.TokenUpdateFunc

// Service implements the MailProvider contract against the Gmail API
type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// getGmailService creates a Gmail client with the account's tokens. The token
// source is wrapped so refreshed access tokens are persisted via the callback.
func (s *Service) getGmailService(ctx context.Context, creds monitordomain.MailCredentials, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// ListUnread returns summaries of unread messages matching the query
func (s *Service) ListUnread(ctx context.Context, creds monitordomain.MailCredentials, q monitordomain.MailQuery, onTokenRefresh TokenUpdateFunc) ([]*monitordomain.MailMessage, error) {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Messages.List("me").Q(buildQuery(q)).MaxResults(25).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %v", err)
	}

	messages := make([]*monitordomain.MailMessage, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		messages = append(messages, &monitordomain.MailMessage{ID: msg.Id, ThreadID: msg.ThreadId})
	}
	return messages, nil
}

// GetFull retrieves a message with headers and body
func (s *Service) GetFull(ctx context.Context, creds monitordomain.MailCredentials, messageID string, onTokenRefresh TokenUpdateFunc) (*monitordomain.MailMessage, error) {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}
	return convertGmailMessage(msg), nil
}

// SendReply sends a plain-text reply threaded to the original message
func (s *Service) SendReply(ctx context.Context, creds monitordomain.MailCredentials, original *monitordomain.MailMessage, body string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return err
	}

	subject := original.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var emailMsg bytes.Buffer
	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", original.From))
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	emailMsg.WriteString(fmt.Sprintf("In-Reply-To: <%s>\r\n", original.ID))
	emailMsg.WriteString(fmt.Sprintf("References: <%s>\r\n", original.ID))
	emailMsg.WriteString("MIME-Version: 1.0\r\n")
	emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	emailMsg.WriteString(body)
	emailMsg.WriteString("\r\n")

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(emailMsg.Bytes()),
		ThreadId: original.ThreadID,
	}

	if _, err := srv.Users.Messages.Send("me", msg).Do(); err != nil {
		return fmt.Errorf("unable to send message: %v", err)
	}
	return nil
}

// MarkRead removes the UNREAD label from a message
func (s *Service) MarkRead(ctx context.Context, creds monitordomain.MailCredentials, messageID string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return err
	}

	modifyReq := &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}
	if _, err := srv.Users.Messages.Modify("me", messageID, modifyReq).Do(); err != nil {
		return fmt.Errorf("unable to mark message as read: %v", err)
	}
	return nil
}

// buildQuery translates a MailQuery into a Gmail search string
func buildQuery(q monitordomain.MailQuery) string {
	query := "is:unread"
	if q.FromSender != "" {
		query += " from:" + q.FromSender
	}
	if len(q.Keywords) > 0 {
		quoted := make([]string, 0, len(q.Keywords))
		for _, kw := range q.Keywords {
			quoted = append(quoted, fmt.Sprintf("%q", kw))
		}
		query += " subject:(" + strings.Join(quoted, " OR ") + ")"
	}
	return query
}

// Helper functions

func convertGmailMessage(msg *gmail.Message) *monitordomain.MailMessage {
	from := getHeader(msg.Payload.Headers, "From")
	fromName := from
	// Extract name from "Name <email@example.com>" format
	if idx := strings.Index(from, "<"); idx > 0 {
		fromName = strings.TrimSpace(from[:idx])
		fromName = strings.Trim(fromName, "\"")
	}

	body := getEmailBody(msg.Payload)

	return &monitordomain.MailMessage{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		From:       extractAddress(from),
		FromName:   fromName,
		Subject:    getHeader(msg.Payload.Headers, "Subject"),
		Body:       body,
		ReceivedAt: time.Unix(msg.InternalDate/1000, 0),
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

var addressPattern = regexp.MustCompile(`<([^>]+)>`)

func extractAddress(from string) string {
	if m := addressPattern.FindStringSubmatch(from); len(m) == 2 {
		return m[1]
	}
	return strings.TrimSpace(from)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func getEmailBody(payload *gmail.MessagePart) string {
	// If the payload itself is the body
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			if payload.MimeType == "text/html" {
				return stripHTML(string(data))
			}
			return string(data)
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.MimeType == "text/html" {
				if part.Body != nil && part.Body.Data != "" {
					if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
						htmlBody = string(data)
					}
				}
			} else if part.MimeType == "text/plain" {
				if part.Body != nil && part.Body.Data != "" {
					if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
						plainBody = string(data)
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody
	}
	return stripHTML(htmlBody)
}

func stripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	return strings.Join(strings.Fields(text), " ")
}
