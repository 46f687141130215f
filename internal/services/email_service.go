package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is a rendered message ready for a provider.
type Email struct {
	To        string
	ToName    string
	Subject   string
	HTML      string
	PlainText string
}

// EmailSender delivers a rendered email through some provider.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

// EmailConfig configures the sender explicitly at construction time. There is
// no shared settings row consulted at send time.
type EmailConfig struct {
	Provider  string // "sendgrid", "resend" or "relay"
	APIKey    string
	FromEmail string
	FromName  string
	RelayURL  string // base URL of the local email relay, e.g. http://localhost:3001
}

// NewEmailSender builds the sender named by cfg.Provider.
func NewEmailSender(cfg EmailConfig) (EmailSender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGridSender(cfg.APIKey, cfg.FromEmail, cfg.FromName), nil
	case "resend":
		return NewResendSender(cfg.APIKey, cfg.FromEmail, cfg.FromName), nil
	case "relay":
		return NewRelaySender(cfg.RelayURL), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}
}

// SendGridSender delivers through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, email Email) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(email.ToName, email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, email.PlainText, email.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", email.To, response.StatusCode)
	}
	return nil
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

func NewResendSender(apiKey, fromEmail, fromName string) *ResendSender {
	return &ResendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.PlainText,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send to %s failed: %w", email.To, err)
	}
	return nil
}

// RelaySender delivers through the locally hosted email relay's
// POST /api/send-email endpoint.
type RelaySender struct {
	baseURL    string
	httpClient *http.Client
}

func NewRelaySender(baseURL string) *RelaySender {
	return &RelaySender{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type relayRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

func (s *RelaySender) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(relayRequest{
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.PlainText,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/send-email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email relay rejected send to %s: %d %s", email.To, resp.StatusCode, string(detail))
	}
	return nil
}
