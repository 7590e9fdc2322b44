package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mart-ng/mart-backend/pkg/config"
)

const sendPath = "/v3/mail/send"

// Message is a single outbound email.
type Message struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridClient delivers mail through the SendGrid v3 REST API.
type SendGridClient struct {
	httpClient *http.Client
	apiKey     string
	from       string
	baseURL    string
}

// NewSendGridClient builds a SendGrid-backed sender from mail configuration.
func NewSendGridClient(cfg config.MailConfig) (*SendGridClient, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, errors.New("default from address is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	return &SendGridClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     cfg.SendgridAPIKey,
		from:       cfg.DefaultFrom,
		baseURL:    baseURL,
	}, nil
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

// Send delivers the message. Delivery failures surface as errors so callers
// can abort the surrounding operation.
func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient address is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("subject is required")
	}

	var content []sendGridContent
	if msg.PlainText != "" {
		content = append(content, sendGridContent{Type: "text/plain", Value: msg.PlainText})
	}
	if msg.HTML != "" {
		content = append(content, sendGridContent{Type: "text/html", Value: msg.HTML})
	}
	if len(content) == 0 {
		return errors.New("message body is required")
	}

	payload := sendGridPayload{
		From:    sendGridAddress{Email: c.from},
		Subject: msg.Subject,
		Content: content,
	}
	payload.Personalizations = []struct {
		To []sendGridAddress `json:"to"`
	}{{To: []sendGridAddress{{Email: msg.To}}}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(raw) > 0 {
			return fmt.Errorf("sendgrid returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
		}
		return fmt.Errorf("sendgrid returned %s", resp.Status)
	}
	return nil
}
