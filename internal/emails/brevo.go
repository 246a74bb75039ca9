package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// Sender delivers transactional mail (verification OTP, password reset).
// A nil Sender is treated as a no-op by callers.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail, name, code string) error
	SendPasswordResetOTP(ctx context.Context, toEmail, name, code string) error
}

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient sends emails via the Brevo (Sendinblue) API. Env:
// SENDINBLUE_API_KEY, MAIL_FROM. Without an API key every send is a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	BaseURL  string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@smartfolio.app"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "SmartFolio"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := c.BaseURL
	if endpoint == "" {
		endpoint = brevoAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send: status %d", resp.StatusCode)
	}
	return nil
}

func (c *BrevoClient) SendVerificationOTP(ctx context.Context, toEmail, name, code string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Your SmartFolio verification code is:</p><h2>%s</h2><p>The code expires in 10 minutes.</p>`, name, code)
	return c.send(ctx, toEmail, name, "Verify your SmartFolio email", html)
}

func (c *BrevoClient) SendPasswordResetOTP(ctx context.Context, toEmail, name, code string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Your SmartFolio password reset code is:</p><h2>%s</h2><p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>`, name, code)
	return c.send(ctx, toEmail, name, "Reset your SmartFolio password", html)
}
