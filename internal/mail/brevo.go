package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"text/template"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

const verificationSubject = "VibeShare - Verification code to sign in"

// verificationTemplate is the plain-text body of the login-code email.
var verificationTemplate = template.Must(template.New("verification").Parse(`Hello,

We received a request to sign in to your VibeShare account. Use the following
verification code to complete the sign-in process:

Verification code: {{.Code}}

This code is only valid for a limited time. If you did not request this code,
you can safely ignore this message.

Thanks,
The VibeShare team`))

// Mailer dispatches transactional mail. The service layer depends on this
// interface so tests can substitute a fake.
type Mailer interface {
	// SendVerificationCode delivers a one-time login code to the address.
	SendVerificationCode(ctx context.Context, toEmail, code string) error
}

// BrevoClient sends transactional emails via the Brevo HTTP API v3.
type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	httpClient  *http.Client
}

// NewBrevoClient creates a mail client. The API key and sender address must be
// configured; a send through an unconfigured client fails rather than silently
// dropping the code the user is waiting for.
func NewBrevoClient(apiKey, senderEmail, senderName string) *BrevoClient {
	return &BrevoClient{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	TextContent string              `json:"textContent"`
}

// SendVerificationCode renders the code template and posts it to Brevo.
func (c *BrevoClient) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	var body bytes.Buffer
	if err := verificationTemplate.Execute(&body, struct{ Code string }{Code: code}); err != nil {
		return fmt.Errorf("render verification mail: %w", err)
	}
	return c.send(ctx, toEmail, verificationSubject, body.String())
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, text string) error {
	if c.apiKey == "" || c.senderEmail == "" {
		return errors.New("mail client not configured")
	}
	if toEmail == "" {
		return errors.New("recipient address is empty")
	}

	payload := sendEmailReq{
		Sender:      map[string]string{"email": c.senderEmail, "name": c.senderName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		TextContent: text,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}
