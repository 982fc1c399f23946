package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.sendgrid.com/v3/mail/send"

// Client sends transactional email through the SendGrid v3 API.
// All sends are best-effort: the API never blocks or fails a request
// because a notification could not be delivered.
type Client struct {
	apiKey        string
	fromEmail     string
	inboundDomain string
	apiURL        string
	httpClient    *http.Client
}

// Option customizes the Client.
type Option func(*Client)

// WithAPIURL overrides the SendGrid endpoint, used in tests.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.apiURL = u
		}
	}
}

// NewClient returns a mail client. With an empty apiKey every send is a
// no-op so local development does not need SendGrid credentials.
func NewClient(apiKey, fromEmail, inboundDomain string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		fromEmail:     fromEmail,
		inboundDomain: inboundDomain,
		apiURL:        defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Enabled reports whether outbound mail is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From       sendGridAddress   `json:"from"`
	Subject    string            `json:"subject"`
	Content    []sendGridContent `json:"content"`
	ReplyTo    sendGridAddress   `json:"reply_to"`
	CustomArgs map[string]string `json:"custom_args,omitempty"`
}

// send delivers one HTML email. The reply_to address encodes the ticket id
// so customer replies route back through the inbound webhook.
func (c *Client) send(ctx context.Context, to, ticketID, subject, html string) error {
	if !c.Enabled() {
		return nil
	}
	reqBody := sendGridRequest{
		From:    sendGridAddress{Email: c.fromEmail},
		Subject: subject,
		Content: []sendGridContent{{Type: "text/html", Value: html}},
		ReplyTo: sendGridAddress{Email: ticketID + "@" + c.inboundDomain},
		CustomArgs: map[string]string{
			"ticket_id": ticketID,
		},
	}
	reqBody.Personalizations = append(reqBody.Personalizations, struct {
		To []sendGridAddress `json:"to"`
	}{To: []sendGridAddress{{Email: to}}})

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// SendTicketConfirmation notifies a requester that their ticket was created.
func (c *Client) SendTicketConfirmation(ctx context.Context, p ConfirmationParams) error {
	subject, html, err := renderConfirmation(p)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return c.send(ctx, p.To, p.TicketID, subject, html)
}

// SendTicketResponse notifies a requester that staff replied to their ticket.
func (c *Client) SendTicketResponse(ctx context.Context, p ResponseParams) error {
	subject, html, err := renderResponse(p)
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	return c.send(ctx, p.To, p.TicketID, subject, html)
}

// SendTicketConfirmationAsync fires SendTicketConfirmation in a goroutine
// with its own timeout, logging failures.
func (c *Client) SendTicketConfirmationAsync(p ConfirmationParams) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.SendTicketConfirmation(ctx, p); err != nil {
			log.Printf("mailer: ticket confirmation for %s: %v", p.TicketID, err)
		}
	}()
}

// SendTicketResponseAsync fires SendTicketResponse in a goroutine with its
// own timeout, logging failures.
func (c *Client) SendTicketResponseAsync(p ResponseParams) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.SendTicketResponse(ctx, p); err != nil {
			log.Printf("mailer: ticket response for %s: %v", p.TicketID, err)
		}
	}()
}
