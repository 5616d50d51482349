package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"virtual-wallet/config"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// address is a mail participant in the provider's JSON schema.
type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendRequest is the payload posted to the mail provider API.
type sendRequest struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
}

// Notifier delivers one-time payment tokens over a transactional mail
// HTTP API. It implements ports.TokenNotifier.
//
// Delivery is synchronous on purpose: if the provider rejects the mail
// the caller must know, because a session whose token the customer never
// received must not stay confirmable.
type Notifier struct {
	cfg        config.MailConfig
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewNotifier creates a mail notifier. A nil client falls back to a
// default http.Client with the configured timeout.
func NewNotifier(cfg config.MailConfig, httpClient HTTPClient, log zerolog.Logger) *Notifier {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Notifier{cfg: cfg, httpClient: httpClient, log: log}
}

// SendPaymentToken mails the one-time confirmation token to the customer.
func (n *Notifier) SendPaymentToken(ctx context.Context, email, fullName, token string, expiresAt time.Time) error {
	body := sendRequest{
		From:    address{Email: n.cfg.FromEmail, Name: n.cfg.FromName},
		To:      []address{{Email: email, Name: fullName}},
		Subject: "Payment confirmation token",
		Text: fmt.Sprintf(
			"Hello %s,\n\nYour one-time token to confirm the payment is %s.\nIt expires at %s.\n\nEnter the token only in the confirmation flow you requested. If you did not request this payment, ignore this message.",
			fullName, token, expiresAt.UTC().Format("Jan 2, 2006 15:04 MST"),
		),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send token mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Warn().
			Int("status", resp.StatusCode).
			Msg("mail provider rejected token delivery")
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	n.log.Info().
		Str("to", email).
		Time("expires_at", expiresAt).
		Msg("payment token delivered")
	return nil
}
