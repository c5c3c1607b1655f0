// Package notify delivers the sign-up confirmation email through an
// external provider.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sleekspace/storefront/internal/config"
	"github.com/sleekspace/storefront/internal/obs"
)

// Params carries the template parameters of the confirmation email.
type Params struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Sender delivers one templated confirmation email. The service only
// branches on success or failure; the provider response is opaque.
type Sender interface {
	Send(ctx context.Context, p Params) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, p Params) error

func (f SenderFunc) Send(ctx context.Context, p Params) error {
	if f == nil {
		return nil
	}
	return f(ctx, p)
}

// HTTPSender posts the email through an EmailJS-compatible REST endpoint.
// Service, template, and account identifiers are fixed configuration, not
// user input.
type HTTPSender struct {
	cfg    config.Config
	client *http.Client
}

// NewHTTPSender builds an HTTPSender from the email knobs in cfg.
func NewHTTPSender(cfg config.Config) *HTTPSender {
	return &HTTPSender{cfg: cfg, client: &http.Client{Timeout: cfg.EmailTimeout}}
}

type sendRequest struct {
	ServiceID      string `json:"service_id"`
	TemplateID     string `json:"template_id"`
	UserID         string `json:"user_id"`
	TemplateParams Params `json:"template_params"`
}

func (s *HTTPSender) Send(ctx context.Context, p Params) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      s.cfg.EmailServiceID,
		TemplateID:     s.cfg.EmailTemplateID,
		UserID:         s.cfg.EmailAccountID,
		TemplateParams: p,
	})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.EmailEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send confirmation email: provider returned %s", resp.Status)
	}
	return nil
}

// LogSender logs the would-be email instead of delivering it. Used with
// EMAIL_MODE=log so the flow works without provider credentials.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, p Params) error {
	obs.Logger.Info("confirmation_email",
		"to", p.Email,
		"username", p.Username,
	)
	return nil
}
