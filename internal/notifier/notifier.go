// Package notifier delivers verification and password-reset mail. The auth
// service invokes it from a goroutine and never waits on the result.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	mg      mailgun.Mailgun
	sender  string
	baseURL string
}

func NewMailgun(domain, apiKey, sender, baseURL string) *Mailgun {
	return &Mailgun{
		mg:      mailgun.NewMailgun(domain, apiKey),
		sender:  sender,
		baseURL: baseURL,
	}
}

func (n *Mailgun) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/verify-email/%s", n.baseURL, token)
	body := fmt.Sprintf("Welcome! Please verify your email address by visiting:\n\n%s\n", link)

	return n.send(ctx, to, "Verify your email address", body)
}

func (n *Mailgun) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", n.baseURL, token)
	body := fmt.Sprintf("A password reset was requested for your account.\n\n%s\n\nIf this wasn't you, ignore this message.\n", link)

	return n.send(ctx, to, "Reset your password", body)
}

func (n *Mailgun) send(ctx context.Context, to, subject, body string) error {
	msg := n.mg.NewMessage(n.sender, subject, body, to)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := n.mg.Send(sendCtx, msg)
	if err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}

	return nil
}
