package notifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Noop stands in when no mailgun credentials are configured. It logs the
// would-be delivery so local development still shows the tokens.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) SendVerificationEmail(_ context.Context, to, token string) error {
	log.Info().Str("to", to).Str("token", token).Msg("noop notifier: verification email")
	return nil
}

func (Noop) SendPasswordResetEmail(_ context.Context, to, token string) error {
	log.Info().Str("to", to).Str("token", token).Msg("noop notifier: password reset email")
	return nil
}
