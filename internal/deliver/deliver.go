// Package deliver sends finished digests to Telegram and email.
package deliver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/render"
)

// Digest is a rendered digest ready to send. Plain is a text rendering used
// by channels that cannot show Body's format.
type Digest struct {
	Title  string
	Body   string
	Plain  string
	Path   string
	Format render.Format
}

func (d Digest) plain() string {
	if d.Plain != "" {
		return d.Plain
	}
	return d.Body
}

type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, d Digest) error
}

// FromConfig returns the enabled deliverers.
func FromConfig(c config.OutputConfig) []Deliverer {
	var out []Deliverer
	if c.Telegram.Enabled {
		out = append(out, NewTelegram(c.Telegram.BotToken, c.Telegram.ChatID))
	}
	if c.Email.Enabled {
		out = append(out, NewEmail(EmailOptions{
			Host:        c.Email.SMTPHost,
			Port:        c.Email.SMTPPort,
			Username:    c.Email.SMTPUser,
			Password:    c.Email.SMTPPassword,
			From:        c.Email.From,
			To:          c.Email.To,
			StartTLS:    c.Email.UseTLS,
			ImplicitTLS: c.Email.UseSSL,
		}))
	}
	return out
}

// All sends d through every deliverer. Failures are logged and returned;
// one failing channel does not stop the others.
func All(ctx context.Context, logger *slog.Logger, deliverers []Deliverer, d Digest) []error {
	var errs []error
	for _, dl := range deliverers {
		if err := dl.Deliver(ctx, d); err != nil {
			logger.Warn("delivery failed", "channel", dl.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dl.Name(), err))
			continue
		}
		logger.Info("digest delivered", "channel", dl.Name())
	}
	return errs
}
