package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bellissimo/config"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// ErrNotifierDisabled is returned when no mail transport is configured.
var ErrNotifierDisabled = errors.New("notifier disabled")

// PaymentNotice tells the admin a payment was confirmed and a fee is now owed.
type PaymentNotice struct {
	PaymentID   uint
	PayerID     uint
	LandlordID  uint
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	UnitType    string
	FeeAmount   decimal.Decimal
	CompletedAt time.Time
}

// FeeReminder summarizes one landlord's unpaid platform fees.
type FeeReminder struct {
	LandlordID  uint
	Streams     int
	Outstanding decimal.Decimal
	Currency    string
}

type Notifier interface {
	PaymentCompleted(ctx context.Context, n PaymentNotice) error
	FeeReminder(ctx context.Context, r FeeReminder) error
}

// NewNotifier returns an SMTP notifier, or a disabled one when SMTP or the admin
// address is not configured.
func NewNotifier(cfg config.MailConfig) Notifier {
	if cfg.Host == "" || cfg.AdminEmail == "" {
		slog.Warn("smtp not configured, admin notifications disabled")
		return disabledNotifier{}
	}
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Sender,
		to:     cfg.AdminEmail,
	}
}

type disabledNotifier struct{}

func (disabledNotifier) PaymentCompleted(context.Context, PaymentNotice) error { return ErrNotifierDisabled }
func (disabledNotifier) FeeReminder(context.Context, FeeReminder) error       { return ErrNotifierDisabled }

// EmailNotifier mails the platform admin.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func (n *EmailNotifier) PaymentCompleted(ctx context.Context, p PaymentNotice) error {
	subject := fmt.Sprintf("Payment #%d confirmed (%s %s)", p.PaymentID, p.Currency, p.Amount.StringFixed(2))
	body := fmt.Sprintf(`<p>Payment <b>#%d</b> from payer %d to landlord %d was confirmed.</p>
<ul>
<li>Amount: %s %s</li>
<li>Reference: %s</li>
<li>Completed: %s</li>
<li>Platform fee (%s): %s %s</li>
</ul>`,
		p.PaymentID, p.PayerID, p.LandlordID,
		p.Currency, p.Amount.StringFixed(2),
		p.Reference, p.CompletedAt.Format(time.RFC1123),
		p.UnitType, p.Currency, p.FeeAmount.StringFixed(2))
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) FeeReminder(ctx context.Context, r FeeReminder) error {
	subject := fmt.Sprintf("Landlord %d owes %s %s in platform fees", r.LandlordID, r.Currency, r.Outstanding.StringFixed(2))
	body := fmt.Sprintf(`<p>Landlord <b>%d</b> has %d unpaid revenue stream(s) totalling <b>%s %s</b>.</p>`,
		r.LandlordID, r.Streams, r.Currency, r.Outstanding.StringFixed(2))
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
