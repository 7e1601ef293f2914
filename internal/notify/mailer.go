package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"traffic_violation/internal/domain"
)

var noticeBody = template.Must(template.New("notice").Parse(`
Dear Vehicle Owner,

Your vehicle with license plate {{.LicensePlate}} was detected violating traffic rules.

Violation Type: {{.ViolationType}}
Details: {{.Description}}

This is an automated notice. Please ensure compliance with road safety regulations.

Regards,
Traffic Authority AI System
`))

// Sender delivers a composed message; *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSMTPClient opens nothing yet: it configures an implicit-TLS client
// with PLAIN auth that dials per send.
func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

type Mailer struct {
	sender Sender
	from   string
	logger *zap.Logger
}

func NewMailer(sender Sender, from string, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, logger: logger}
}

// SendViolationNotice never returns an error: a failed send is logged and
// reported as false so the caller can carry on.
func (m *Mailer) SendViolationNotice(ctx context.Context, notice domain.ViolationNotice) bool {
	msg, err := m.compose(notice)
	if err == nil {
		err = m.sender.DialAndSendWithContext(ctx, msg)
	}
	if err != nil {
		m.logger.Warn("failed to send violation notice",
			zap.String("to", notice.To),
			zap.String("license_plate", notice.LicensePlate),
			zap.Error(err))
		return false
	}

	m.logger.Info("violation notice sent",
		zap.String("to", notice.To),
		zap.String("license_plate", notice.LicensePlate))
	return true
}

func (m *Mailer) compose(notice domain.ViolationNotice) (*mail.Msg, error) {
	var body bytes.Buffer
	if err := noticeBody.Execute(&body, notice); err != nil {
		return nil, fmt.Errorf("render notice: %w", err)
	}

	// 8bit keeps the template lines intact instead of quoted-printable wrapping
	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(notice.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", notice.To, err)
	}
	msg.Subject(fmt.Sprintf("Traffic Violation Notice for %s", notice.LicensePlate))
	msg.SetBodyString(mail.TypeTextPlain, body.String())
	return msg, nil
}
