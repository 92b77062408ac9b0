// Package mail moves notification emails through RabbitMQ: the API publishes
// MailMessage envelopes and the worker renders and sends them over SMTP.
package mail

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/oracle312/AuthService/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templatesFS embed.FS

var ErrUnknownMailType = errors.New("unknown mail type")

// Sender is the part of *gomail.Client the worker needs.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type mailKind struct {
	template string
	subject  string
	data     func() any
}

var kinds = map[string]mailKind{
	domain.MailTypeWelcome: {
		template: "welcome_email.html",
		subject:  "Welcome to AuthService",
		data:     func() any { return &domain.WelcomeMailData{} },
	},
}

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type Worker struct {
	sender    Sender
	from      string
	templates *template.Template
}

func NewWorker(sender Sender, from string) (*Worker, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Worker{
		sender:    sender,
		from:      from,
		templates: tmpl,
	}, nil
}

// Build turns a queued message body into a ready-to-send mail.
func (w *Worker) Build(body []byte) (*gomail.Msg, error) {
	// 对邮件信息反序列化
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal mail message: %w", err)
	}

	kind, ok := kinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMailType, env.Type)
	}

	data := kind.data()
	if err := json.Unmarshal(env.Data, data); err != nil {
		return nil, fmt.Errorf("unmarshal %s data: %w", env.Type, err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(w.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(kind.subject)

	if err := msg.SetBodyHTMLTemplate(w.templates.Lookup(kind.template), data); err != nil {
		return nil, fmt.Errorf("set body: %w", err)
	}

	return msg, nil
}

// Handle builds and sends one message. Messages that can never be sent are
// dropped; send failures ask for a requeue.
func (w *Worker) Handle(ctx context.Context, body []byte) (requeue bool, err error) {
	msg, err := w.Build(body)
	if err != nil {
		return false, err
	}

	if err := w.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return true, fmt.Errorf("send mail: %w", err)
	}

	return false, nil
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			requeue, err := w.Handle(ctx, d.Body)
			if err != nil {
				slog.Error("邮件处理失败", "error", err, "requeue", requeue)
				_ = d.Nack(false, requeue)
				continue
			}

			// 确认消息
			_ = d.Ack(false)
		}
	}
}
