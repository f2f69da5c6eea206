// Package mailer renders and sends transactional emails
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/drivingschool/backend/internal/models"
	"gopkg.in/mail.v2"
)

// ErrUnknownTemplate is returned for template names the mailer does not know
var ErrUnknownTemplate = errors.New("unknown email template")

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[models.EmailTemplate]emailTemplate{
	models.EmailTemplateLessonReminder: {
		subject: template.Must(template.New("reminder_subject").Parse(`Reminder: your driving lesson on {{.Date}} at {{.Time}}`)),
		body: template.Must(template.New("reminder_body").Parse(`Hi {{.Name}},

This is a reminder of your {{.LessonType}} lesson with {{.Instructor}} tomorrow, {{.Date}} at {{.Time}}.
Booking reference: {{.Reference}}

If you need to cancel, please do so at least 24 hours in advance from your dashboard.

See you on the road!
`)),
	},
	models.EmailTemplateSupportAck: {
		subject: template.Must(template.New("support_subject").Parse(`We received your message`)),
		body: template.Must(template.New("support_body").Parse(`Hi {{.Name}},

Thanks for getting in touch. Our team has received your message and will reply within one working day.

Your message:
{{.Message}}
`)),
	},
}

// Render produces the subject and plain text body of a message
func Render(msg models.EmailMessage) (subject, body string, err error) {
	tpl, ok := templates[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}

	data := msg.Data
	if data == nil {
		data = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tpl.subject.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	subject = buf.String()

	buf.Reset()
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}

	return subject, buf.String(), nil
}

// Dialer sends prepared messages; *mail.Dialer satisfies it
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends templated emails through SMTP
type Mailer struct {
	dialer Dialer
	from   string
}

// New creates a Mailer that dials the given SMTP server
func New(host string, port int, username, password, from string) *Mailer {
	return NewWithDialer(mail.NewDialer(host, port, username, password), from)
}

// NewWithDialer creates a Mailer with a custom dialer
func NewWithDialer(dialer Dialer, from string) *Mailer {
	return &Mailer{
		dialer: dialer,
		from:   from,
	}
}

// Send renders msg and delivers it
func (m *Mailer) Send(msg models.EmailMessage) error {
	if msg.To == "" {
		return errors.New("email recipient is empty")
	}

	subject, body, err := Render(msg)
	if err != nil {
		return err
	}

	message := mail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
