package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
	templates "github.com/linesmerrill/relief-api/templates/html"
)

// Mailer sends one transactional email
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// SendgridMailer sends branded emails through SendGrid
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendgridMailer returns a mailer sending as fromName <fromEmail>
func NewSendgridMailer(apiKey, fromName, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

// Send renders body into the generic template and sends it.
func (m *SendgridMailer) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	htmlContent := templates.RenderGenericEmail(subject, body)
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), body, htmlContent)
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// MailChannel emails the reporter when a volunteer's work awaits approval.
// Other notification kinds are left to the realtime channels.
type MailChannel struct {
	Mailer Mailer
	UDB    databases.UserDatabase
}

// Name of the channel
func (m *MailChannel) Name() string { return "email" }

// Deliver sends one email per awaiting-approval notification.
func (m *MailChannel) Deliver(ctx context.Context, notifications []models.Notification) error {
	for _, n := range notifications {
		if n.Kind != models.NotificationVolunteerCompleted {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(n.UserID)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", n.UserID, err)
		}
		user, err := m.UDB.FindOne(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("failed to look up recipient %s: %w", n.UserID, err)
		}
		if user.Email == "" {
			continue
		}
		if err := m.Mailer.Send(ctx, user.Name, user.Email, "Your emergency is awaiting approval", n.Message); err != nil {
			return err
		}
	}
	return nil
}
