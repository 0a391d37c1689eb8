// Package notify delivers outbound ticket notifications over AWS SES
// (email) and SNS (SMS).
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "helpdesk-automation/internal/common/errors"
	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/common/metrics"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/store"
)

// Interfaces over the AWS clients for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config controls which channels are active.
type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	// SMSPriorityThreshold is the minimum ticket priority that also
	// triggers an SMS. Defaults to high.
	SMSPriorityThreshold models.TicketPriority
}

// Sender resolves the ticket submitter's contact details and delivers
// rendered templates. It satisfies the workflow engine's Notifier.
type Sender struct {
	config    Config
	users     store.UserStore
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	templates map[string]emailTemplate
}

type emailTemplate struct {
	subject string
	body    string
}

func NewSender(ctx context.Context, config Config, users store.UserStore, log logger.Logger) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewSenderWithClients(config, users, log,
		ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg)), nil
}

// NewSenderWithClients wires explicit SES/SNS implementations, used by
// tests and by deployments with custom client setup.
func NewSenderWithClients(config Config, users store.UserStore, log logger.Logger, sesClient SESService, snsClient SNSService) *Sender {
	if config.SMSPriorityThreshold == "" {
		config.SMSPriorityThreshold = models.PriorityHigh
	}
	return &Sender{
		config:    config,
		users:     users,
		logger:    log,
		sesClient: sesClient,
		snsClient: snsClient,
		templates: defaultTemplates(),
	}
}

func defaultTemplates() map[string]emailTemplate {
	return map[string]emailTemplate{
		"ticket_created": {
			subject: "Ticket {{ticketId}} received",
			body:    "Hello {{userName}}, your ticket \"{{title}}\" has been received. Priority: {{priority}}.",
		},
		"ticket_assigned": {
			subject: "Ticket {{ticketId}} assigned",
			body:    "Ticket \"{{title}}\" has been assigned to {{assignedTo}}.",
		},
		"ticket_resolved": {
			subject: "Ticket {{ticketId}} resolved",
			body:    "Hello {{userName}}, your ticket \"{{title}}\" has been resolved. Please rate your experience.",
		},
		"critical_alert": {
			subject: "CRITICAL: {{title}}",
			body:    "Critical ticket {{ticketId}} requires immediate attention. Category: {{category}}.",
		},
	}
}

// SendTemplate renders the named template for the ticket and delivers
// it to the submitter over the enabled channels.
func (s *Sender) SendTemplate(ctx context.Context, ticket *models.Ticket, template string) error {
	tmpl, ok := s.templates[template]
	if !ok {
		return stderrors.NewTemplateNotFoundError(template)
	}

	recipient, err := s.users.Get(ctx, ticket.SubmittedBy)
	if err != nil {
		s.logger.Warn("notification recipient not found", map[string]interface{}{
			"ticketId": ticket.ID,
			"userId":   ticket.SubmittedBy,
		})
		return nil
	}

	data := templateData(ticket, recipient)
	subject := renderTemplate(tmpl.subject, data)
	body := renderTemplate(tmpl.body, data)

	return s.deliver(ctx, recipient, ticket.Priority, subject, body)
}

// SendAutoReply delivers a workflow-authored message without template
// lookup.
func (s *Sender) SendAutoReply(ctx context.Context, ticket *models.Ticket, message string) error {
	recipient, err := s.users.Get(ctx, ticket.SubmittedBy)
	if err != nil {
		s.logger.Warn("auto-reply recipient not found", map[string]interface{}{
			"ticketId": ticket.ID,
			"userId":   ticket.SubmittedBy,
		})
		return nil
	}

	subject := fmt.Sprintf("Re: %s", ticket.Title)
	return s.deliver(ctx, recipient, ticket.Priority, subject, message)
}

func (s *Sender) deliver(ctx context.Context, recipient *models.User, priority models.TicketPriority, subject, body string) error {
	if s.config.EmailEnabled && recipient.Email != "" {
		if err := s.sendEmail(ctx, recipient.Email, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			s.logger.Error("email send failed", map[string]interface{}{
				"error": err.Error(),
				"email": recipient.Email,
			})
			return stderrors.NewNotificationSendFailedError("email", err)
		}
		metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
	}

	if s.config.SMSEnabled && recipient.Phone != "" && priorityAtLeast(priority, s.config.SMSPriorityThreshold) {
		if err := s.sendSMS(ctx, recipient.Phone, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			s.logger.Error("SMS send failed", map[string]interface{}{
				"error": err.Error(),
				"phone": recipient.Phone,
			})
			return stderrors.NewNotificationSendFailedError("sms", err)
		}
		metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
	}

	return nil
}

func (s *Sender) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	return err
}

func (s *Sender) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

var priorityRank = map[models.TicketPriority]int{
	models.PriorityLow:      1,
	models.PriorityMedium:   2,
	models.PriorityHigh:     3,
	models.PriorityCritical: 4,
}

func priorityAtLeast(priority, threshold models.TicketPriority) bool {
	return priorityRank[priority] >= priorityRank[threshold]
}

func templateData(ticket *models.Ticket, recipient *models.User) map[string]interface{} {
	return map[string]interface{}{
		"ticketId":   ticket.ID,
		"title":      ticket.Title,
		"category":   string(ticket.Category),
		"priority":   string(ticket.Priority),
		"status":     string(ticket.Status),
		"assignedTo": ticket.AssignedTo,
		"userName":   recipient.Name,
		"sentAt":     time.Now().UTC().Format(time.RFC3339),
	}
}

// renderTemplate substitutes {{key}} placeholders and strips any that
// have no value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
