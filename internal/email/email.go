package email

import (
	"context"
	"fmt"
	"time"

	"github.com/simorakkaus/tarologist/internal/config"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

// Service delivers the moderation-queue mail the mobile app used to send via
// the support mailbox: custom-question submissions and free-form category
// suggestions.
type Service struct {
	client          mailgun.Mailgun
	domain          string
	senderEmail     string
	senderName      string
	moderationEmail string
	enabled         bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:          client,
		domain:          cfg.MailgunDomain,
		senderEmail:     cfg.MailgunSenderEmail,
		senderName:      cfg.MailgunSenderName,
		moderationEmail: cfg.ModerationEmail,
		enabled:         enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendQuestionModerationEmail notifies the moderation mailbox about a newly
// submitted custom question.
func (s *Service) SendQuestionModerationEmail(question models.Question, category models.QuestionCategory) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := "Новый вопрос на модерацию"
	textBody := generateQuestionModerationText(question, category)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		s.moderationEmail,
	)
	message.SetHTML(generateQuestionModerationHTML(question, category))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send moderation email: %w", err)
	}

	logger.Info("Moderation email sent", "question_id", question.ID, "message_id", resp)
	return nil
}

// SendSuggestionEmail forwards a user's category or feature suggestion to
// the moderation mailbox.
func (s *Service) SendSuggestionEmail(login, subject, body string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		fmt.Sprintf("Предложение от пользователя: %s", subject),
		generateSuggestionText(login, body),
		s.moderationEmail,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send suggestion email: %w", err)
	}

	logger.Info("Suggestion email sent", "login", login, "message_id", resp)
	return nil
}
