package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"phonicsquest/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create SES client
	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to new parents
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to Phonics Quest!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #7c5cbf; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #7c5cbf; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Phonics Quest!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Thank you for creating your Phonics Quest account! We're excited to help your children learn to read through playful phonics adventures.</p>
			<p>Here's what you can do next:</p>
			<ul>
				<li>Add children to your family account</li>
				<li>Share their login cards so they can play</li>
				<li>Track mastery across the skill map</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Get Started</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Phonics Quest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your Phonics Quest account! We're excited to help your children learn to read through playful phonics adventures.

Here's what you can do next:
- Add children to your family account
- Share their login cards so they can play
- Track mastery across the skill map

Get started: %s/login

---
This is an automated email from Phonics Quest. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendProgressReport sends a parent a summary of one kid's recent progress
func (s *EmailService) SendProgressReport(ctx context.Context, toEmail, toName, kidName string, state models.AppState) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress report to %s", toEmail)
		return nil
	}

	mastered := 0
	unlocked := 0
	for _, node := range state.Nodes {
		if node.IsMastered {
			mastered++
		}
		if !node.IsLocked {
			unlocked++
		}
	}

	recent := state.Sessions
	if len(recent) > 5 {
		recent = recent[:5]
	}
	var sessionLines []string
	for _, sess := range recent {
		node := state.NodeByID(sess.SkillID)
		name := sess.SkillID
		if node != nil {
			name = node.Name
		}
		sessionLines = append(sessionLines, fmt.Sprintf("<li>%s: %d%% accuracy, %d stars</li>", name, sess.Accuracy, sess.StarsEarned))
	}
	if len(sessionLines) == 0 {
		sessionLines = append(sessionLines, "<li>No quests played yet this week</li>")
	}

	subject := fmt.Sprintf("%s's Phonics Quest Progress", kidName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #7c5cbf; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s's Progress</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Here's how %s is doing on their reading quest:</p>
			<ul>
				<li>Skills mastered: %d of %d</li>
				<li>Skills unlocked: %d</li>
				<li>Mastery level: %d</li>
				<li>Stars collected: %d</li>
			</ul>
			<p>Recent quests:</p>
			<ul>
				%s
			</ul>
		</div>
		<div class="footer">
			<p>This is an automated email from Phonics Quest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, kidName, toName, kidName, mastered, len(state.Nodes), unlocked,
		state.Profile.MasteryLevel, state.Profile.TotalStars, strings.Join(sessionLines, "\n\t\t\t\t"))

	textBody := fmt.Sprintf(`Hi %s,

Here's how %s is doing on their reading quest:

- Skills mastered: %d of %d
- Skills unlocked: %d
- Mastery level: %d
- Stars collected: %d

---
This is an automated email from Phonics Quest. Please do not reply.
`, toName, kidName, mastered, len(state.Nodes), unlocked,
		state.Profile.MasteryLevel, state.Profile.TotalStars)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: to=%s, subject=%s", toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Email sent: message id %s", *result.MessageId)
	}
	return nil
}
