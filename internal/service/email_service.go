package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     emailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service; it is disabled when fromEmail is empty
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
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

// SendTherapistWelcomeEmail tells a therapist their account exists.
// temporaryPassword is included only when one was generated for them.
func (s *EmailService) SendTherapistWelcomeEmail(ctx context.Context, toEmail, therapistName, parentName, temporaryPassword string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): therapist welcome to %s", toEmail)
		return nil
	}

	loginLink := s.appBaseURL + "/login"
	subject := "You have been invited to Lesson Lab"

	passwordHTML := ""
	passwordText := "Sign in with the password your contact shared with you."
	if temporaryPassword != "" {
		passwordHTML = fmt.Sprintf(`<p>Your temporary password is <strong>%s</strong>. Please keep it private.</p>`, html.EscapeString(temporaryPassword))
		passwordText = fmt.Sprintf("Your temporary password is: %s\nPlease keep it private.", temporaryPassword)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<p>Hi %s,</p>
		<p>%s has given you therapist access to their child's spelling progress reports on Lesson Lab.</p>
		%s
		<p style="text-align: center;"><a href="%s" class="button">Sign In</a></p>
		<div class="footer">This is an automated email from Lesson Lab. Please do not reply.</div>
	</div>
</body>
</html>
`, html.EscapeString(therapistName), html.EscapeString(parentName), passwordHTML, loginLink)

	textBody := fmt.Sprintf(`Hi %s,

%s has given you therapist access to their child's spelling progress reports on Lesson Lab.

%s

Sign in: %s

---
This is an automated email from Lesson Lab. Please do not reply.
`, therapistName, parentName, passwordText, loginLink)

	if s.debug {
		log.Printf("[DEBUG] Sending therapist welcome email: to=%s, generated password=%t", toEmail, temporaryPassword != "")
	}

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
