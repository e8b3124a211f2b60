package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vocabdrill/internal/models"
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
		log.Printf("[DEBUG] From Name: %s", fromName)
		log.Printf("[DEBUG] App Base URL: %s", appBaseURL)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		if debug {
			log.Printf("[DEBUG] Failed to load AWS config: %v", err)
		}
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if debug {
		log.Println("[DEBUG] AWS config loaded successfully")
	}

	// Create SES client
	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	if debug {
		log.Println("[DEBUG] SES client created successfully")
	}

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

// SendStudyReport tells a classroom owner how a learner did on a completed session
func (s *EmailService) SendStudyReport(ctx context.Context, toEmail, classroomName string, result *models.StudyResult, missed []models.Word) error {
	if s.debug {
		log.Printf("[DEBUG] SendStudyReport called: to=%s, classroom=%s, session=%s", toEmail, classroomName, result.SessionID)
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): study report to %s", toEmail)
		return nil
	}

	subject, htmlBody, textBody := buildStudyReport(classroomName, s.appBaseURL, result, missed)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// buildStudyReport renders the subject and bodies of a study report
func buildStudyReport(classroomName, appBaseURL string, result *models.StudyResult, missed []models.Word) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Vocabdrill report: %s (%.0f%%)", classroomName, result.Accuracy())

	var htmlRows, textRows strings.Builder
	for _, w := range missed {
		fmt.Fprintf(&htmlRows, "\t\t\t\t<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(w.English), html.EscapeString(w.Korean))
		fmt.Fprintf(&textRows, "- %s / %s\n", w.English, w.Korean)
	}
	if len(missed) == 0 {
		htmlRows.WriteString("\t\t\t\t<tr><td colspan=\"2\">No missed words</td></tr>\n")
		textRows.WriteString("No missed words\n")
	}

	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
			<p>A learner finished a %s session (%s).</p>
			<p><strong>%d of %d words correct</strong></p>
			<table>
				<tr><th>English</th><th>Korean</th></tr>
%s			</table>
			<p><a href="%s">Open Vocabdrill</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Vocabdrill. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(classroomName), result.Style, result.Direction, result.CorrectWords, result.TotalWords, htmlRows.String(), appBaseURL)

	textBody = fmt.Sprintf(`%s

A learner finished a %s session (%s).
%d of %d words correct

Missed words:
%s
Open Vocabdrill: %s

---
This is an automated email from Vocabdrill. Please do not reply.
`, classroomName, result.Style, result.Direction, result.CorrectWords, result.TotalWords, textRows.String(), appBaseURL)

	return subject, htmlBody, textBody
}

// SendAdminWelcomeEmail tells a new administrator their account exists
func (s *EmailService) SendAdminWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Your Vocabdrill administrator account"
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>
<p>An administrator account was created for you on Vocabdrill.</p>
<p><a href="%s/admin">Sign in</a></p>`, html.EscapeString(toName), s.appBaseURL)
	textBody := fmt.Sprintf("Hi %s,\n\nAn administrator account was created for you on Vocabdrill.\n\nSign in: %s/admin\n", toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if s.debug {
		log.Printf("[DEBUG] sendEmail called: to=%s, subject=%s", toEmail, subject)
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] From address: %s", fromAddress)
		log.Printf("[DEBUG] To address: %s", toEmail)
		log.Printf("[DEBUG] Subject: %s", subject)
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

	if s.debug {
		log.Printf("[DEBUG] Calling SES SendEmail API...")
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug {
		log.Printf("[DEBUG] SES SendEmail succeeded")
		if result.MessageId != nil {
			log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
		}
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
