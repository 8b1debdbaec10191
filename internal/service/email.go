package service

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulsefeed/backend/internal/models"
)

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func NewEmailService() IEmailService {
	return &EmailService{
		smtpHost:     readSecret("smtp_host"),
		smtpPort:     readSecret("smtp_port"),
		smtpUsername: readSecret("smtp_username"),
		smtpPassword: readSecret("smtp_password"),
		fromEmail:    readSecret("email_from"),
		fromName:     readSecret("email_from_name"),
	}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if s.smtpHost == "" || s.smtpPort == "" {
		fmt.Printf("SMTP not configured, logging email:\n")
		fmt.Printf("To: %s\n", to)
		fmt.Printf("Subject: %s\n", subject)
		fmt.Printf("Body:\n%s\n", body)
		fmt.Printf("--- End Email ---\n")
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *EmailService) SendVerificationCode(user *models.User, code string) error {
	subject := "Verify Your Email - Pulsefeed"
	body := s.buildVerificationEmailBody(user, code)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(user *models.User) error {
	subject := "Welcome to Pulsefeed!"
	body := s.buildWelcomeEmailBody(user)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) buildVerificationEmailBody(user *models.User, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Verify Your Email - Pulsefeed</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background-color: #2D6CDF; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 28px;">Pulsefeed</h1>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #2D6CDF; margin-top: 0;">Hi %s,</h2>
		<p>Use the code below to verify your email address and activate your account.</p>

		<div style="text-align: center; margin: 30px 0;">
			<span style="background-color: #eee; padding: 15px 30px; border-radius: 5px; font-weight: bold; font-size: 28px; letter-spacing: 8px; display: inline-block;">%s</span>
		</div>

		<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
			<p style="color: #666; font-size: 12px; margin: 0;">
				This code expires in 15 minutes. If you didn't sign up for Pulsefeed, you can safely ignore this email.
			</p>
		</div>
	</div>
</body>
</html>
	`, user.FirstName, code)
}

func (s *EmailService) buildWelcomeEmailBody(user *models.User) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Welcome to Pulsefeed!</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background-color: #2D6CDF; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 28px;">Welcome to Pulsefeed!</h1>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #2D6CDF; margin-top: 0;">Hello %s %s!</h2>
		<p>Your email has been verified. You can now share posts, follow profiles and join the conversation.</p>

		<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
			<p style="color: #666; font-size: 12px; margin: 0;">
				The Pulsefeed Team
			</p>
		</div>
	</div>
</body>
</html>
	`, user.FirstName, user.LastName)
}
