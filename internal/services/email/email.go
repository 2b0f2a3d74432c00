package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Service sends transactional notification emails over SMTP
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
}

// NewService creates a new email service from environment configuration
func NewService() *Service {
	return &Service{
		smtpHost:     os.Getenv("SMTP_HOST"),
		smtpPort:     os.Getenv("SMTP_PORT"),
		smtpUsername: os.Getenv("SMTP_USERNAME"),
		smtpPassword: os.Getenv("SMTP_PASSWORD"),
		fromEmail:    os.Getenv("FROM_EMAIL"),
	}
}

// SendKYCDecision notifies a user of the outcome of their identity review
func (s *Service) SendKYCDecision(toEmail, fullName string, verified bool, reason string) error {
	var subject, outcome string
	if verified {
		subject = "Your CausaFund identity verification was approved"
		outcome = "<p>Your identity verification has been approved. You can now create campaigns and manage withdrawal accounts.</p>"
	} else {
		subject = "Your CausaFund identity verification was rejected"
		outcome = fmt.Sprintf("<p>Your identity verification was rejected for the following reason:</p><p><strong>%s</strong></p><p>You can resubmit your document from your profile page.</p>", reason)
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body>
		<div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
			<h2>Hello %s,</h2>
			%s
			<p>Best regards,<br>The CausaFund Team</p>
		</div>
	</body>
	</html>
	`, fullName, outcome)

	return s.sendEmail(toEmail, subject, body)
}

// SendManualPaymentDecision notifies a donor of the review outcome of their
// manually-settled donation
func (s *Service) SendManualPaymentDecision(toEmail, campaignTitle string, amountUSD float64, approved bool, note string) error {
	var subject, outcome string
	if approved {
		subject = "Your donation was confirmed"
		outcome = fmt.Sprintf("<p>Your donation of $%.2f to <strong>%s</strong> has been verified and credited to the campaign. Thank you for your support!</p>", amountUSD, campaignTitle)
	} else {
		subject = "Your donation could not be verified"
		outcome = fmt.Sprintf("<p>We could not verify your payment of $%.2f for <strong>%s</strong>.</p>", amountUSD, campaignTitle)
		if note != "" {
			outcome += fmt.Sprintf("<p>Reviewer note: %s</p>", note)
		}
		outcome += "<p>If you believe this is a mistake, please submit a new donation with the correct transaction reference.</p>"
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body>
		<div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
			<h2>Hello,</h2>
			%s
			<p>Best regards,<br>The CausaFund Team</p>
		</div>
	</body>
	</html>
	`, outcome)

	return s.sendEmail(toEmail, subject, body)
}

// sendEmail sends an email with HTML content
func (s *Service) sendEmail(toEmail, subject, htmlBody string) error {
	if s.smtpHost == "" || s.smtpPort == "" || s.smtpUsername == "" || s.smtpPassword == "" {
		log.Println("Email service not configured properly. Check environment variables.")
		return fmt.Errorf("email service not configured")
	}

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	from := fmt.Sprintf("From: CausaFund <%s>\n", s.fromEmail)
	to := fmt.Sprintf("To: %s\n", toEmail)
	subject = fmt.Sprintf("Subject: %s\n", subject)

	message := []byte(from + to + subject + mime + htmlBody)

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)

	return smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, message)
}
