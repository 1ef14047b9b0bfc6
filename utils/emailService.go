package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"learnhub/config"
)

// SendEmail delivers one HTML email through SendGrid. With no API key
// configured the send is skipped so local development works offline.
func SendEmail(toName, toEmail, subject, htmlBody string) error {
	if config.AppConfig.SendGridKey == "" {
		log.Printf("Email skipped (no SENDGRID_API_KEY): %q to %s", subject, toEmail)
		return nil
	}

	from := sgmail.NewEmail(config.AppConfig.SenderName, config.AppConfig.EmailSender)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("SendGrid rejected email to %s: %d %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.content h2 { color: #1B3A5C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3AA76D; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3AA76D; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 LearnHub. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Registration
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to LearnHub"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>LearnHub</strong>! Your account has been created.</p>
		<p>Browse the catalog and enroll in your first course to get started.</p>
	`, name)

	go SendEmail(name, email, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Enrollment confirmation
func SendEnrollmentEmail(email, name, courseName string) {
	subject := "Enrollment Confirmed: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open the course from your dashboard and start with lesson 1.
		</div>
	`, name, courseName)

	go SendEmail(name, email, subject, getEmailTemplate("Enrollment Successful", body))
}

// 3. Course completion
func SendCompletionEmail(email, name, courseName string) {
	subject := "Course Completed: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<p>Keep the momentum going and pick your next course from the catalog.</p>
	`, name, courseName)

	go SendEmail(name, email, subject, getEmailTemplate("Congratulations!", body))
}

// 4. Password reset
func SendPasswordResetEmail(email, name, token string) {
	subject := "Reset your LearnHub password"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset your password. Use the token below within 15 minutes:</p>
		<div class="info-box"><strong>%s</strong></div>
		<p>If you did not request this, you can safely ignore this email.</p>
	`, name, token)

	go SendEmail(name, email, subject, getEmailTemplate("Password Reset", body))
}

// 5. Contact form notification (to the support inbox)
func SendContactNotification(fromName, fromEmail, subject, message string) {
	mailSubject := "New Contact Message: " + subject
	body := fmt.Sprintf(`
		<p><strong>%s</strong> (%s) wrote:</p>
		<div style="margin: 20px 0; padding: 15px; background: #E8F0FE; border-radius: 4px;">
			<em>%s</em>
		</div>
	`, fromName, fromEmail, message)

	go SendEmail("Support", config.AppConfig.SupportInbox, mailSubject, getEmailTemplate("New Contact Message", body))
}

// 6. Progress reminder (scheduler)
func SendProgressReminderEmail(email, name, courseName string, progress int) {
	subject := "Pick up where you left off: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are <strong>%d%%</strong> of the way through <strong>%s</strong> and it has been a while since your last lesson.</p>
		<a href="#" class="btn">Continue Course</a>
	`, name, progress, courseName)

	go SendEmail(name, email, subject, getEmailTemplate("Keep Learning", body))
}
