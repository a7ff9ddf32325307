package mailer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/onlyplans/server/internal/models"
)

// Config carries the SMTP credentials plus the addresses used when building
// transactional mail.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
	ClientURL  string
}

// Mailer wraps a single SMTP dialer, constructed once per process. Without an
// SMTP host configured it logs messages instead of sending them, which is the
// development-mode behavior.
type Mailer struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
	clientURL  string
}

func New(cfg Config) *Mailer {
	m := &Mailer{
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
		clientURL:  cfg.ClientURL,
	}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// ClientURL is the externally reachable frontend base URL, used to build
// password-reset links.
func (m *Mailer) ClientURL() string {
	return m.clientURL
}

func (m *Mailer) AdminEmail() string {
	return m.adminEmail
}

// Send delivers one message. Errors are returned for the caller to log;
// notification is always best-effort relative to the write it accompanies.
func (m *Mailer) Send(to, subject, text, html string) error {
	if m.dialer == nil {
		log.Printf("mail not sent (no SMTP configured). To: %s Subject: %s", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	if html != "" {
		msg.AddAlternative("text/html", html)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	log.Printf("email sent to %s", to)
	return nil
}

func (m *Mailer) SendWelcome(user *models.User) error {
	text := fmt.Sprintf("Hello %s,\n\nThank you for joining OnlyPlans! We're excited to have you as a member.\n\nRegards,\nThe OnlyPlans Team", user.Name)
	return m.Send(user.Email, "Welcome to OnlyPlans!", text, textToHTML(text))
}

func (m *Mailer) SendRegistrationConfirmation(user *models.User, event *models.Event) error {
	text := fmt.Sprintf(
		"Thank you for registering for %s!\n\nEvent Details:\nDate: %s\nLocation: %s\n\nWe look forward to seeing you there!",
		event.Title, event.Date.Format(time.RFC1123), event.Location,
	)
	return m.Send(user.Email, "Registration Confirmed: "+event.Title, text, textToHTML(text))
}

func (m *Mailer) SendEventReminder(email string, event *models.Event) error {
	text := fmt.Sprintf(
		"This is a reminder that %s is happening tomorrow!\n\nEvent Details:\nDate: %s\nLocation: %s\n\nWe look forward to seeing you there!",
		event.Title, event.Date.Format(time.RFC1123), event.Location,
	)
	return m.Send(email, "Reminder: "+event.Title+" is Tomorrow!", text, textToHTML(text))
}

func (m *Mailer) SendCancellationNotice(email string, event *models.Event) error {
	text := fmt.Sprintf(
		"We regret to inform you that %s has been cancelled.\n\nIf you have any questions, please contact the event organizers.",
		event.Title,
	)
	return m.Send(email, "Event Cancelled: "+event.Title, text, textToHTML(text))
}

func (m *Mailer) SendVolunteerAssignment(volunteer *models.User, event *models.Event) error {
	text := fmt.Sprintf(
		"You have been assigned as a volunteer for %s.\n\nEvent Details:\nDate: %s\nLocation: %s\n\nPlease log in to the platform to manage your responsibilities.",
		event.Title, event.Date.Format(time.RFC1123), event.Location,
	)
	return m.Send(volunteer.Email, "You've Been Assigned as a Volunteer: "+event.Title, text, textToHTML(text))
}

func (m *Mailer) SendPasswordReset(user *models.User, resetURL string) error {
	text := fmt.Sprintf("You requested a password reset. Please go to this link to reset your password: %s\n\nThis link is valid for 1 hour. If you didn't request this, please ignore this email.", resetURL)
	return m.Send(user.Email, "OnlyPlans Password Reset", text, textToHTML(text))
}

// SendContactMessage forwards a contact-form submission to the admin inbox.
func (m *Mailer) SendContactMessage(name, email, subject, message string) error {
	if subject == "" {
		subject = "New Message"
	}
	text := fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s", name, email, message)
	return m.Send(m.adminEmail, "Contact Form: "+subject, text, textToHTML(text))
}

func (m *Mailer) SendContactAck(name, email string) error {
	text := fmt.Sprintf("Dear %s,\n\nThank you for contacting us. We have received your message and will get back to you shortly.\n\nBest regards,\nThe OnlyPlans Team", name)
	return m.Send(email, "Thank you for contacting us", text, textToHTML(text))
}

func textToHTML(text string) string {
	return "<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>"
}
