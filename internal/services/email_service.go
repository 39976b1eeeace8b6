package services

import (
	"context"
	"fmt"
	"html"

	"foodshare/internal/config"
	"foodshare/internal/groups"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// mailClient is the part of the SendGrid client the service uses.
type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService delivers group notifications through SendGrid.
type EmailService struct {
	client    mailClient
	fromEmail string
	fromName  string
	siteURL   string
}

func NewEmailService(cfg config.Email) *EmailService {
	return &EmailService{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		siteURL:   cfg.SiteURL,
	}
}

// Send implements groups.Notifier.
func (s *EmailService) Send(ctx context.Context, n groups.Notification) error {
	if n.To.Email == "" {
		return fmt.Errorf("recipient %d has no email address", n.To.UserID)
	}

	subject, plainContent, htmlContent, err := s.render(n)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(n.To.Name, n.To.Email)
	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", n.To.Email, response.StatusCode)
	}
	return nil
}

func (s *EmailService) render(n groups.Notification) (subject, plain, htmlBody string, err error) {
	groupName := n.Group.Name
	groupURL := fmt.Sprintf("%s/#/group/%d", s.siteURL, n.Group.ID)

	switch n.Kind {
	case groups.KindUserInactive:
		subject = fmt.Sprintf("You are now marked as inactive in %s", groupName)
		plain = fmt.Sprintf("Hello %s, you have not visited '%s' for a while, so we marked you as inactive. "+
			"Visit %s to become active again.", n.To.Name, groupName, groupURL)
		htmlBody = fmt.Sprintf("<p>Hello %s,</p><p>You have not visited '<strong>%s</strong>' for a while, so we marked you as inactive.</p>"+
			"<p><a href=\"%s\">Visit the group</a> to become active again.</p>",
			html.EscapeString(n.To.Name), html.EscapeString(groupName), groupURL)

	case groups.KindRemovalWarning:
		date := n.RemovalDate.Format("Mon Jan 2, 2006")
		subject = fmt.Sprintf("You will soon be removed from %s", groupName)
		plain = fmt.Sprintf("Hello %s, you have been inactive in '%s' for a long time. "+
			"Unless you visit %s before %s, you will be removed from the group.", n.To.Name, groupName, groupURL, date)
		htmlBody = fmt.Sprintf("<p>Hello %s,</p><p>You have been inactive in '<strong>%s</strong>' for a long time.</p>"+
			"<p>Unless you <a href=\"%s\">visit the group</a> before %s, you will be removed from it.</p>",
			html.EscapeString(n.To.Name), html.EscapeString(groupName), groupURL, date)

	case groups.KindGroupSummary:
		if n.Report == nil {
			return "", "", "", fmt.Errorf("summary notification for group %d has no report", n.Group.ID)
		}
		r := n.Report
		subject = fmt.Sprintf("%s weekly summary", groupName)
		plain = fmt.Sprintf("Hello %s, here is what happened in '%s': %d messages, %d new members, "+
			"%d activities done, %d activities missed, %d feedback. %s",
			n.To.Name, groupName, r.MessageCount, r.NewUserCount, r.ActivitiesDone, r.ActivitiesMissed, r.FeedbackCount, groupURL)
		htmlBody = fmt.Sprintf("<p>Hello %s,</p><p>Here is what happened in '<strong>%s</strong>':</p><ul>"+
			"<li>%d messages</li><li>%d new members</li><li>%d activities done</li><li>%d activities missed</li><li>%d feedback</li>"+
			"</ul><p><a href=\"%s\">Open the group</a></p>",
			html.EscapeString(n.To.Name), html.EscapeString(groupName),
			r.MessageCount, r.NewUserCount, r.ActivitiesDone, r.ActivitiesMissed, r.FeedbackCount, groupURL)

	default:
		return "", "", "", fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	return subject, plain, htmlBody, nil
}
