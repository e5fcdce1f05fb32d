package mailer

import (
	"fmt"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	log "github.com/sirupsen/logrus"
)

// Notifier sends the portal's lifecycle notifications. Delivery failures are
// logged and swallowed so a broken mail account never fails a request.
type Notifier struct {
	sender Sender
	// inbox is the credentialing team address copied on every notification.
	inbox string
}

func NewNotifier(sender Sender, inbox string) *Notifier {
	return &Notifier{sender: sender, inbox: inbox}
}

func (n *Notifier) send(subject string, recipients []string, body string) {
	if err := n.sender.Send(subject, recipients, body); err != nil {
		log.WithError(err).WithField("subject", subject).Error("Email error")
	}
}

// TicketCreated notifies the credentialing inbox and confirms to the submitter.
func (n *Notifier) TicketCreated(t *models.Ticket, staff *models.User) {
	n.send(
		fmt.Sprintf("[New Ticket Created] #%d | Priority: %s", t.ID, t.Priority),
		[]string{n.inbox},
		fmt.Sprintf(
			"Hello Credentialing Team,\n\n"+
				"A new ticket has been submitted.\n\n"+
				"Ticket ID: #%d\n"+
				"Staff: %s (%s)\n"+
				"Practice: %s\n"+
				"Provider: %s\n"+
				"Priority: %s\n"+
				"Subject: %s\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			t.ID, staff.Username, staff.Email, t.PracticeName, t.ProviderName, t.Priority, t.Subject),
	)

	n.send(
		fmt.Sprintf("[Ticket Confirmation] Ticket #%d Submitted", t.ID),
		[]string{staff.Email},
		fmt.Sprintf(
			"Hello %s,\n\n"+
				"Your ticket #%d has been submitted.\n\n"+
				"Priority: %s\n"+
				"Subject: %s\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			staff.Username, t.ID, t.Priority, t.Subject),
	)
}

// StatusChanged notifies the ticket owner (and the inbox) of an admin update.
func (n *Notifier) StatusChanged(t *models.Ticket) {
	n.send(
		fmt.Sprintf("[Ticket Update] Ticket #%d is now %s", t.ID, t.Status),
		[]string{t.Staff.Email, n.inbox},
		fmt.Sprintf(
			"Hello %s,\n\n"+
				"Your ticket #%d status is now: %s.\n\n"+
				"Subject: %s\n"+
				"Priority: %s\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			t.Staff.Username, t.ID, t.Status, t.Subject, t.Priority),
	)
}

// TicketClosed notifies the credentialing inbox of a staff approval.
func (n *Notifier) TicketClosed(t *models.Ticket, by *models.User) {
	n.send(
		fmt.Sprintf("[Ticket Closed] #%d Approved & Closed", t.ID),
		[]string{n.inbox},
		fmt.Sprintf(
			"Hello Credentialing Team,\n\n"+
				"Ticket #%d has been approved & closed by %s.\n\n"+
				"Subject: %s\n"+
				"Priority: %s\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			t.ID, by.Username, t.Subject, t.Priority),
	)
}

// TicketReopened notifies the credentialing inbox that staff reopened a ticket.
func (n *Notifier) TicketReopened(t *models.Ticket, by *models.User) {
	n.send(
		fmt.Sprintf("[Ticket Reopened] #%d", t.ID),
		[]string{n.inbox},
		fmt.Sprintf(
			"Hello Credentialing Team,\n\n"+
				"Ticket #%d has been reopened by %s.\n\n"+
				"Subject: %s\n"+
				"Priority: %s\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			t.ID, by.Username, t.Subject, t.Priority),
	)
}

// OverdueReminder nags the ticket owner and the inbox about a missed SLA.
func (n *Notifier) OverdueReminder(t *models.Ticket) {
	n.send(
		fmt.Sprintf("[Reminder] Ticket #%d overdue (%s)", t.ID, t.Priority),
		[]string{t.Staff.Email, n.inbox},
		fmt.Sprintf(
			"Hello,\n\n"+
				"Ticket #%d is still '%s' and has passed its SLA.\n\n"+
				"Staff: %s (%s)\n"+
				"Practice: %s\n"+
				"Provider: %s\n"+
				"Subject: %s\n"+
				"Priority: %s\n\n"+
				"Please log in to the Credentialing Helpdesk Portal.\n\n"+
				"Regards,\nCredentialing Helpdesk System",
			t.ID, t.Status, t.Staff.Username, t.Staff.Email,
			t.PracticeName, t.ProviderName, t.Subject, t.Priority),
	)
}

// PasswordReset mails a reset link token to the account owner.
func (n *Notifier) PasswordReset(user *models.User, token string) {
	n.send(
		"[Credentialing Helpdesk] Password Reset Instructions",
		[]string{user.Email},
		fmt.Sprintf(
			"Hello %s,\n\n"+
				"A password reset was requested for your account. Use the token below "+
				"with the reset-password form within 30 minutes:\n\n"+
				"%s\n\n"+
				"If you did not request this, you can ignore this message.\n\n"+
				"Regards,\nCredentialing Helpdesk",
			user.Username, token),
	)
}
