package mailer

import (
	"testing"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	subject    string
	recipients []string
	body       string
}

type recordingSender struct {
	sent []sentMail
}

func (r *recordingSender) Send(subject string, recipients []string, body string) error {
	r.sent = append(r.sent, sentMail{subject: subject, recipients: recipients, body: body})
	return nil
}

const inbox = "credentialing@example.com"

func testTicket() *models.Ticket {
	return &models.Ticket{
		ID:           42,
		PracticeName: "Lakeside Family Practice",
		ProviderName: "Dr. Ahmed",
		Subject:      "CAQH re-attestation",
		Priority:     models.PriorityUrgent,
		Status:       models.StatusOpen,
		Staff: models.User{
			Username: "Staffer",
			Email:    "staff@example.com",
		},
	}
}

func TestTicketCreatedSendsBothMails(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, inbox)

	ticket := testTicket()
	n.TicketCreated(ticket, &ticket.Staff)

	require.Len(t, sender.sent, 2)

	teamMail := sender.sent[0]
	assert.Equal(t, "[New Ticket Created] #42 | Priority: Urgent", teamMail.subject)
	assert.Equal(t, []string{inbox}, teamMail.recipients)
	assert.Contains(t, teamMail.body, "Practice: Lakeside Family Practice")
	assert.Contains(t, teamMail.body, "Staff: Staffer (staff@example.com)")

	confirmation := sender.sent[1]
	assert.Equal(t, "[Ticket Confirmation] Ticket #42 Submitted", confirmation.subject)
	assert.Equal(t, []string{"staff@example.com"}, confirmation.recipients)
	assert.Contains(t, confirmation.body, "Hello Staffer,")
}

func TestStatusChangedGoesToOwnerAndInbox(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, inbox)

	ticket := testTicket()
	ticket.Status = models.StatusSolved
	n.StatusChanged(ticket)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "[Ticket Update] Ticket #42 is now Solved", mail.subject)
	assert.Equal(t, []string{"staff@example.com", inbox}, mail.recipients)
	assert.Contains(t, mail.body, "status is now: Solved")
}

func TestOverdueReminder(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, inbox)

	ticket := testTicket()
	ticket.Status = models.StatusInProgress
	n.OverdueReminder(ticket)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "[Reminder] Ticket #42 overdue (Urgent)", mail.subject)
	assert.Equal(t, []string{"staff@example.com", inbox}, mail.recipients)
	assert.Contains(t, mail.body, "has passed its SLA")
	assert.Contains(t, mail.body, "Please log in to the Credentialing Helpdesk Portal.")
}

func TestCloseAndReopenNotices(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, inbox)

	ticket := testTicket()
	n.TicketClosed(ticket, &ticket.Staff)
	n.TicketReopened(ticket, &ticket.Staff)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "[Ticket Closed] #42 Approved & Closed", sender.sent[0].subject)
	assert.Equal(t, "[Ticket Reopened] #42", sender.sent[1].subject)
	for _, mail := range sender.sent {
		assert.Equal(t, []string{inbox}, mail.recipients)
	}
}

func TestPasswordResetIncludesToken(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, inbox)

	user := &models.User{Username: "Staffer", Email: "staff@example.com"}
	n.PasswordReset(user, "reset-token-xyz")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"staff@example.com"}, sender.sent[0].recipients)
	assert.Contains(t, sender.sent[0].body, "reset-token-xyz")
}

func TestLogOnlySenderNeverFails(t *testing.T) {
	assert.NoError(t, LogOnlySender{}.Send("subject", []string{"a@example.com"}, "body"))
}
