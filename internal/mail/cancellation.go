package mail

import (
	"fmt"

	"github.com/hourdesk/appointments-api/internal/jobs"
)

const cancellationDateLayout = "Monday, January 2 at 15:04"

// RenderCancellation builds the email the provider receives when a booking is
// canceled. Everything it needs travels in the job payload snapshot.
func RenderCancellation(snapshot jobs.AppointmentSnapshot) EmailMessage {
	when := snapshot.Date.Format(cancellationDateLayout)

	body := fmt.Sprintf(`Hello %s,

%s canceled their appointment scheduled for %s.

The slot is open for booking again.`,
		snapshot.Provider.Name, snapshot.User.Name, when)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>Appointment canceled</h2>
<p>Hello <strong>%s</strong>,</p>
<p><strong>%s</strong> canceled their appointment scheduled for <strong>%s</strong>.</p>
<p>The slot is open for booking again.</p>
</div>`,
		snapshot.Provider.Name, snapshot.User.Name, when)

	return EmailMessage{
		To:      snapshot.Provider.Email,
		ToName:  snapshot.Provider.Name,
		Subject: "Appointment canceled",
		Body:    body,
		HTML:    html,
	}
}
