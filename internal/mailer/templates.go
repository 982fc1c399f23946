package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

// ConfirmationParams fills the ticket-confirmation template.
type ConfirmationParams struct {
	To          string
	TicketID    string
	Subject     string
	Description string
}

// ResponseParams fills the ticket-response template.
type ResponseParams struct {
	To            string
	TicketID      string
	Subject       string
	Response      string
	ResponderName string
}

var confirmationTmpl = template.Must(template.New("ticket-confirmation").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Thank you for contacting our support team.</h2>

  <p>We've received your ticket with the following details:</p>

  <ul>
    <li><strong>Ticket ID:</strong> {{.TicketID}}</li>
    <li><strong>Subject:</strong> {{.Subject}}</li>
  </ul>

  <div style="margin: 20px 0; padding: 15px; background: #f5f5f5; border-radius: 5px;">
    <strong>Your message:</strong><br>
    {{.Description}}
  </div>

  <p>You can reply directly to this email to add more information to your ticket.</p>

  <p>Best regards,<br>Support Team</p>
</div>
`))

var responseTmpl = template.Must(template.New("ticket-response").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>We've responded to your support ticket</h2>

  <p>Regarding: "{{.Subject}}"</p>

  <div style="margin: 20px 0; padding: 15px; background: #f5f5f5; border-radius: 5px;">
    <strong>Response from {{.ResponderName}}:</strong><br>
    {{.Response}}
  </div>

  <p>You can reply directly to this email to continue the conversation.</p>

  <p>Best regards,<br>Support Team</p>
</div>
`))

func renderConfirmation(p ConfirmationParams) (subject, html string, err error) {
	subject = fmt.Sprintf("[Ticket #%s] We've received your support request", p.TicketID)
	var buf strings.Builder
	if err = confirmationTmpl.Execute(&buf, p); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func renderResponse(p ResponseParams) (subject, html string, err error) {
	subject = fmt.Sprintf("[Ticket #%s] Response to your support request", p.TicketID)
	var buf strings.Builder
	if err = responseTmpl.Execute(&buf, p); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
