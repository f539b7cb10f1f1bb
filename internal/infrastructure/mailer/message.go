package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const InvitationSubject = "EasySign - Document Signature Request"

// Message is a single outgoing email
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	Attempts int    `json:"attempts"`
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<p>Hello,</p>
<p>{{.Inviter}} has requested your signature on <strong>{{.Title}}</strong>.</p>
<p><a href="{{.Link}}">Click here to review and sign the document</a></p>
<p>If the link does not work, copy this address into your browser:<br>{{.Link}}</p>
<p>EasySign</p>
`))

// InvitationData fills the signature request email
type InvitationData struct {
	Inviter string
	Title   string
	Link    string
}

// SignLink builds the frontend URL a signer opens for a document
func SignLink(base, documentID string) string {
	return strings.TrimRight(base, "/") + "/sign/" + documentID
}

// NewInvitation renders the signature request email for one recipient
func NewInvitation(to string, data InvitationData) (Message, error) {
	if data.Inviter == "" {
		data.Inviter = "Someone"
	}
	if data.Title == "" {
		data.Title = "a document"
	}

	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render invitation: %w", err)
	}

	return Message{
		To:       to,
		Subject:  InvitationSubject,
		HTMLBody: buf.String(),
	}, nil
}
