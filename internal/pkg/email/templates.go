package email

import (
	"bytes"
	"html/template"
	"strings"
)

// Message is a rendered subject and HTML body
type Message struct {
	Subject string
	HTML    string
}

// CredentialsData fills the welcome email sent on account provisioning
type CredentialsData struct {
	Name         string
	Email        string
	Role         string
	Password     string
	AccessNumber string
	LoginURL     string
}

// ResetData fills the password reset email
type ResetData struct {
	Name     string
	ResetURL string
}

var (
	credentialsTmpl = template.Must(template.New("credentials").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Welcome to UCU Innovators Hub</h2>
		<p>Hello {{.Name}},</p>
		<p>An account has been created for you with the role <strong>{{.Role}}</strong>.</p>
		<ul>
			<li>Email: {{.Email}}</li>
			{{if .AccessNumber}}<li>Access number: {{.AccessNumber}}</li>{{end}}
			<li>Temporary password: <strong>{{.Password}}</strong></li>
		</ul>
		<p>Please sign in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> and change your password immediately.</p>
		<p>Best regards,<br>The Innovators Hub Team</p>
	</div>
</body>
</html>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Password reset</h2>
		<p>Hello {{.Name}},</p>
		<p>We received a request to reset your password. Use the link below within one hour:</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.ResetURL}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset password</a>
		</div>
		<p>If you did not request this, you can ignore this email.</p>
		<p>Best regards,<br>The Innovators Hub Team</p>
	</div>
</body>
</html>`))
)

// CredentialsEmail renders the account provisioning email
func CredentialsEmail(data CredentialsData) (Message, error) {
	var buf bytes.Buffer
	if err := credentialsTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: "Your UCU Innovators Hub account", HTML: buf.String()}, nil
}

// PasswordResetEmail renders the password reset email
func PasswordResetEmail(data ResetData) (Message, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: "Password reset request", HTML: buf.String()}, nil
}

// JoinURL joins a base URL and a path with exactly one slash between them
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
