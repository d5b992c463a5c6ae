package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// MailService sends OTP and notification mail over SMTP (STARTTLS).
type MailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewMailService(host string, port int, username, password, from, fromName string) *MailService {
	return &MailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

// Send delivers a single HTML mail. No retries: OTP mail is best-effort and
// the caller decides whether failure is fatal.
func (s *MailService) Send(to, subject, htmlBody string) error {
	if s.host == "" {
		return fmt.Errorf("mail: SMTP_HOST not configured")
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: {{.Color}};">{{.Heading}}</h2>
<p>Hi, {{.Name}},</p>
<p>{{.Intro}}</p>
<h1 style="color: {{.Color}};">{{.Code}}</h1>
<p>This OTP is valid for the next 10 minutes. Please do not share it with anyone.</p>
<p>If you did not request this, please ignore this email.</p>
<br/>
<p>Best regards,<br/>The Association App Team</p>
</div>`))

type otpTemplateData struct {
	Heading string
	Color   string
	Name    string
	Intro   string
	Code    string
}

func renderOtpTemplate(data otpTemplateData) string {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		// Template is static and the data is plain strings; Execute
		// cannot realistically fail here.
		return ""
	}
	return buf.String()
}

// VerifyEmailOtpTemplate renders the email-verification OTP body.
func VerifyEmailOtpTemplate(name, code string) string {
	return renderOtpTemplate(otpTemplateData{
		Heading: "Email Verification",
		Color:   "#4CAF50",
		Name:    name,
		Intro:   "Your One-Time Password (OTP) for email verification is:",
		Code:    code,
	})
}

// LoginOtpTemplate renders the login OTP body.
func LoginOtpTemplate(name, code string) string {
	return renderOtpTemplate(otpTemplateData{
		Heading: "Login OTP",
		Color:   "#FF5722",
		Name:    name,
		Intro:   "Your One-Time Password (OTP) for login is:",
		Code:    code,
	})
}
