package mailer

import (
	"bytes"
	"html/template"
	"time"
)

const layoutStart = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">`

var (
	magicLinkTmpl = template.Must(template.New("magic").Parse(layoutStart + `
<h1 style="color: #333; text-align: center;">Welcome to Lura!</h1>
<p style="font-size: 16px; line-height: 1.5; color: #555;">Click the button below to sign in:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.Link}}" style="background-color: #000; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Sign In to Lura</a>
</div>
<p style="font-size: 14px; color: #777;">This link will expire in 1 hour.</p>
<p style="font-size: 14px; color: #777;">If you didn't request this email, you can safely ignore it.</p>
</div>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(layoutStart + `
<h1 style="color: #333; text-align: center;">Calendar Reminder</h1>
<p style="font-size: 16px; line-height: 1.5; color: #555;">This is a reminder that you have an event coming up:</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
<h2 style="color: #000; margin-top: 0;">{{.Title}}</h2>
<p style="margin: 5px 0;"><strong>Time:</strong> {{.Start}}</p>
{{if .Notes}}<p style="margin: 5px 0;"><strong>Notes:</strong> {{.Notes}}</p>{{end}}
<p style="margin: 5px 0;"><strong>Reminder:</strong> {{.Before}} before event</p>
</div>
<p style="font-size: 14px; color: #777;">This reminder was sent automatically by Lura Calendar.</p>
</div>`))

	expiredTmpl = template.Must(template.New("expired").Parse(layoutStart + `
<h1 style="color: #c00; text-align: center;">Event Expired</h1>
<p style="font-size: 16px; line-height: 1.5; color: #555;">The following event has expired:</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
<h2 style="color: #000; margin-top: 0;">{{.Title}}</h2>
<p style="margin: 5px 0;"><strong>Time:</strong> {{.Start}}</p>
{{if .Notes}}<p style="margin: 5px 0;"><strong>Notes:</strong> {{.Notes}}</p>{{end}}
</div>
<p style="font-size: 14px; color: #777;">This notification was sent automatically by Lura Calendar.</p>
</div>`))
)

// EventInfo — данные события для писем календаря.
type EventInfo struct {
	Title string
	Start time.Time
	Notes string
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	// шаблоны статические, ошибка возможна только при записи в буфер
	_ = t.Execute(&buf, data)
	return buf.String()
}

// MagicLinkMessage письмо со ссылкой входа.
func MagicLinkMessage(to, link string) Message {
	return Message{
		FromName: "Lura App",
		To:       to,
		Subject:  "Your Magic Link to Sign In",
		HTML:     render(magicLinkTmpl, struct{ Link string }{link}),
	}
}

// ReminderMessage письмо-напоминание; before — уже отформатированный интервал ("10 minutes").
func ReminderMessage(to string, ev EventInfo, before string) Message {
	return Message{
		FromName: "Lura Calendar",
		To:       to,
		Subject:  "Reminder: " + ev.Title,
		HTML: render(reminderTmpl, struct {
			Title, Start, Notes, Before string
		}{ev.Title, ev.Start.Format(time.RFC1123), ev.Notes, before}),
	}
}

// ExpiredMessage письмо о просроченном событии.
func ExpiredMessage(to string, ev EventInfo) Message {
	return Message{
		FromName: "Lura Calendar",
		To:       to,
		Subject:  "Event Expired: " + ev.Title,
		HTML: render(expiredTmpl, struct {
			Title, Start, Notes string
		}{ev.Title, ev.Start.Format(time.RFC1123), ev.Notes}),
	}
}
