// ABOUTME: User-facing message texts rendered from text/template strings
// ABOUTME: Empty fields fall back to defaults; every template is test-rendered at load

package relay

import (
	"fmt"
	"strings"
	"text/template"
)

// Texts holds the raw template strings. Available fields: .Name, .UserID, .Text.
type Texts struct {
	Greeting          string
	Declined          string
	PleaseWait        string
	AdminNotification string
	ReplyPrompt       string
	AdminReply        string
	ReplySent         string
	StartMarker       string

	AcceptLabel  string
	DeclineLabel string
	ReplyLabel   string
}

// DefaultTexts returns the built-in English texts.
func DefaultTexts() Texts {
	return Texts{
		Greeting: "Dear customer {{.Name}}!\n" +
			"Welcome to the support bot.\n" +
			"Press YES to talk to one of our representatives, otherwise press NO.",
		Declined:          "Thank you {{.Name}} for staying with us.",
		PleaseWait:        "Dear customer {{.Name}}, all of our representatives are busy right now. Please wait.",
		AdminNotification: "New chat request: {{.Name}}\nUser ID: {{.UserID}}",
		ReplyPrompt:       "Type the message you want to send to user {{.UserID}}:",
		AdminReply:        "Admin: {{.Text}}",
		ReplySent:         "Message sent to the user.",
		StartMarker:       "Chat started (YES clicked)",
		AcceptLabel:       "YES",
		DeclineLabel:      "NO",
		ReplyLabel:        "Reply",
	}
}

// templateData is what every template is executed with
type templateData struct {
	Name   string
	UserID int64
	Text   string
}

// Templates are parsed Texts ready to render.
type Templates struct {
	greeting          *template.Template
	declined          *template.Template
	pleaseWait        *template.Template
	adminNotification *template.Template
	replyPrompt       *template.Template
	adminReply        *template.Template
	replySent         *template.Template
	startMarker       *template.Template

	acceptLabel  string
	declineLabel string
	replyLabel   string
}

// NewTemplates parses texts, filling empty fields from DefaultTexts.
func NewTemplates(texts Texts) (*Templates, error) {
	def := DefaultTexts()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}

	t := &Templates{
		acceptLabel:  pick(texts.AcceptLabel, def.AcceptLabel),
		declineLabel: pick(texts.DeclineLabel, def.DeclineLabel),
		replyLabel:   pick(texts.ReplyLabel, def.ReplyLabel),
	}

	fields := []struct {
		name string
		raw  string
		def  string
		dst  **template.Template
	}{
		{"greeting", texts.Greeting, def.Greeting, &t.greeting},
		{"declined", texts.Declined, def.Declined, &t.declined},
		{"please_wait", texts.PleaseWait, def.PleaseWait, &t.pleaseWait},
		{"admin_notification", texts.AdminNotification, def.AdminNotification, &t.adminNotification},
		{"reply_prompt", texts.ReplyPrompt, def.ReplyPrompt, &t.replyPrompt},
		{"admin_reply", texts.AdminReply, def.AdminReply, &t.adminReply},
		{"reply_sent", texts.ReplySent, def.ReplySent, &t.replySent},
		{"start_marker", texts.StartMarker, def.StartMarker, &t.startMarker},
	}

	sample := templateData{Name: "sample", UserID: 1, Text: "sample"}
	for _, f := range fields {
		tmpl, err := template.New(f.name).Option("missingkey=error").Parse(pick(f.raw, f.def))
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", f.name, err)
		}
		if err := tmpl.Execute(&strings.Builder{}, sample); err != nil {
			return nil, fmt.Errorf("rendering %s template: %w", f.name, err)
		}
		*f.dst = tmpl
	}
	return t, nil
}

// render executes a template already validated in NewTemplates.
func render(tmpl *template.Template, data templateData) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return tmpl.Root.String()
	}
	return b.String()
}

// ConsentKeyboard is the YES/NO prompt shown after /start.
func (t *Templates) ConsentKeyboard() Keyboard {
	return Keyboard{{
		{Label: t.acceptLabel, Data: PayloadAccept},
		{Label: t.declineLabel, Data: PayloadDecline},
	}}
}

// ReplyKeyboard is the admin's "reply to this user" button.
func (t *Templates) ReplyKeyboard(userID int64) Keyboard {
	return Keyboard{{{Label: t.replyLabel, Data: ReplyPayload(userID)}}}
}

func (t *Templates) Greeting(u User) string {
	return render(t.greeting, templateData{Name: u.DisplayName, UserID: u.ID})
}

func (t *Templates) Declined(u User) string {
	return render(t.declined, templateData{Name: u.DisplayName, UserID: u.ID})
}

func (t *Templates) PleaseWait(u User) string {
	return render(t.pleaseWait, templateData{Name: u.DisplayName, UserID: u.ID})
}

func (t *Templates) AdminNotification(u User) string {
	return render(t.adminNotification, templateData{Name: u.DisplayName, UserID: u.ID})
}

func (t *Templates) ReplyPrompt(userID int64) string {
	return render(t.replyPrompt, templateData{UserID: userID})
}

func (t *Templates) AdminReply(userID int64, text string) string {
	return render(t.adminReply, templateData{UserID: userID, Text: text})
}

func (t *Templates) ReplySent(userID int64) string {
	return render(t.replySent, templateData{UserID: userID})
}

// StartMarker is the log text recorded when a user accepts.
func (t *Templates) StartMarker(u User) string {
	return render(t.startMarker, templateData{Name: u.DisplayName, UserID: u.ID})
}
