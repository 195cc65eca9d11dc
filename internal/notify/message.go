package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

//go:embed templates/invitation.html.tmpl
var htmlInvitation string

//go:embed templates/invitation.txt.tmpl
var textInvitation string

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("invitation.html").Parse(htmlInvitation))
	textTemplate = template.Must(template.New("invitation.txt").Parse(textInvitation))

	now = time.Now
)

type messageData struct {
	Name            string
	JobTitle        string
	Department      string
	TestLink        string
	WeightedScore   string
	MatchPercentage string
	MatchedSkills   string
	Matched         int
	TotalRequired   int
	Experience      string
	GeneratedAt     string
}

func Subject(inv Invitation) string {
	return "Technical Assessment Invitation - " + inv.Evaluation.Job.Title
}

func newMessageData(inv Invitation) messageData {
	name := strings.TrimSpace(inv.Candidate.Name)
	if name == "" {
		name = "Candidate"
	}

	eval := inv.Evaluation
	return messageData{
		Name:            name,
		JobTitle:        eval.Job.Title,
		Department:      eval.Job.Department,
		TestLink:        eval.Job.TestLink,
		WeightedScore:   fmt.Sprintf("%.2f", eval.Report.WeightedScore),
		MatchPercentage: fmt.Sprintf("%.2f", eval.Report.MatchPercentage),
		MatchedSkills:   strings.Join(eval.MatchedSkills(), ", "),
		Matched:         eval.Report.MatchedCount,
		TotalRequired:   eval.Report.TotalRequired,
		Experience:      fmt.Sprintf("%g", eval.Experience),
		GeneratedAt:     now().UTC().Format("2006-01-02 15:04:05"),
	}
}

// Compose renders the invitation as a multipart/alternative MIME message
// with a plain text and an HTML part.
func Compose(from string, inv Invitation) ([]byte, error) {
	if err := inv.validate(); err != nil {
		return nil, err
	}

	data := newMessageData(inv)

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, part := range []struct {
		contentType string
		content     []byte
	}{
		{"text/plain; charset=UTF-8", text.Bytes()},
		{"text/html; charset=UTF-8", html.Bytes()},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(part.content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", inv.Candidate.Email},
		{"Subject", mime.QEncoding.Encode("utf-8", Subject(inv))},
		{"Date", now().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@skill-screener>", uuid.NewString())},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
