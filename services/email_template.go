package services

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

type emailLine struct {
	Title  string
	Detail string
	Alert  bool
}

type emailSection struct {
	Heading string
	Lines   []emailLine
}

type emailView struct {
	Subject    string
	Paragraphs []string
	Sections   []emailSection
	ButtonText string
	ButtonURL  string
	Footer     string
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;line-height:1.35;">{{.Subject}}</h1>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;">
{{- range .Paragraphs}}
<p style="margin:0 0 18px 0;">{{.}}</p>
{{- end}}
</div>
{{- range .Sections}}
<h2 style="margin:20px 0 8px 0;font-size:16px;color:#374151;">{{.Heading}}</h2>
<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>
{{- range .Lines}}
<tr>
<td style="padding:10px 16px;font-size:15px;color:{{if .Alert}}#b91c1c{{else}}#111827{{end}};font-weight:600;">{{.Title}}</td>
<td style="padding:10px 16px;font-size:13px;color:#6b7280;text-align:right;">{{.Detail}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- if and .ButtonText .ButtonURL}}
<div style="text-align:center;margin:24px 0 12px 0;">
<a href="{{.ButtonURL}}" style="display:inline-block;padding:12px 28px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">{{.ButtonText}}</a>
</div>
{{- end}}
{{- if .Footer}}
<div style="color:#6b7280;font-size:13px;line-height:1.7;margin-top:16px;">{{.Footer}}</div>
{{- end}}
</div>
</div>
</body>
</html>`))

func renderEmail(view emailView) (string, error) {
	paragraphs := view.Paragraphs[:0:0]
	for _, p := range view.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	view.Paragraphs = paragraphs

	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDay(t time.Time) string {
	return t.Format("Mon, Jan 2")
}
