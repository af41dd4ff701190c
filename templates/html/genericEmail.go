package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderGenericEmail wraps a plain text body in the relief coordination email
// layout. Blank lines separate paragraphs and single newlines become breaks.
func RenderGenericEmail(subject, bodyContent string) string {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(bodyContent, "\r\n", "\n"), "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		escaped := strings.ReplaceAll(html.EscapeString(p), "\n", "<br>")
		paragraphs = append(paragraphs, "<p>"+escaped+"</p>")
	}
	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Helvetica, Arial, sans-serif; margin: 0; padding: 0; background-color: #f4f6f8; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; }
    .header { background-color: #c0392b; padding: 28px 30px; }
    .header h1 { color: #ffffff; margin: 0; font-size: 22px; }
    .content { padding: 30px; color: #2d3436; line-height: 1.6; font-size: 15px; }
    .footer { padding: 20px 30px; color: #95a5a6; font-size: 12px; background-color: #fafafa; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>%s</h1></div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>You are receiving this because you reported or volunteered for an emergency on Relief Coordination.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, strings.Join(paragraphs, "\n      "))
}
