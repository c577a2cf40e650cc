// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// RequestEmailData holds data for the email sent to a project owner when
// someone applies to collaborate.
type RequestEmailData struct {
	SiteName      string
	ProjectTitle  string
	ApplicantName string
	Message       string
	RequestsURL   string
}

// BuildRequestEmail creates the new-collaboration-request notification.
func BuildRequestEmail(data RequestEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Nueva solicitud de colaboración en %s", data.ProjectTitle),
		TextBody: buildRequestText(data),
		HTMLBody: renderHTML("request", requestHTMLTemplate, data),
	}
}

func buildRequestText(data RequestEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s quiere colaborar en tu proyecto %q.\n\n", data.ApplicantName, data.ProjectTitle)
	if data.Message != "" {
		fmt.Fprintf(&buf, "Mensaje: %s\n\n", data.Message)
	}
	fmt.Fprintf(&buf, "Revisa la solicitud aquí:\n%s\n", data.RequestsURL)
	return buf.String()
}

// DecisionEmailData holds data for the email sent to an applicant when the
// project owner accepts or rejects their request.
type DecisionEmailData struct {
	SiteName     string
	ProjectTitle string
	Accepted     bool
	Response     string
	ProjectURL   string
}

// BuildDecisionEmail creates the request-resolved notification.
func BuildDecisionEmail(data DecisionEmailData) Email {
	subject := fmt.Sprintf("Tu solicitud para %s fue rechazada", data.ProjectTitle)
	if data.Accepted {
		subject = fmt.Sprintf("Tu solicitud para %s fue aceptada", data.ProjectTitle)
	}
	return Email{
		Subject:  subject,
		TextBody: buildDecisionText(data),
		HTMLBody: renderHTML("decision", decisionHTMLTemplate, data),
	}
}

func buildDecisionText(data DecisionEmailData) string {
	var buf bytes.Buffer
	if data.Accepted {
		fmt.Fprintf(&buf, "Tu solicitud de colaboración en %q fue aceptada.\n\n", data.ProjectTitle)
	} else {
		fmt.Fprintf(&buf, "Tu solicitud de colaboración en %q fue rechazada.\n\n", data.ProjectTitle)
	}
	if data.Response != "" {
		fmt.Fprintf(&buf, "Respuesta: %s\n\n", data.Response)
	}
	fmt.Fprintf(&buf, "Ver el proyecto:\n%s\n", data.ProjectURL)
	return buf.String()
}

func renderHTML(name, tmpl string, data any) string {
	t := template.Must(template.New(name).Parse(tmpl))
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

const requestHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Nueva solicitud</title></head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                <strong>{{.ApplicantName}}</strong> quiere colaborar en tu proyecto <strong>{{.ProjectTitle}}</strong>.
              </p>
              {{if .Message}}
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280; background-color: #f3f4f6; border-radius: 8px; padding: 16px;">{{.Message}}</p>
              {{end}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.RequestsURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; border-radius: 6px;">
                      Revisar solicitud
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const decisionHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Solicitud resuelta</title></head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                Tu solicitud de colaboración en <strong>{{.ProjectTitle}}</strong>
                {{if .Accepted}}fue <strong style="color: #059669;">aceptada</strong>.{{else}}fue <strong style="color: #dc2626;">rechazada</strong>.{{end}}
              </p>
              {{if .Response}}
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280; background-color: #f3f4f6; border-radius: 8px; padding: 16px;">{{.Response}}</p>
              {{end}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.ProjectURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; border-radius: 6px;">
                      Ver proyecto
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
