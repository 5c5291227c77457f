package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

// Template names carried in EmailJob.Template.
const (
	ConfirmEmail   = "confirm_email"
	ChangePassword = "change_password"
)

var confirmEmailTmpl = htmpl.Must(htmpl.New(ConfirmEmail).Parse(
	`Please click this link to confirm your email: <a href="{{.Link}}">{{.Link}}</a>`))

var changePasswordTmpl = htmpl.Must(htmpl.New(ChangePassword).Parse(
	`Somebody asked to change password on your account, if it was not you feel free to ignore this message<p>Change Password: <a href="{{.Link}}">{{.Link}}</a></p>`))

// Render produces the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	var t *htmpl.Template
	switch name {
	case ConfirmEmail:
		t, subject = confirmEmailTmpl, "Confirm Email"
	case ChangePassword:
		t, subject = changePasswordTmpl, "Change Password"
	default:
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
