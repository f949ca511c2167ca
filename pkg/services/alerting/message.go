package alerting

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

const Subject = "AWS S3 Backup Alert: Missing backup file"

const messageTemplate = `{{if .Stale}}
This alert was sent because there are missing backup files.

{{range .Stale}}bucket_name: {{.Bucket}}
Prefix: {{.Prefix}}
Timedelta Days: {{.RecencyWindowDays}}

{{end}}{{end}}{{if .Errors}}
The following locations could not be checked.

{{range .Errors}}bucket_name: {{.Bucket}}
Prefix: {{.Prefix}}
Timedelta Days: {{.RecencyWindowDays}}
Error: {{.Reason}}

{{end}}{{end}}`

var messageTmpl = template.Must(template.New("message").Parse(messageTemplate))

// BuildMessage renders every alert into one notification body. Stale alerts
// come first, then alerts for locations that could not be listed, each group
// in the order given.
func BuildMessage(alerts []domain.Alert) (string, error) {
	data := struct {
		Stale  []domain.Alert
		Errors []domain.Alert
	}{}
	for _, a := range alerts {
		switch a.Kind {
		case domain.AlertKindError:
			data.Errors = append(data.Errors, a)
		default:
			data.Stale = append(data.Stale, a)
		}
	}

	var buf bytes.Buffer
	if err := messageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render alert message: %w", err)
	}
	return buf.String(), nil
}
