package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

// ConfigReporter prints a check configuration in a human-readable form
type ConfigReporter struct {
	writer io.Writer
}

// NewConfigReporter creates a new console reporter
func NewConfigReporter(writer io.Writer) *ConfigReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &ConfigReporter{writer: writer}
}

func (c *ConfigReporter) Handle(cfg *domain.Configuration) error {
	tmpl := `{{range .Buckets}}
=== {{.Bucket}} ===
{{range .Checks}}- prefix: {{printf "%q" .Prefix}}, timedelta_days: {{.RecencyWindowDays}}
{{else}}(no checks)
{{end}}{{end}}
{{.CheckCount}} checks across {{len .Buckets}} buckets
`
	t, err := template.New("config").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, cfg)
}
