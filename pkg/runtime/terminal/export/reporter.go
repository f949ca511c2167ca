package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

type TableConfig struct {
	BucketWidth  int
	PrefixWidth  int
	WindowWidth  int
	CutoffWidth  int
	OutcomeWidth int
	DetailWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		BucketWidth:  28,
		PrefixWidth:  32,
		WindowWidth:  6,
		CutoffWidth:  25,
		OutcomeWidth: 7,
		DetailWidth:  48,
	}
}

// Reporter renders a run report as a table, one row per check.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const reportTemplate = `
Backup freshness check
Started: {{.StartedAt.Format "2006-01-02 15:04:05 MST"}} ({{duration .}})
Fresh: {{count . "fresh"}}  Stale: {{count . "stale"}}  Errors: {{count . "error"}}

{{separator}}
{{formatRow "Bucket" "Prefix" "Days" "Cutoff" "Outcome" "Detail"}}
{{separator}}
{{range .Results}}{{formatRow .Bucket .Prefix .RecencyWindowDays (.Cutoff.Format "2006-01-02T15:04:05Z07:00") (printf "%s" .Outcome) (detail .)}}
{{end}}{{separator}}
{{if .MessageID}}Alert published: {{.MessageID}}
{{else if .Alerts}}Alert NOT published
{{else}}No alert needed
{{end}}`

func (c *Reporter) Handle(report *domain.RunReport) error {
	funcMap := template.FuncMap{
		"formatRow": func(bucket, prefix string, window interface{}, cutoff, outcome, detail string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*v | %-*s | %-*s | %-*s |",
				c.config.BucketWidth, truncate(bucket, c.config.BucketWidth),
				c.config.PrefixWidth, truncate(prefix, c.config.PrefixWidth),
				c.config.WindowWidth, window,
				c.config.CutoffWidth, cutoff,
				c.config.OutcomeWidth, outcome,
				c.config.DetailWidth, truncate(detail, c.config.DetailWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.BucketWidth+2),
				strings.Repeat("-", c.config.PrefixWidth+2),
				strings.Repeat("-", c.config.WindowWidth+2),
				strings.Repeat("-", c.config.CutoffWidth+2),
				strings.Repeat("-", c.config.OutcomeWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
		"count": func(r *domain.RunReport, outcome string) int {
			return r.Count(domain.Outcome(outcome))
		},
		"duration": func(r *domain.RunReport) string {
			if r.FinishedAt.IsZero() {
				return "unfinished"
			}
			return r.Duration().String()
		},
		"detail": func(res domain.CheckResult) string {
			switch res.Outcome {
			case domain.OutcomeFresh:
				return res.MatchedKey
			case domain.OutcomeError:
				if res.Err != nil {
					return res.Err.Error()
				}
			case domain.OutcomeStale:
				if res.Scanned == 0 {
					return "empty directory"
				}
				return fmt.Sprintf("%d objects beyond cutoff", res.Scanned)
			}
			return ""
		},
	}

	t, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
