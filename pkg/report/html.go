package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

const htmlFile = "report.html"

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title       string
	GeneratedAt string
	Index       *Index
	Rows        []RowHTMLData
	PassRate    float64
}

// RowHTMLData is one entry formatted for HTML.
type RowHTMLData struct {
	Entry
	StatusClass string
	DurationStr string
}

// GenerateHTML renders index to report.html in dir.
func GenerateHTML(dir string, index *Index) error {
	html, err := renderHTML(buildHTMLData(index))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, htmlFile), []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func buildHTMLData(index *Index) HTMLData {
	data := HTMLData{
		Title:       fmt.Sprintf("%s report", index.Kind),
		GeneratedAt: index.LastUpdated.Format(time.RFC3339),
		Index:       index,
	}
	for _, e := range index.Entries {
		data.Rows = append(data.Rows, RowHTMLData{
			Entry:       e,
			StatusClass: string(e.State),
			DurationStr: formatDuration(e.StartedAt, e.FinishedAt),
		})
	}
	if index.Summary.Total > 0 {
		data.PassRate = float64(index.Summary.Completed) / float64(index.Summary.Total) * 100
	}
	return data
}

func formatDuration(start time.Time, end *time.Time) string {
	if end == nil || start.IsZero() {
		return "-"
	}
	d := end.Sub(start)
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, sans-serif; margin: 2rem; color: #111827; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #e5e7eb; }
        .completed { color: #16a34a; }
        .failed { color: #dc2626; }
        .running { color: #2563eb; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p class="{{.Index.Status}}">{{.Index.Status}}: {{.Index.Summary.Completed}} of {{.Index.Summary.Total}} completed ({{printf "%.0f" .PassRate}}%), {{.Index.Summary.Failed}} failed</p>
    <p>Updated {{.GeneratedAt}}</p>
    <table>
        <tr><th>Source</th><th>Job</th><th>State</th><th>Duration</th><th>Detail</th></tr>
        {{range .Rows}}
        <tr>
            <td>{{.Source}}</td>
            <td><code>{{.JobID}}</code></td>
            <td class="{{.StatusClass}}">{{.State}}</td>
            <td>{{.DurationStr}}</td>
            <td>{{if .Error}}{{.Error}}{{else if .DataFile}}<a href="{{.DataFile}}">{{.DataFile}}</a>{{end}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>
`
