package documents

import (
	"bytes"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

type entityRow struct {
	Field string
	Value string
}

// FieldLabel turns an entity key such as rent_amount into "Rent Amount".
func FieldLabel(key string) string {
	return titleCase.String(strings.ReplaceAll(key, "_", " "))
}

func entityRows(entities map[string]string) []entityRow {
	rows := make([]entityRow, 0, len(entities))
	for k, v := range entities {
		rows = append(rows, entityRow{Field: FieldLabel(k), Value: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Field < rows[j].Field })
	return rows
}

var fragmentTmpl = template.Must(template.New("documents").Funcs(template.FuncMap{
	"entities": entityRows,
	"ago":      func(t time.Time) string { return humanize.Time(t) },
	"bytes":    func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"comma":    func(n int) string { return humanize.Comma(int64(n)) },
}).Parse(`<h2>Documents</h2>
<form class="doc-actions" data-doc-upload>
<input type="file" name="file" accept=".txt,text/plain" required>
<button type="submit">Upload and process</button>
<button type="button" data-doc-action="samples">Process samples</button>
<button type="button" data-doc-action="scan">Scan documents folder</button>
<button type="button" data-doc-action="export">Export all results</button>
<span class="doc-status" data-doc-status></span>
</form>
<div class="metrics">
<div class="card"><span class="label">Documents Processed</span><span class="value">{{.Summary.Processed}}</span></div>
<div class="card"><span class="label">Successful</span><span class="value">{{.Summary.Successful}}</span></div>
<div class="card"><span class="label">Total Entities</span><span class="value">{{.Summary.TotalEntities}}</span></div>
</div>
{{- if not .Results}}
<p class="empty">No documents processed yet. Upload a text document or process the samples to get started.</p>
{{- else}}
<table class="table documents">
<thead><tr><th>Document</th><th>Type</th><th>Entities</th><th>Size</th><th>Processed</th></tr></thead>
<tbody>
{{- range .Results}}
<tr data-result="{{.ID}}">
<td>{{.FileName}}</td>
{{- if .Error}}
<td colspan="2"><span class="error-message">Error: {{.Error}}</span></td>
{{- else}}
<td>{{.DocumentType}}</td>
<td>{{range entities .Entities}}<span class="entity" title="{{.Field}}">{{.Field}}: {{.Value}}</span>{{else}}No entities extracted{{end}}</td>
{{- end}}
<td>{{bytes .SizeBytes}}{{if .TextLength}} ({{comma .TextLength}} chars){{end}}</td>
<td title="{{.ProcessedAt.Format "2006-01-02 15:04:05 MST"}}">{{ago .ProcessedAt}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
`))

// RenderFragment renders the documents tab from stored results.
func RenderFragment(results []Result) (string, error) {
	var buf bytes.Buffer
	err := fragmentTmpl.Execute(&buf, struct {
		Summary Summary
		Results []Result
	}{Summarize(results), results})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fragment renders the documents tab from the service's store.
func (s *Service) Fragment() (string, error) {
	results, err := s.store.List()
	if err != nil {
		return "", err
	}
	return RenderFragment(results)
}
