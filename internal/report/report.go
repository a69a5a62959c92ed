// Package report renders session history as a standalone HTML page and
// opens it in the user's browser.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/browser"

	"aura-app/internal/store"
	"aura-app/internal/tray"
)

const FileName = "aura-report.html"

var (
	browserOpen = browser.OpenFile
	// openFile is swapped in tests.
	openFile = browserOpen
)

type Row struct {
	Label     string
	Start     string
	Duration  string
	Focused   string
	Percent   int
	TopApp    string
	IsCurrent bool
}

type AppRow struct {
	App     string
	Focused string
	Total   string
	Percent int
}

type Page struct {
	// Refresh, when positive, makes the browser reload the page every that
	// many seconds.
	Refresh   int
	Generated string
	Rows      []Row
	Apps      []AppRow
	Totals    Row
}

// Build assembles a page from stored history and, when non-nil, the session
// currently in progress.
func Build(history []store.Record, live *store.Record, now time.Time) Page {
	p := Page{Generated: now.Format("2006-01-02 15:04")}

	all := history
	if live != nil {
		all = append([]store.Record{*live}, history...)
		p.Rows = append(p.Rows, row("Current session", *live, true))
	}
	for _, r := range history {
		p.Rows = append(p.Rows, row(r.Start.Local().Format("Mon Jan 2"), r, false))
	}

	var total, focused time.Duration
	apps := map[string]*tray.Stats{}
	for _, r := range all {
		total += r.Total()
		focused += r.Focused()
		for name, u := range r.Apps {
			a, ok := apps[name]
			if !ok {
				a = &tray.Stats{}
				apps[name] = a
			}
			a.Focused += seconds(u.FocusedSeconds)
			a.Total += seconds(u.FocusedSeconds + u.UnfocusedSeconds)
		}
	}
	sum := tray.Stats{Total: total, Focused: focused}.Normalize()
	p.Totals = Row{
		Label:    fmt.Sprintf("%d sessions", len(all)),
		Duration: tray.FormatDuration(sum.Total),
		Focused:  tray.FormatDuration(sum.Focused),
		Percent:  sum.FocusPercent(),
	}

	for name, a := range apps {
		st := a.Normalize()
		p.Apps = append(p.Apps, AppRow{
			App:     name,
			Focused: tray.FormatDuration(st.Focused),
			Total:   tray.FormatDuration(st.Total),
			Percent: st.FocusPercent(),
		})
	}
	sort.Slice(p.Apps, func(i, j int) bool {
		ai, aj := apps[p.Apps[i].App], apps[p.Apps[j].App]
		if ai.Total != aj.Total {
			return ai.Total > aj.Total
		}
		return p.Apps[i].App < p.Apps[j].App
	})
	return p
}

func row(label string, r store.Record, current bool) Row {
	st := tray.Stats{Total: r.Total(), Focused: r.Focused()}.Normalize()
	return Row{
		Label:     label,
		Start:     r.Start.Local().Format("15:04"),
		Duration:  tray.FormatDuration(st.Total),
		Focused:   tray.FormatDuration(st.Focused),
		Percent:   st.FocusPercent(),
		TopApp:    topApp(r),
		IsCurrent: current,
	}
}

func topApp(r store.Record) string {
	best, bestSecs := "", -1.0
	for name, u := range r.Apps {
		secs := u.FocusedSeconds + u.UnfocusedSeconds
		if secs > bestSecs || (secs == bestSecs && name < best) {
			best, bestSecs = name, secs
		}
	}
	return best
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func Render(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}

// Write renders p to dir and returns the file path.
func Write(dir string, p Page) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, p); err != nil {
		f.Close()
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Open writes the page and opens it in the default browser.
func Open(dir string, p Page) (string, error) {
	path, err := Write(dir, p)
	if err != nil {
		return "", err
	}
	if err := openFile(path); err != nil {
		return path, fmt.Errorf("open report: %w", err)
	}
	return path, nil
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if gt .Refresh 0}}<meta http-equiv="refresh" content="{{.Refresh}}">
{{end}}<title>AURA focus report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #2c3e50; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { padding: 4px 12px; text-align: left; border-bottom: 1px solid #ecf0f1; }
tr.current { background: #eafaf1; }
.bar { background: #ecf0f1; width: 120px; height: 10px; }
.bar span { display: block; height: 10px; background: #2ecc71; }
</style>
</head>
<body>
<h1>AURA focus report</h1>
<p>Generated {{.Generated}}. {{.Totals.Label}}, {{.Totals.Focused}} focused of {{.Totals.Duration}} ({{.Totals.Percent}}%).</p>
<h2>Sessions</h2>
{{if .Rows}}<table>
<tr><th>Session</th><th>Start</th><th>Length</th><th>Focused</th><th>Focus</th><th>Top app</th></tr>
{{range .Rows}}<tr{{if .IsCurrent}} class="current"{{end}}><td>{{.Label}}</td><td>{{.Start}}</td><td>{{.Duration}}</td><td>{{.Focused}}</td><td><div class="bar"><span style="width: {{.Percent}}%"></span></div>{{.Percent}}%</td><td>{{.TopApp}}</td></tr>
{{end}}</table>{{else}}<p>No sessions recorded yet.</p>{{end}}
{{if .Apps}}<h2>Applications</h2>
<table>
<tr><th>App</th><th>Time</th><th>Focused</th><th>Focus</th></tr>
{{range .Apps}}<tr><td>{{.App}}</td><td>{{.Total}}</td><td>{{.Focused}}</td><td>{{.Percent}}%</td></tr>
{{end}}</table>{{end}}
</body>
</html>
`))
