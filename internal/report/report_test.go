package report

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aura-app/internal/store"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func history() []store.Record {
	return []store.Record{
		{
			ID:               "b",
			Start:            now.Add(-2 * time.Hour),
			FocusedSeconds:   1200,
			UnfocusedSeconds: 600,
			Apps: map[string]store.AppUsage{
				"code":    {FocusedSeconds: 1200},
				"browser": {UnfocusedSeconds: 600},
			},
		},
		{
			ID:               "a",
			Start:            now.Add(-26 * time.Hour),
			FocusedSeconds:   300,
			UnfocusedSeconds: 300,
			Apps: map[string]store.AppUsage{
				"browser": {FocusedSeconds: 300, UnfocusedSeconds: 300},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	live := &store.Record{Start: now.Add(-10 * time.Minute), FocusedSeconds: 600}

	p := Build(history(), live, now)

	require.Len(t, p.Rows, 3)
	assert.Equal(t, "Current session", p.Rows[0].Label)
	assert.True(t, p.Rows[0].IsCurrent)
	assert.Equal(t, 100, p.Rows[0].Percent)
	assert.Equal(t, 66, p.Rows[1].Percent)
	assert.Equal(t, "30m 0s", p.Rows[1].Duration)
	assert.Equal(t, "code", p.Rows[1].TopApp)

	assert.Equal(t, "3 sessions", p.Totals.Label)
	assert.Equal(t, "35m 0s", p.Totals.Focused)
	assert.Equal(t, "50m 0s", p.Totals.Duration)
	assert.Equal(t, 70, p.Totals.Percent)

	require.Len(t, p.Apps, 2)
	assert.Equal(t, "browser", p.Apps[0].App, "ties broken by name")
	assert.Equal(t, 25, p.Apps[0].Percent)
	assert.Equal(t, "code", p.Apps[1].App)
	assert.Equal(t, 100, p.Apps[1].Percent)
}

func TestRenderEscapesAndMarksCurrent(t *testing.T) {
	recs := history()
	recs[0].Apps = map[string]store.AppUsage{"<script>": {FocusedSeconds: 10}}
	p := Build(recs, &store.Record{Start: now}, now)

	var sb strings.Builder
	require.NoError(t, Render(&sb, p))
	out := sb.String()

	assert.Contains(t, out, "AURA focus report")
	assert.Contains(t, out, `class="current"`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestRenderEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Render(&sb, Build(nil, nil, now)))
	assert.Contains(t, sb.String(), "No sessions recorded yet.")
	assert.Contains(t, sb.String(), "0 sessions")
}

func TestRenderRefresh(t *testing.T) {
	p := Build(nil, nil, now)

	var static strings.Builder
	require.NoError(t, Render(&static, p))
	assert.NotContains(t, static.String(), "http-equiv")

	p.Refresh = 5
	var live strings.Builder
	require.NoError(t, Render(&live, p))
	assert.Contains(t, live.String(), `<meta http-equiv="refresh" content="5">`)
}

func TestOpenWritesAndLaunches(t *testing.T) {
	var opened string
	openFile = func(path string) error { opened = path; return nil }
	t.Cleanup(func() { openFile = browserOpen })

	dir := t.TempDir()
	path, err := Open(dir, Build(history(), nil, now))
	require.NoError(t, err)
	assert.Equal(t, path, opened)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2 sessions")

	openFile = func(string) error { return errors.New("no browser") }
	path, err = Open(dir, Build(nil, nil, now))
	assert.Error(t, err)
	assert.FileExists(t, path)
}
