// Package site builds the static archive page listing saved digests.
package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const IndexFile = "index.html"

var digestName = regexp.MustCompile(`^digest-(\d{4}-\d{2}-\d{2})\.(md|html|txt|xml)$`)

var extOrder = map[string]int{"html": 0, "md": 1, "txt": 2, "xml": 3}

var extLabel = map[string]string{"html": "HTML", "md": "Markdown", "txt": "Text", "xml": "RSS"}

type File struct {
	Name  string
	Label string
}

// Entry groups the saved formats of one day's digest.
type Entry struct {
	Date  string
	Files []File
}

// Scan lists digests in dir, newest first.
func Scan(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	byDate := map[string]*Entry{}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := digestName.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		e, ok := byDate[m[1]]
		if !ok {
			e = &Entry{Date: m[1]}
			byDate[m[1]] = e
		}
		e.Files = append(e.Files, File{Name: de.Name(), Label: extLabel[m[2]]})
	}

	entries := make([]Entry, 0, len(byDate))
	for _, e := range byDate {
		sort.Slice(e.Files, func(i, j int) bool {
			return extOrder[ext(e.Files[i].Name)] < extOrder[ext(e.Files[j].Name)]
		})
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

func ext(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} Archive</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; color: #333; background: #f4f5f7; padding: 40px 20px; }
.container { max-width: 800px; margin: 0 auto; background: #fff; border-radius: 8px; padding: 32px; }
h1 { color: #4f5bd5; }
li { margin: 8px 0; }
a { color: #4f5bd5; margin-right: 12px; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}} Archive</h1>
<p>{{len .Entries}} digests</p>
<ul>
{{- range .Entries}}
<li><strong>{{.Date}}</strong>{{range .Files}} <a href="{{.Name}}">{{.Label}}</a>{{end}}</li>
{{- else}}
<li>No digests yet.</li>
{{- end}}
</ul>
</div>
</body>
</html>
`))

// BuildIndex writes index.html into dir and returns its path.
func BuildIndex(dir, title string) (string, error) {
	entries, err := Scan(dir)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = "Engineering Daily Digest"
	}

	var b strings.Builder
	data := struct {
		Title   string
		Entries []Entry
	}{title, entries}
	if err := indexTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering index: %w", err)
	}

	path := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing index: %w", err)
	}
	return path, nil
}
