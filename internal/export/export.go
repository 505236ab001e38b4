// Package export renders the manuscript to downloadable files. Both formats
// feed from the same per-chapter projection.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	FormatPDF      = "pdf"
	FormatMarkdown = "md"
)

// Chapter is the projection both renderers consume.
type Chapter struct {
	Position   int
	Title      string
	Outline    string
	Paragraphs []Paragraph
}

type Paragraph struct {
	Position int
	Content  string
}

// File is one rendered artifact.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer writes artifacts under a directory served as static downloads.
type Renderer struct {
	Dir string
}

// Render builds the artifact for the requested format. Unrecognized or empty
// formats fall back to PDF.
func (r *Renderer) Render(title string, chapters []Chapter, format string) (File, error) {
	switch format {
	case FormatMarkdown:
		data := []byte(BuildMarkdown(title, chapters))
		return File{
			Name:        fmt.Sprintf("%s-%s.md", slugify(title), timestamp()),
			ContentType: "text/markdown",
			Data:        data,
		}, nil
	default:
		data, err := BuildPDF(title, chapters)
		if err != nil {
			return File{}, err
		}
		return File{
			Name:        fmt.Sprintf("%s-%s.pdf", slugify(title), timestamp()),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
}

// Save writes the artifact into the export directory and returns the file
// name, which the router serves under /exports/.
func (r *Renderer) Save(f File) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(r.Dir, f.Name), f.Data, 0o644); err != nil {
		return "", err
	}
	return f.Name, nil
}

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
var spaceRe = regexp.MustCompile(`\s+`)

func slugify(s string) string {
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.ToLower(s)
}

func timestamp() string {
	return time.Now().Format("20060102-1504")
}
