// Package artifact writes the local output files of a run: the markdown
// mirror, the local publisher's JSON records and preserved pending records.
package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

const timestampLayout = "20060102_150405"

var _ domain.Mirror = (*MarkdownMirror)(nil)

// MirrorOptions configures a MarkdownMirror.
type MirrorOptions struct {
	Dir            string
	HTML           bool
	CorrectLabel   string
	IncorrectLabel string
	Clock          Clock
}

// MarkdownMirror writes answer_<UTC timestamp>.md and optionally an HTML
// rendering next to it.
type MarkdownMirror struct {
	opts   MirrorOptions
	md     goldmark.Markdown
	logger *observability.Logger
}

// NewMarkdownMirror creates a mirror writer.
func NewMarkdownMirror(opts MirrorOptions, logger *observability.Logger) *MarkdownMirror {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CorrectLabel == "" {
		opts.CorrectLabel = "Correcto"
	}
	if opts.IncorrectLabel == "" {
		opts.IncorrectLabel = "Incorrecto"
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &MarkdownMirror{
		opts:   opts,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger.WithComponent("mirror"),
	}
}

// WriteMirror implements domain.Mirror and returns the markdown path.
func (m *MarkdownMirror) WriteMirror(record *domain.PipelineRecord) (string, error) {
	if err := os.MkdirAll(m.opts.Dir, 0o755); err != nil {
		return "", domain.IOError("create output directory", err)
	}

	content := m.Render(record)
	stamp := m.opts.Clock().UTC().Format(timestampLayout)
	path := filepath.Join(m.opts.Dir, fmt.Sprintf("answer_%s.md", stamp))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", domain.IOError("write markdown mirror", err)
	}

	if m.opts.HTML {
		htmlPath := strings.TrimSuffix(path, ".md") + ".html"
		if err := m.writeHTML(htmlPath, content); err != nil {
			return path, err
		}
		m.logger.Debug().Str("path", htmlPath).Msg("html mirror written")
	}

	return path, nil
}

// Render returns the markdown for record.
func (m *MarkdownMirror) Render(record *domain.PipelineRecord) string {
	var b strings.Builder

	b.WriteString("# Question\n\n")
	b.WriteString(strings.TrimSpace(record.ExtractedText))
	b.WriteString("\n\n# Answer\n\n")

	q := record.StructuredQuestion
	if q == nil {
		b.WriteString("_No answer generated._\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**%s**\n\n", escapeInline(q.QuestionText))
	for _, opt := range q.Options {
		label := m.opts.IncorrectLabel
		if opt.IsCorrect {
			label = m.opts.CorrectLabel
		}
		fmt.Fprintf(&b, "- %s\n\n  `%s:` %s\n\n", escapeInline(opt.Label), label, escapeInline(opt.Explanation))
	}
	return b.String()
}

func (m *MarkdownMirror) writeHTML(path, markdown string) error {
	var body bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &body); err != nil {
		return domain.IOError("render html mirror", err)
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Answer</title></head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return domain.IOError("write html mirror", err)
	}
	return nil
}

// inlineEscaper backslash-escapes characters that start inline markup anywhere in a line.
var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `&`, `\&`, `|`, `\|`, `~`, `\~`,
)

// escapeInline folds model text onto one line and escapes markdown so it renders literally.
func escapeInline(s string) string {
	s = inlineEscaper.Replace(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return s
	}

	// block markers only count at the start of a line
	switch s[0] {
	case '#', '-', '+', '=':
		return `\` + s
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') {
		return s[:digits] + `\` + s[digits:]
	}
	return s
}
