package capture

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Cleaner prepares clipboard text for the synthesizer.
type Cleaner struct {
	// StripMarkdown renders markdown to its plain text first.
	StripMarkdown bool
	// MaxChars truncates the text to this many characters; 0 means no limit.
	MaxChars int

	md goldmark.Markdown
}

// NewCleaner returns a cleaner.
func NewCleaner(stripMarkdown bool, maxChars int) *Cleaner {
	return &Cleaner{
		StripMarkdown: stripMarkdown,
		MaxChars:      maxChars,
		md:            goldmark.New(),
	}
}

// Clean replaces line breaks with spaces, trims, normalizes to NFC and
// applies the optional markdown and length rules. It returns ErrEmptyText if
// nothing is left.
func (c *Cleaner) Clean(s string) (string, error) {
	if c.StripMarkdown {
		s = c.plainText(s)
	}

	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
	s = strings.TrimSpace(norm.NFC.String(s))

	if c.MaxChars > 0 && utf8.RuneCountInString(s) > c.MaxChars {
		s = strings.TrimSpace(string([]rune(s)[:c.MaxChars]))
	}
	if s == "" {
		return "", ErrEmptyText
	}
	return s, nil
}

// plainText walks the markdown AST and keeps the text a listener would want
// to hear. Code blocks are dropped; link and image text is kept.
func (c *Cleaner) plainText(s string) string {
	if c.md == nil {
		c.md = goldmark.New()
	}
	source := []byte(s)
	doc := c.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(source))
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// Preview shortens text for log lines.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
