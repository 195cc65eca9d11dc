package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Errors returned by ExtractText.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmpty             = errors.New("document contains no text")
)

const blockSelectors = "p, div, li, tr, section, article, h1, h2, h3, h4, h5, h6, pre, blockquote"

// ExtractText returns the plain text of a résumé file. Plain text and
// Markdown are read as-is; HTML is reduced to its visible text.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".markdown", ".html", ".htm":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var text string
	if ext == ".html" || ext == ".htm" {
		text, err = HTMLText(f)
	} else {
		text, err = plainText(f)
	}
	if err != nil {
		return "", err
	}

	if text == "" {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrEmpty)
	}
	return text, nil
}

func plainText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if !utf8.Valid(data) {
		return "", errors.New("document is not valid UTF-8")
	}
	return cleanLines(string(data)), nil
}

// HTMLText parses HTML and returns its visible text, one block per line.
func HTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("head, script, style, noscript, template, svg").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).AppendHtml("\n")

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	return cleanLines(body.Text()), nil
}

// cleanLines collapses runs of whitespace inside each line and drops empty lines.
func cleanLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
