package ingestion

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxResumeFileSize bounds resume files read from disk.
const MaxResumeFileSize = 10 << 20

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// ReadResumeFile extracts plain text from a .txt, .md, .pdf or .docx resume.
func ReadResumeFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) > MaxResumeFileSize {
		return "", fmt.Errorf("resume file %s exceeds %d bytes", filepath.Base(path), MaxResumeFileSize)
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", "":
		text = string(content)
	case ".pdf":
		text, err = pdfText(content)
	case ".docx":
		text, err = docxText(content)
	default:
		return "", fmt.Errorf("unsupported resume format %q", ext)
	}
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func docxText(content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns the document XML; paragraphs become lines.
	raw := doc.Editable().GetContent()
	raw = strings.ReplaceAll(raw, "</w:p>", "\n")
	return xmlTag.ReplaceAllString(raw, " "), nil
}
