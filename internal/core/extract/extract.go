// Package extract pulls plain text out of uploaded documents for
// embedding.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"

	"github.com/emdili/docrag/internal/models"
)

// Text extracts plain text from document content per format.
// PDF pages are extracted individually and joined with blank lines;
// Markdown is decoded as UTF-8 with invalid sequences replaced by the
// replacement character. Any other format is a contract violation:
// the validator must have run first.
func Text(content []byte, format models.DocumentFormat) (string, error) {
	switch format {
	case models.FormatPDF:
		return pdfText(content)
	case models.FormatMarkdown:
		return markdownText(content), nil
	default:
		return "", fmt.Errorf("unsupported format for extraction: %q", format)
	}
}

// pdfText concatenates per-page extracted text with a blank-line
// separator, skipping pages that yield no text.
func pdfText(content []byte) (string, error) {
	reader, err := pdfmodel.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("pdf page count: %w", err)
	}

	var parts []string
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("pdf extractor page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("pdf text page %d: %w", i, err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// markdownText decodes raw bytes as UTF-8 text; no markdown-to-HTML
// conversion, the embedding model takes the raw text.
func markdownText(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}
