package upload

import (
	"path/filepath"
	"strings"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/models"
)

// MaxSizeBytes caps uploads at 25 MiB.
const MaxSizeBytes = 25 * 1024 * 1024

var allowedContentTypes = map[string]models.DocumentFormat{
	"application/pdf": models.FormatPDF,
	"text/markdown":   models.FormatMarkdown,
	"text/x-markdown": models.FormatMarkdown,
}

var allowedExtensions = map[string]models.DocumentFormat{
	".pdf":      models.FormatPDF,
	".md":       models.FormatMarkdown,
	".markdown": models.FormatMarkdown,
}

// ValidateUpload decides format and eligibility from filename,
// declared content type and byte size. Pure; the returned format is
// meaningful only when the error is nil.
func ValidateUpload(filename, contentType string, size int64) (models.DocumentFormat, error) {
	if strings.TrimSpace(filename) == "" {
		return "", core.NewValidationError("Missing or invalid filename")
	}
	if size <= 0 {
		return "", core.NewValidationError("Empty file")
	}
	if size > MaxSizeBytes {
		return "", core.NewValidationError("File exceeds 25 MB limit (%d bytes)", size)
	}
	fmt := inferFormat(filename, contentType)
	if fmt == "" {
		return "", core.NewValidationError("Invalid format: only PDF and Markdown are allowed")
	}
	return fmt, nil
}

// inferFormat prefers the declared content type, falling back to the
// filename extension when the content type is absent or unknown.
func inferFormat(filename, contentType string) models.DocumentFormat {
	if contentType != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		if fmt, ok := allowedContentTypes[mediaType]; ok {
			return fmt
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions[ext]
}
