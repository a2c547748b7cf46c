// Package chunk splits extracted text into overlapping windows sized
// for the embedding model.
package chunk

import "strings"

const (
	// DefaultSize keeps chunks well inside the embedding model's input
	// limit (~4000 chars per chunk is safe).
	DefaultSize = 4000
	// DefaultOverlap is carried from the end of each window into the
	// next so context bleeds across boundaries.
	DefaultOverlap = 200
)

// Splitter cuts text into fixed-size rune windows with a fixed
// overlap. Each window after the first starts Overlap runes before the
// previous window's end; the final window ends exactly at the text
// end. Order follows text order.
type Splitter struct {
	Size    int
	Overlap int
}

// NewSplitter returns a Splitter with the given bounds, falling back
// to the defaults for non-positive values.
func NewSplitter(size, overlap int) Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
	}
	return Splitter{Size: size, Overlap: overlap}
}

// Split chunks the trimmed text. Blank input yields no chunks, and
// windows that are blank after trimming are dropped.
func (s Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.Size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, window)
		}
		if end < len(runes) {
			start = end - s.Overlap
		} else {
			start = len(runes)
		}
	}
	return chunks
}
