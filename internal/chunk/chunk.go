// Package chunk splits extracted document text into overlapping passages.
package chunk

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

// Defaults for the splitter parameters.
const (
	DefaultSize    = 1200
	DefaultOverlap = 200
)

// Splitter cuts document text into fixed-size windows where consecutive
// windows of one document share exactly Overlap characters. Passages never
// straddle a document boundary.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Overlap must be smaller than size.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split produces the library's ordered passage sequence. Pages of a document
// are joined with a newline before windowing, so offsets address the whole
// joined document text. A document with zero extractable text contributes
// zero passages.
func (s *Splitter) Split(docs []domain.ExtractedDocument) []domain.Passage {
	var passages []domain.Passage
	seq := 0

	for _, doc := range docs {
		text := strings.Join(doc.Pages, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		// Window over runes, not bytes: size/overlap are character counts
		// and a byte cut would land mid-rune on multibyte text.
		runes := []rune(text)
		step := s.size - s.overlap
		for start := 0; start < len(runes); start += step {
			end := start + s.size
			if end > len(runes) {
				end = len(runes)
			}
			passages = append(passages, domain.Passage{
				Seq:    seq,
				Source: doc.Filename,
				Start:  start,
				End:    end,
				Text:   string(runes[start:end]),
			})
			seq++
			if end == len(runes) {
				break
			}
		}
	}

	return passages
}

// Size reports the configured window size.
func (s *Splitter) Size() int { return s.size }

// Overlap reports the configured window overlap.
func (s *Splitter) Overlap() int { return s.overlap }
