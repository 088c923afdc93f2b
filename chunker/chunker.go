package chunker

import (
	"maps"
	"regexp"
	"strings"

	"github.com/poiesic/oraculum/core"
)

var whitespace = regexp.MustCompile(`\s+`)

// Chunker splits cleaned text into overlapping fixed-size segments.
// Splitting is deterministic: the same text and configuration always
// produce the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. The overlap must be strictly smaller than the
// chunk size; anything else is a configuration error and is rejected
// here rather than at chunk time.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrInvalidOverlap
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Clean normalizes text before chunking: runs of whitespace (including
// control characters) collapse to a single space and the ends are trimmed.
func Clean(text string) string {
	text = strings.Map(func(r rune) rune {
		if r < ' ' && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// CreateChunks splits text into chunks of at most the configured size,
// each overlapping the previous one by roughly the configured overlap.
// Cut points are snapped to whitespace so no word is split, unless a
// window contains no whitespace at all. The metadata map is attached to
// every chunk, along with the chunk's character range in the cleaned text.
//
// Empty text yields no chunks. Text shorter than the chunk size yields
// exactly one.
func (c *Chunker) CreateChunks(text string, documentID core.ID, metadata map[string]string) []core.Chunk {
	text = Clean(text)
	if text == "" {
		return nil
	}

	if len(text) <= c.size {
		return []core.Chunk{{
			Text:       text,
			Index:      0,
			DocumentId: documentID,
			CharStart:  0,
			CharEnd:    len(text),
			Metadata:   cloneMetadata(metadata),
		}}
	}

	var chunks []core.Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else if i := strings.LastIndexByte(text[start:end], ' '); i > 0 {
			// Retract the cut to the preceding whitespace so the
			// chunk ends on a word boundary.
			end = start + i
		}

		if chunkText := strings.TrimSpace(text[start:end]); chunkText != "" {
			chunks = append(chunks, core.Chunk{
				Text:       chunkText,
				Index:      index,
				DocumentId: documentID,
				CharStart:  start,
				CharEnd:    end,
				Metadata:   cloneMetadata(metadata),
			})
			index++
		}

		if end >= len(text) {
			break
		}

		start = c.nextStart(text, start, end)
	}

	return chunks
}

// nextStart advances the cursor past the emitted chunk, stepping back by
// the overlap and then forward to the nearest word start. It never skips
// past text that has not been emitted yet, and always makes progress.
func (c *Chunker) nextStart(text string, start, end int) int {
	next := end - c.overlap
	if next <= start {
		next = end
	}

	if next < len(text) && next > 0 && text[next-1] != ' ' && text[next] != ' ' {
		if j := strings.IndexByte(text[next:], ' '); j >= 0 && next+j <= end {
			next += j + 1
		}
		// No whitespace within the emitted window: the overlap begins
		// mid-word, matching the raw character cut.
	}

	for next < len(text) && text[next] == ' ' {
		next++
	}

	return next
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return map[string]string{}
	}
	return maps.Clone(metadata)
}
