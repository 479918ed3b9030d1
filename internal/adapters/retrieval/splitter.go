package retrieval

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text recursively: paragraphs first, then lines, words and
// finally characters, merging pieces back up to ChunkSize runes with
// ChunkOverlap runes shared between neighbours.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = min(DefaultChunkOverlap, size/5)
	}
	return &Splitter{
		ChunkSize:    size,
		ChunkOverlap: overlap,
		Separators:   defaultSeparators,
	}
}

func (s *Splitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = runesOf(text)
	} else {
		for _, p := range strings.Split(text, sep) {
			if p != "" {
				pieces = append(pieces, p)
			}
		}
	}

	var (
		out  []string
		good []string
	)
	for _, p := range pieces {
		if utf8.RuneCountInString(p) < s.ChunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, sep)...)
	}
	return out
}

// merge joins small pieces into chunks, carrying the tail of each chunk
// into the next one as overlap.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var (
		chunks []string
		cur    []string
		total  int
	)
	joinedLen := func(extra int) int {
		if len(cur) > 0 {
			return total + extra + sepLen
		}
		return total + extra
	}

	for _, p := range pieces {
		l := utf8.RuneCountInString(p)

		if joinedLen(l) > s.ChunkSize && len(cur) > 0 {
			if c := strings.TrimSpace(strings.Join(cur, sep)); c != "" {
				chunks = append(chunks, c)
			}
			for total > s.ChunkOverlap || (joinedLen(l) > s.ChunkSize && total > 0) {
				drop := utf8.RuneCountInString(cur[0])
				if len(cur) > 1 {
					drop += sepLen
				}
				total -= drop
				cur = cur[1:]
			}
		}

		if len(cur) > 0 {
			total += sepLen
		}
		cur = append(cur, p)
		total += l
	}

	if c := strings.TrimSpace(strings.Join(cur, sep)); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func runesOf(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
