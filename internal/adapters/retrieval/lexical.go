package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

var stopwords = map[string]bool{
	"a": true, "o": true, "as": true, "os": true, "e": true, "de": true, "da": true, "do": true,
	"das": true, "dos": true, "em": true, "no": true, "na": true, "nos": true, "nas": true,
	"um": true, "uma": true, "para": true, "por": true, "com": true, "que": true, "se": true,
	"the": true, "of": true, "and": true, "to": true, "in": true, "is": true,
}

// LexicalRetriever ranks chunks with BM25 over accent-folded terms.
// It needs no external service.
type LexicalRetriever struct {
	splitter *Splitter
}

func NewLexicalRetriever(splitter *Splitter) *LexicalRetriever {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &LexicalRetriever{splitter: splitter}
}

type lexicalIndex struct {
	*indexInfo

	termFreqs []map[string]int
	lengths   []int
	docFreq   map[string]int
	avgLen    float64
}

func (r *LexicalRetriever) Index(ctx context.Context, docs []domain.Document) (domain.IndexHandle, error) {
	info, err := buildChunks(ctx, docs, r.splitter)
	if err != nil {
		return nil, err
	}

	idx := &lexicalIndex{
		indexInfo: info,
		termFreqs: make([]map[string]int, len(info.chunks)),
		lengths:   make([]int, len(info.chunks)),
		docFreq:   make(map[string]int),
	}

	total := 0
	for i, c := range info.chunks {
		tf := make(map[string]int)
		terms := tokenize(c.Text)
		for _, term := range terms {
			tf[term]++
		}
		for term := range tf {
			idx.docFreq[term]++
		}
		idx.termFreqs[i] = tf
		idx.lengths[i] = len(terms)
		total += len(terms)
	}
	if len(info.chunks) > 0 {
		idx.avgLen = float64(total) / float64(len(info.chunks))
	}

	return idx, nil
}

func (r *LexicalRetriever) Search(_ context.Context, handle domain.IndexHandle, query string, k int) ([]string, error) {
	if handle == nil {
		return nil, domain.ErrEmptyIndex
	}
	idx, ok := handle.(*lexicalIndex)
	if !ok {
		return nil, errForeignHandle
	}
	if idx == nil || len(idx.chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	terms := uniqueTerms(tokenize(query))
	n := float64(len(idx.chunks))

	type scored struct {
		pos   int
		score float64
	}
	var hits []scored
	for i, tf := range idx.termFreqs {
		var score float64
		for _, term := range terms {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			df := float64(idx.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			denom := f + bm25K1*(1-bm25B+bm25B*float64(idx.lengths[i])/idx.avgLen)
			score += idf * f * (bm25K1 + 1) / denom
		}
		if score > 0 {
			hits = append(hits, scored{pos: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, idx.chunks[h.pos].Text)
	}
	return out, nil
}

// tokenize lowercases, strips accents and drops stopwords so "Inscrição"
// matches "inscricao".
func tokenize(s string) []string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(s),
	)
	if err != nil {
		folded = strings.ToLower(s)
	}

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
