package processor

import (
	"math"
	"sort"
)

// Match is one scored index hit.
type Match struct {
	ID    string
	Score float64
}

// Index is an immutable TF-IDF model over artifact documents. Vectors are L2
// normalized, so the dot product of two rows is their cosine similarity.
type Index struct {
	p       Processor
	ids     []string
	pos     map[string]int
	vocab   map[string]int
	idf     []float64
	vectors []map[int]float64
}

// BuildIndex fits TF-IDF weights over docs, keyed by id. Later duplicates of
// an id replace earlier ones.
func (p Processor) BuildIndex(ids []string, docs []string) *Index {
	ix := &Index{p: p, pos: make(map[string]int), vocab: make(map[string]int)}

	var tokenized [][]string
	for i, id := range ids {
		toks := p.Tokenize(docs[i])
		if at, ok := ix.pos[id]; ok {
			tokenized[at] = toks
			continue
		}
		ix.pos[id] = len(ix.ids)
		ix.ids = append(ix.ids, id)
		tokenized = append(tokenized, toks)
	}

	// Keep the MaxFeatures most frequent terms, ties broken alphabetically.
	freq := make(map[string]int)
	for _, toks := range tokenized {
		for _, t := range toks {
			freq[t]++
		}
	}
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > p.config.MaxFeatures {
		terms = terms[:p.config.MaxFeatures]
	}
	sort.Strings(terms)
	for i, t := range terms {
		ix.vocab[t] = i
	}

	// Smoothed idf: ln((1+n)/(1+df)) + 1.
	df := make([]int, len(terms))
	for _, toks := range tokenized {
		seen := make(map[int]bool)
		for _, t := range toks {
			if j, ok := ix.vocab[t]; ok && !seen[j] {
				seen[j] = true
				df[j]++
			}
		}
	}
	n := float64(len(tokenized))
	ix.idf = make([]float64, len(terms))
	for j := range terms {
		ix.idf[j] = math.Log((1+n)/(1+float64(df[j]))) + 1
	}

	ix.vectors = make([]map[int]float64, len(tokenized))
	for i, toks := range tokenized {
		ix.vectors[i] = ix.vectorize(toks)
	}
	return ix
}

func (ix *Index) Len() int { return len(ix.ids) }

// Has reports whether id was indexed.
func (ix *Index) Has(id string) bool {
	_, ok := ix.pos[id]
	return ok
}

// Similar ranks every other document by cosine similarity to id. Equal
// scores keep index order.
func (ix *Index) Similar(id string, limit int) []Match {
	i, ok := ix.pos[id]
	if !ok {
		return []Match{}
	}
	matches := make([]Match, 0, len(ix.ids)-1)
	for j, other := range ix.ids {
		if j == i {
			continue
		}
		matches = append(matches, Match{ID: other, Score: dot(ix.vectors[i], ix.vectors[j])})
	}
	return top(matches, limit)
}

// Score returns the cosine similarity of two indexed documents.
func (ix *Index) Score(a, b string) (float64, bool) {
	i, ok := ix.pos[a]
	if !ok {
		return 0, false
	}
	j, ok := ix.pos[b]
	if !ok {
		return 0, false
	}
	return dot(ix.vectors[i], ix.vectors[j]), true
}

// Search scores a free-text query against the index. Only documents sharing
// at least one term are returned.
func (ix *Index) Search(query string, limit int) []Match {
	q := ix.vectorize(ix.p.Tokenize(query))
	if len(q) == 0 {
		return []Match{}
	}
	var matches []Match
	for j, id := range ix.ids {
		if s := dot(q, ix.vectors[j]); s > 0 {
			matches = append(matches, Match{ID: id, Score: s})
		}
	}
	return top(matches, limit)
}

func (ix *Index) vectorize(tokens []string) map[int]float64 {
	v := make(map[int]float64)
	for _, t := range tokens {
		if j, ok := ix.vocab[t]; ok {
			v[j]++
		}
	}
	var norm float64
	for j, tf := range v {
		w := tf * ix.idf[j]
		v[j] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for j := range v {
		v[j] /= norm
	}
	return v
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for j, w := range a {
		s += w * b[j]
	}
	return s
}

func top(matches []Match, limit int) []Match {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		return []Match{}
	}
	return matches
}
