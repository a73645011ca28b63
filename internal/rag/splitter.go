package rag

import "strings"

// DefaultSeparators split on sentence-ish boundaries before falling back to
// plain newlines.
var DefaultSeparators = []string{".\n", ". ", "! ", "\n"}

const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 20
)

// Splitter breaks text into overlapping chunks. It tries each separator in
// order, recursing with the remaining separators on pieces that are still
// too large, then merges adjacent pieces up to ChunkSize with ChunkOverlap
// characters carried between consecutive chunks.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter returns a Splitter with the default chunking parameters.
func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   DefaultSeparators,
	}
}

// Split chunks text. Chunks that are empty after trimming are dropped.
func (s *Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	raw := s.split(text, seps)

	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	// Pick the first separator that occurs in the text; an empty separator
	// means character-level splitting as the last resort.
	sep := ""
	var rest []string
	for i, cand := range separators {
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = splitRunes(text, s.ChunkSize)
	} else {
		pieces = splitKeep(text, sep)
	}

	var final []string
	var good []string
	for _, p := range pieces {
		if len(p) <= s.ChunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, splitRunes(p, s.ChunkSize)...)
		} else {
			final = append(final, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge greedily packs pieces into chunks of at most ChunkSize, carrying
// trailing pieces up to ChunkOverlap into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur []string
	total := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(cur, ""))
		// Retain a tail of pieces as overlap for the next chunk.
		for total > s.ChunkOverlap && len(cur) > 0 {
			total -= len(cur[0])
			cur = cur[1:]
		}
	}

	for _, p := range pieces {
		if total+len(p) > s.ChunkSize && len(cur) > 0 {
			flush()
		}
		cur = append(cur, p)
		total += len(p)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}

// splitKeep splits text by sep, keeping the separator attached to the
// preceding piece so no characters are lost.
func splitKeep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitRunes hard-splits text into size-byte pieces on rune boundaries.
func splitRunes(text string, size int) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		if b.Len()+len(string(r)) > size && b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
