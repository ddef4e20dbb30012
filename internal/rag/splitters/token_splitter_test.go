package splitters

import (
	"strings"
	"testing"
)

// wordTokenizer treats every whitespace-separated word as one token. Token
// IDs index into the word list it has seen.
type wordTokenizer struct {
	words []string
}

func (t *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, 0, len(fields))
	for _, w := range fields {
		t.words = append(t.words, w)
		ids = append(ids, len(t.words)-1)
	}
	return ids
}

func (t *wordTokenizer) Decode(tokens []int) string {
	parts := make([]string, 0, len(tokens))
	for _, id := range tokens {
		parts = append(parts, t.words[id])
	}
	return strings.Join(parts, " ")
}

func TestSplitShortTextSinglePiece(t *testing.T) {
	s := NewTokenSplitter(&wordTokenizer{}, 10, 2)
	pieces := s.Split("just a few words")
	if len(pieces) != 1 {
		t.Fatalf("len(pieces) = %d, want 1", len(pieces))
	}
	if pieces[0].Content != "just a few words" {
		t.Errorf("Content = %q", pieces[0].Content)
	}
	if pieces[0].Tokens != 4 {
		t.Errorf("Tokens = %d, want 4", pieces[0].Tokens)
	}
}

func TestSplitOverlappingWindows(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = string(rune('a' + i))
	}
	text := strings.Join(words, " ")

	s := NewTokenSplitter(&wordTokenizer{}, 4, 1)
	pieces := s.Split(text)

	// Windows of 4 tokens advancing by 3: [0:4] [3:7] [6:10]
	if len(pieces) != 3 {
		t.Fatalf("len(pieces) = %d, want 3", len(pieces))
	}
	if pieces[0].Content != "a b c d" {
		t.Errorf("pieces[0] = %q", pieces[0].Content)
	}
	if pieces[1].Content != "d e f g" {
		t.Errorf("pieces[1] = %q", pieces[1].Content)
	}
	if pieces[2].Content != "g h i j" {
		t.Errorf("pieces[2] = %q", pieces[2].Content)
	}
	for i, p := range pieces {
		if p.Tokens != 4 {
			t.Errorf("pieces[%d].Tokens = %d, want 4", i, p.Tokens)
		}
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewTokenSplitter(&wordTokenizer{}, 4, 1)
	if pieces := s.Split(""); pieces != nil {
		t.Errorf("Split(\"\") = %v, want nil", pieces)
	}
}

func TestSplitInvalidOverlapFallsBack(t *testing.T) {
	s := NewTokenSplitter(&wordTokenizer{}, 10, 20)
	if s.ChunkOverlap != 1 {
		t.Errorf("ChunkOverlap = %d, want 1", s.ChunkOverlap)
	}
}
