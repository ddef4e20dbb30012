package splitters

import (
	"DocuGraph/internal/rag/interfaces"
)

// Piece is one split segment of a larger text, with its token count.
type Piece struct {
	Content string
	Tokens  int
}

// TokenSplitter splits text into overlapping windows measured in tokens.
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	tokenizer    interfaces.Tokenizer
}

// NewTokenSplitter creates a new TokenSplitter.
func NewTokenSplitter(tokenizer interfaces.Tokenizer, chunkSize, chunkOverlap int) *TokenSplitter {
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		tokenizer:    tokenizer,
	}
}

// Split cuts text into pieces of at most ChunkSize tokens, with consecutive
// pieces overlapping by ChunkOverlap tokens.
func (s *TokenSplitter) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	tokens := s.tokenizer.Encode(text)
	if len(tokens) <= s.ChunkSize {
		return []Piece{{Content: text, Tokens: len(tokens)}}
	}

	var pieces []Piece
	step := s.ChunkSize - s.ChunkOverlap
	for start := 0; start < len(tokens); start += step {
		end := start + s.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		pieces = append(pieces, Piece{
			Content: s.tokenizer.Decode(tokens[start:end]),
			Tokens:  end - start,
		})

		if end == len(tokens) {
			break
		}
	}
	return pieces
}
