package tokenizer

import (
	"DocuGraph/internal/rag/interfaces"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer is a Tokenizer backed by the tiktoken BPE vocabularies.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer using the "cl100k_base" encoding, which covers
// gpt-4, gpt-3.5-turbo and text-embedding-ada-002.
func New() (*TiktokenTokenizer, error) {
	return NewWithEncoding("cl100k_base")
}

// NewWithEncoding creates a tokenizer for a specific tiktoken encoding name.
func NewWithEncoding(name string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &TiktokenTokenizer{encoding: enc}, nil
}

// Encode converts text into token IDs.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode converts token IDs back into text.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

// compile-time check to ensure TiktokenTokenizer implements the Tokenizer interface
var _ interfaces.Tokenizer = (*TiktokenTokenizer)(nil)
