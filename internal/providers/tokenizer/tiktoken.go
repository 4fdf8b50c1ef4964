package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// Tiktoken counts tokens with a real BPE vocabulary. Counts are still an
// approximation of whatever model ultimately receives the prompt.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktoken(encodingName string) (*Tiktoken, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encodingName, err)
	}
	return &Tiktoken{encoding: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}
