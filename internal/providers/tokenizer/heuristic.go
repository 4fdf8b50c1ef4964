package tokenizer

// charsPerToken is the common rule of thumb for English text.
const charsPerToken = 4

// Heuristic estimates tokens at ~4 characters each, rounding up. Cheap and
// dependency-free; used when the tiktoken vocabulary cannot be loaded (for
// example, offline environments).
type Heuristic struct{}

func (Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
