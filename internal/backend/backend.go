// Package backend implements the text-generation collaborator. Two provider
// clients are available: an OpenAI-compatible chat-completions client and a
// Gemini client on the official genai SDK. Both consume the ordered
// conversation and return raw assistant text; all failures surface as
// *types.BackendError.
package backend

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codec     tokenizer.Codec
	codecOnce sync.Once
	codecErr  error
)

// getCodec returns the cl100k_base tokenizer, a reasonable approximation for
// the models we target.
func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return codec, codecErr
}

// CountTokens returns an approximate token count for the given text,
// defaulting to 0 on tokenizer failure.
func CountTokens(text string) int {
	c, err := getCodec()
	if err != nil {
		return 0
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
