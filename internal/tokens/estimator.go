// Package tokens estimates prompt token counts for observability. Counts
// are logged alongside provider calls; they are never billed or enforced.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Estimator counts tokens with the cl100k_base encoding. The exact encoding
// varies per backend model, so counts are estimates, which is all the
// request logs need.
type Estimator struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewEstimator creates an Estimator. The tokenizer is loaded lazily on
// first use.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the approximate token count of text, or 0 when the
// tokenizer is unavailable.
func (e *Estimator) Estimate(text string) int {
	e.once.Do(func() {
		e.codec, e.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if e.err != nil {
		return 0
	}
	ids, _, err := e.codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
