// Package compose formats retrieved chunks and a question into a
// bounded prompt and invokes a generation model on it.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marram/ragcore/internal/index"
)

// GenerateFunc produces the model response for a prompt. It is always
// injected; this package never talks to a model itself.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// ErrGenerationUnavailable reports a failure of the injected
// generation function. No retry is performed here.
var ErrGenerationUnavailable = errors.New("generation service unavailable")

// DefaultMaxContextChunks bounds how many retrieved chunks make it
// into the prompt when no explicit limit is configured.
const DefaultMaxContextChunks = 5

// chunkDelimiter separates chunk texts in the context block so the
// boundary between chunks stays recoverable.
const chunkDelimiter = "\n\n"

// promptTemplate instructs the model to refuse rather than guess when
// the context does not contain the answer.
const promptTemplate = `Answer the question using only the context below.
If the answer is not present in the context, say so instead of guessing.

Context:
%s

Question: %s

Answer:`

// Composer builds answer prompts from retrieval results.
type Composer struct {
	generate  GenerateFunc
	maxChunks int
}

// New creates a Composer. If maxContextChunks is not positive,
// DefaultMaxContextChunks is used.
func New(generate GenerateFunc, maxContextChunks int) *Composer {
	if maxContextChunks <= 0 {
		maxContextChunks = DefaultMaxContextChunks
	}
	return &Composer{
		generate:  generate,
		maxChunks: maxContextChunks,
	}
}

// Compose builds the prompt from the question and up to the configured
// number of chunks (in ranked order), invokes the generator, and
// returns its output verbatim. Empty results still invoke the
// generator with an empty context block so the model's
// "not in context" fallback can trigger.
func (c *Composer) Compose(ctx context.Context, question string, results []index.Result) (string, error) {
	prompt := c.buildPrompt(question, results)

	answer, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	return answer, nil
}

// buildPrompt fills the template with the context block and question.
func (c *Composer) buildPrompt(question string, results []index.Result) string {
	n := min(c.maxChunks, len(results))
	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = results[i].Entry.Chunk.Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(texts, chunkDelimiter), question)
}
