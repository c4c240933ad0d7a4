// Package translator translates arbitrarily long text through a provider with
// a per-request size ceiling.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pricofy/document-translator/internal/chunker"
	"github.com/pricofy/document-translator/internal/language"
)

// DefaultWorkers is the default number of concurrent provider calls.
const DefaultWorkers = 4

// ErrTranslationFailed is matched by every ChunkError.
var ErrTranslationFailed = errors.New("translation failed")

// ChunkError reports the first chunk that could not be translated.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("translate chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkError) Unwrap() []error {
	return []error{ErrTranslationFailed, e.Err}
}

// Provider translates one request-sized piece of text.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f ProviderFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

// Translator splits text, translates every chunk, and reassembles the
// results in chunk order.
type Translator struct {
	provider Provider
	maxChars int
	workers  int
}

// Option configures a Translator.
type Option func(*Translator)

// WithMaxChars sets the chunk size sent to the provider.
func WithMaxChars(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.maxChars = n
		}
	}
}

// WithWorkers sets the number of concurrent provider calls.
func WithWorkers(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New creates a Translator.
func New(provider Provider, opts ...Option) *Translator {
	t := &Translator{
		provider: provider,
		maxChars: chunker.DefaultMaxChars,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate resolves targetLang and translates text from sourceLang.
// Chunk i of the output always comes from chunk i of the input, whatever
// order the provider calls finish in. The first failing chunk cancels the
// rest and no partial text is returned. Every failure, including a provider
// panic or cancellation of ctx, is reported as a *ChunkError.
func (t *Translator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	target := language.Resolve(targetLang)

	n := chunker.Count(text, t.maxChars)
	if n == 0 {
		return "", nil
	}
	results := make([]string, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	var stopped error
	for c := range chunker.Split(text, t.maxChars) {
		if err := gctx.Err(); err != nil {
			stopped = &ChunkError{Index: c.Index, Err: err}
			break
		}
		g.Go(func() (err error) {
			// A panic in a worker goroutine is not recoverable by the caller
			defer func() {
				if p := recover(); p != nil {
					err = &ChunkError{Index: c.Index, Err: fmt.Errorf("panic: %v", p)}
				}
			}()

			if err := gctx.Err(); err != nil {
				return &ChunkError{Index: c.Index, Err: err}
			}
			translated, err := t.provider.Translate(gctx, c.Text, sourceLang, target)
			if err != nil {
				return &ChunkError{Index: c.Index, Err: err}
			}
			results[c.Index] = translated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	if stopped != nil {
		return "", stopped
	}
	return strings.Join(results, ""), nil
}
