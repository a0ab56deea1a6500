package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

type WriterOptions struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string

	// MaxRetries bounds additional attempts after the first call. Zero
	// means call once.
	MaxRetries uint64
}

// NewWriter builds the configured CodeWriter, wrapped with retries when
// MaxRetries is set.
func NewWriter(ctx context.Context, opts WriterOptions) (CodeWriter, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	var (
		w   CodeWriter
		err error
	)
	switch provider {
	case "gemini":
		w, err = NewGeminiWriter(ctx, opts.APIKey, opts.Model)
	case "openai":
		w = NewOpenAIWriter(opts.APIKey, opts.Model, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported writer provider: %s", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	if opts.MaxRetries > 0 {
		w = WithRetry(w, opts.MaxRetries)
	}
	return w, nil
}

// WithRetry wraps a writer so transient failures are retried with capped
// exponential backoff.
func WithRetry(inner CodeWriter, maxRetries uint64) CodeWriter {
	return &retryWriter{inner: inner, maxRetries: maxRetries}
}

type retryWriter struct {
	inner      CodeWriter
	maxRetries uint64
}

func (r *retryWriter) GenerateComponent(ctx context.Context, prompt string) (string, error) {
	var out string
	backoff := retry.WithCappedDuration(15*time.Second,
		retry.WithMaxRetries(r.maxRetries, retry.NewExponential(1*time.Second)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := r.inner.GenerateComponent(ctx, prompt)
		if err != nil {
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
