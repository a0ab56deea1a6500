package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uigen/internal/strategy"
	"uigen/internal/taxonomy"
)

func TestProfileFor_CoversEveryStylingLabel(t *testing.T) {
	for _, l := range taxonomy.StylingSystems() {
		p := ProfileFor(l)
		assert.Equal(t, l, p.Styling, "profile for %s", l)
		assert.NotEmpty(t, p.Snippet, "profile for %s needs a snippet", l)
		assert.NotEmpty(t, p.Forbidden, "profile for %s needs forbidden rules", l)
	}
}

func TestProfileFor_UnknownFallsBack(t *testing.T) {
	p := ProfileFor(taxonomy.Label("sass-only"))
	assert.Equal(t, taxonomy.PlainCSS, p.Styling)
}

func TestCleanCodeOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"language tag", "```typescript\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanCodeOutput(tc.in))
		})
	}
}

func TestBuildComponentPrompt(t *testing.T) {
	sel, err := strategy.NewSelector()
	require.NoError(t, err)
	strat := sel.Select(taxonomy.React, taxonomy.Tailwind)

	req := ComponentRequest{
		Name:        "PricingCard",
		Description: "a pricing tier card with a call-to-action button",
		Props:       []string{"title: string", "price: number"},
	}
	prompt := (&PromptBuilder{}).BuildComponentPrompt(req, strat, ProfileFor(taxonomy.Tailwind))

	assert.Contains(t, prompt, "TARGET STACK")
	assert.Contains(t, prompt, "React")
	assert.Contains(t, prompt, "Tailwind CSS")
	assert.Contains(t, prompt, "PricingCard")
	assert.Contains(t, prompt, "title: string")
	assert.Contains(t, prompt, "component_name")
	assert.Contains(t, prompt, "Never use:")
}

func TestBuildRepairPrompt(t *testing.T) {
	files := []ComponentFile{
		{Path: "PricingCard.tsx", Content: "export const PricingCard = () => <div style={{color:'red'}}/>"},
	}
	issues := []string{"inline style object found; use Tailwind utilities"}
	prompt := (&PromptBuilder{}).BuildRepairPrompt(files, issues, ProfileFor(taxonomy.Tailwind))

	assert.Contains(t, prompt, "ISSUES TO FIX")
	assert.Contains(t, prompt, "inline style object found")
	assert.Contains(t, prompt, "PricingCard.tsx")
	assert.Contains(t, prompt, "component_name")
}

func TestOpenAIWriter_EndpointNormalization(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:1234", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1", "http://localhost:1234/v1/chat/completions"},
		{"http://host/v1/chat/completions", "http://host/v1/chat/completions"},
	}
	for _, tc := range cases {
		w := NewOpenAIWriter("key", "model", tc.base)
		assert.Equal(t, tc.want, w.endpoint, "base %q", tc.base)
	}
}

func TestOpenAIWriter_GenerateComponent(t *testing.T) {
	payload := `{"component_name":"Card","files":[{"path":"Card.tsx","content":"export const Card = () => null"}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role":    "assistant",
					"content": "```json\n" + payload + "\n```",
				}},
			},
		}
		rw.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(rw).Encode(resp))
	}))
	defer srv.Close()

	w := NewOpenAIWriter("test-key", "test-model", srv.URL)
	got, err := w.GenerateComponent(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, payload, got, "fences must be stripped")
}

func TestOpenAIWriter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	w := NewOpenAIWriter("k", "m", srv.URL)
	_, err := w.GenerateComponent(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIWriter_RequiresCredentials(t *testing.T) {
	w := NewOpenAIWriter("", "model", "")
	_, err := w.GenerateComponent(context.Background(), "p")
	require.Error(t, err)

	w = NewOpenAIWriter("key", "", "")
	_, err = w.GenerateComponent(context.Background(), "p")
	require.Error(t, err)
}

type flakyWriter struct {
	failuresLeft int
	calls        int
}

func (f *flakyWriter) GenerateComponent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return "", errors.New("transient upstream error")
	}
	return "ok", nil
}

func TestWithRetry_RecoversFromTransientFailure(t *testing.T) {
	inner := &flakyWriter{failuresLeft: 1}
	w := WithRetry(inner, 2)

	got, err := w.GenerateComponent(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, inner.calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	inner := &flakyWriter{failuresLeft: 10}
	w := WithRetry(inner, 1)

	_, err := w.GenerateComponent(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls, "one call plus one retry")
}

func TestNewWriter_UnknownProvider(t *testing.T) {
	_, err := NewWriter(context.Background(), WriterOptions{Provider: "llama-farm"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func TestNewWriter_OpenAI(t *testing.T) {
	w, err := NewWriter(context.Background(), WriterOptions{Provider: "openai", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	require.NotNil(t, w)
}
