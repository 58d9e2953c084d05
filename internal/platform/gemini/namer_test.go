package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGenerator replays scripted responses and records the prompts it saw.
type fakeGenerator struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	prompts   []string
	mimeTypes []string
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context,
	_ string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	if cfg != nil {
		f.mimeTypes = append(f.mimeTypes, cfg.ResponseMIMEType)
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testNamer(gen contentGenerator, retries int) *Namer {
	n := newNamer(gen, slog.New(slog.NewTextHandler(io.Discard, nil)), config.LLMConfig{
		ModelName:  "gemini-test",
		Timeout:    time.Second,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	})
	n.sleep = func(context.Context, time.Duration) error { return nil }
	return n
}

var clusters = [][]string{
	{"Apples", "Pears"},
	{"Hammer", "Saw"},
}

func TestNameCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responses []*genai.GenerateContentResponse
		errs      []error
		retries   int
		want      []string
		wantErr   error
		wantCalls int
	}{
		{
			name:      "plain JSON",
			responses: []*genai.GenerateContentResponse{textResponse(`{"names": ["Fruit", " Tools "]}`)},
			want:      []string{"Fruit", "Tools"},
			wantCalls: 1,
		},
		{
			name:      "fenced JSON",
			responses: []*genai.GenerateContentResponse{textResponse("```json\n{\"names\": [\"Fruit\", \"Tools\"]}\n```")},
			want:      []string{"Fruit", "Tools"},
			wantCalls: 1,
		},
		{
			name:      "transient error then success",
			responses: []*genai.GenerateContentResponse{nil, textResponse(`{"names": ["Fruit", "Tools"]}`)},
			errs:      []error{errors.New("503 unavailable")},
			retries:   2,
			want:      []string{"Fruit", "Tools"},
			wantCalls: 2,
		},
		{
			name:      "retries exhausted",
			responses: []*genai.GenerateContentResponse{nil},
			errs:      []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
			retries:   2,
			wantErr:   ErrTransientFailure,
			wantCalls: 3,
		},
		{
			name:      "unparsable answer is not retried",
			responses: []*genai.GenerateContentResponse{textResponse("Fruit, Tools")},
			retries:   3,
			wantErr:   ErrInvalidResponse,
			wantCalls: 1,
		},
		{
			name:      "wrong name count",
			responses: []*genai.GenerateContentResponse{textResponse(`{"names": ["Fruit"]}`)},
			wantErr:   ErrInvalidResponse,
			wantCalls: 1,
		},
		{
			name:      "blank name",
			responses: []*genai.GenerateContentResponse{textResponse(`{"names": ["Fruit", "  "]}`)},
			wantErr:   ErrInvalidResponse,
			wantCalls: 1,
		},
		{
			name:      "no candidates",
			responses: []*genai.GenerateContentResponse{{}},
			wantErr:   ErrInvalidResponse,
			wantCalls: 1,
		},
		{
			name: "safety block",
			responses: []*genai.GenerateContentResponse{{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			retries:   2,
			wantErr:   ErrContentBlocked,
			wantCalls: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{responses: tc.responses, errs: tc.errs}
			names, err := testNamer(gen, tc.retries).NameCategories(context.Background(), clusters)

			assert.Equal(t, tc.wantCalls, gen.calls)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestNameCategoriesRequestsJSON(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{
		textResponse(`{"names": ["Fruit", "Tools"]}`),
	}}
	_, err := testNamer(gen, 0).NameCategories(context.Background(), clusters)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, []string{"application/json"}, gen.mimeTypes)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "2 clusters")
	assert.Contains(t, prompt, "Cluster 0:\n- Apples\n- Pears")
	assert.Contains(t, prompt, "Cluster 1:\n- Hammer\n- Saw")
	assert.True(t, strings.HasSuffix(prompt, "with exactly 2 names in cluster order."))
}

func TestNameCategoriesEmpty(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	names, err := testNamer(gen, 0).NameCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Zero(t, gen.calls)
}

func TestNameCategoriesCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		responses: []*genai.GenerateContentResponse{nil},
		errs:      []error{errors.New("boom")},
	}
	n := testNamer(gen, 3)
	n.sleep = sleepContext
	n.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.NameCategories(ctx, clusters)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransientFailure)
	assert.Equal(t, 1, gen.calls)
}

func TestNewNamerValidation(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name   string
		logger *slog.Logger
		cfg    config.LLMConfig
	}{
		{name: "nil logger", cfg: config.LLMConfig{GeminiAPIKey: "key", ModelName: "m"}},
		{name: "missing key", logger: log, cfg: config.LLMConfig{ModelName: "m"}},
		{name: "missing model", logger: log, cfg: config.LLMConfig{GeminiAPIKey: "key"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			n, err := NewNamer(context.Background(), tc.logger, tc.cfg)
			assert.Nil(t, n)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
